package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reservation-monitor/models"
	"reservation-monitor/utils"
)

var historyHeader = []string{
	"run_at", "restaurant", "area", "platform", "date",
	"slots", "new_slots", "is_new", "signature",
}

// CSVWriter appends findings to a history CSV file
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// SaveFindings appends one row per finding, writing the header when the file is new.
// Findings with an identical signature within one call are written once.
func (w *CSVWriter) SaveFindings(findings []models.Finding, runAt time.Time) error {
	if len(findings) == 0 {
		return nil
	}

	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	writeHeader := false
	if _, err := os.Stat(w.filePath); errors.Is(err, os.ErrNotExist) {
		writeHeader = true
	}

	file, err := os.OpenFile(w.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if writeHeader {
		if err := writer.Write(historyHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	seen := utils.NewSeen()
	written := 0
	for _, f := range findings {
		sig := models.SlotSignature(f.Target, f.Date, f.Slots)
		if !seen.Add(sig) {
			continue
		}
		row := []string{
			runAt.UTC().Format(time.RFC3339),
			f.Target.Name,
			f.Target.Area,
			string(f.Target.Platform),
			f.Date,
			strings.Join(f.Slots, ";"),
			strings.Join(f.NewSlots, ";"),
			strconv.FormatBool(f.IsNew),
			sig,
		}
		if err := writer.Write(row); err != nil {
			w.logger.Error("Failed to write CSV row for '%s': %v", f.Key(), err)
			continue
		}
		written++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	w.logger.Info("Findings appended to: %s (%d rows)", w.filePath, written)
	return nil
}
