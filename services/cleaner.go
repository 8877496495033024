package services

import (
	"strings"

	"reservation-monitor/utils"
)

// SlotCleaner normalizes raw slot labels before change detection
type SlotCleaner struct {
	logger *utils.Logger
}

// NewSlotCleaner creates a new SlotCleaner
func NewSlotCleaner(logger *utils.Logger) *SlotCleaner {
	return &SlotCleaner{logger: logger}
}

// Clean trims labels, collapses inner whitespace ("7:00\n PM" -> "7:00 PM")
// and drops empty ones. Order and repeats are preserved.
func (c *SlotCleaner) Clean(raw []string) []string {
	cleaned := make([]string, 0, len(raw))
	for _, r := range raw {
		label := cleanLabel(r)
		if label == "" {
			c.logger.Debug("Skipping empty slot label")
			continue
		}
		cleaned = append(cleaned, label)
	}
	return cleaned
}

func cleanLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
