package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reservation-monitor/models"
	"reservation-monitor/utils"
)

// stateDocument is the on-disk layout: {"found": {...}, "lastRun": "..."}
type stateDocument struct {
	Found   map[string][]string `json:"found"`
	LastRun *string             `json:"lastRun"`
}

// JSONStore keeps the state in a single JSON document on disk
type JSONStore struct {
	path   string
	logger *utils.Logger
}

// NewJSONStore creates a store backed by the file at path
func NewJSONStore(path string, logger *utils.Logger) *JSONStore {
	return &JSONStore{path: path, logger: logger}
}

// Path returns the state file location
func (s *JSONStore) Path() string { return s.path }

// Load reads the state file. A missing file is not an error.
func (s *JSONStore) Load(ctx context.Context) (*models.State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("No state file at %s, starting fresh", s.path)
		return models.NewState(), nil
	}
	if err != nil {
		return models.NewState(), fmt.Errorf("read state file: %w", err)
	}

	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.NewState(), fmt.Errorf("parse state file %s: %w", s.path, err)
	}

	state := models.NewState()
	for k, v := range doc.Found {
		state.Found[k] = v
	}
	if doc.LastRun != nil {
		if ts, err := time.Parse(time.RFC3339Nano, *doc.LastRun); err == nil {
			state.LastRun = ts
		} else {
			s.logger.Warn("Ignoring unparseable lastRun %q", *doc.LastRun)
		}
	}
	s.logger.Debug("Loaded %d state entries from %s", len(state.Found), s.path)
	return state, nil
}

// Save writes the whole state to a temp file and renames it over the old one
func (s *JSONStore) Save(ctx context.Context, state *models.State) error {
	doc := stateDocument{Found: state.Found}
	if doc.Found == nil {
		doc.Found = map[string][]string{}
	}
	if !state.LastRun.IsZero() {
		ts := state.LastRun.UTC().Format(time.RFC3339Nano)
		doc.LastRun = &ts
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".reservation-state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.logger.Info("State written to: %s (%d keys)", s.path, len(doc.Found))
	return nil
}

// Close is a no-op for the file store
func (s *JSONStore) Close() error { return nil }
