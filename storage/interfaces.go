package storage

import (
	"context"
	"time"

	"reservation-monitor/models"
)

// StateStore persists the last-seen slots per store key between runs.
//
// Load never returns a nil State: when nothing was persisted yet, or the
// persisted state cannot be read, it returns an empty State together with
// the reason, and callers carry on with the empty State.
// Save overwrites everything; its error must abort the run.
type StateStore interface {
	Load(ctx context.Context) (*models.State, error)
	Save(ctx context.Context, state *models.State) error
	Close() error
}

// FindingSink records findings outside the state store, e.g. a history file
type FindingSink interface {
	SaveFindings(findings []models.Finding, runAt time.Time) error
}
