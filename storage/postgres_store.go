package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reservation-monitor/models"
	"reservation-monitor/utils"

	"github.com/lib/pq"
)

const lastRunMetaKey = "last_run"

// PostgresStore keeps the state mapping in PostgreSQL, one row per store key
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore connects, pings the DB and creates the tables if needed
func NewPostgresStore(ctx context.Context, connStr string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	s := &PostgresStore{db: db, logger: logger}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("Connected to PostgreSQL successfully")
	return s, nil
}

func (s *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS availability_state (
		state_key   TEXT        PRIMARY KEY,
		slots       TEXT[]      NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS monitor_meta (
		name   TEXT PRIMARY KEY,
		value  TEXT NOT NULL
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Load reads every stored key and the last run stamp
func (s *PostgresStore) Load(ctx context.Context) (*models.State, error) {
	state := models.NewState()

	rows, err := s.db.QueryContext(ctx, `SELECT state_key, slots FROM availability_state`)
	if err != nil {
		return models.NewState(), fmt.Errorf("query state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var slots []string
		if err := rows.Scan(&key, pq.Array(&slots)); err != nil {
			return models.NewState(), fmt.Errorf("scan state row: %w", err)
		}
		state.Found[key] = slots
	}
	if err := rows.Err(); err != nil {
		return models.NewState(), fmt.Errorf("iterate state rows: %w", err)
	}

	var lastRun string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM monitor_meta WHERE name = $1`, lastRunMetaKey).Scan(&lastRun)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return models.NewState(), fmt.Errorf("query last run: %w", err)
	default:
		if ts, perr := time.Parse(time.RFC3339Nano, lastRun); perr == nil {
			state.LastRun = ts
		}
	}

	s.logger.Debug("Loaded %d state entries from PostgreSQL", len(state.Found))
	return state, nil
}

// Save upserts every key in a single transaction. Keys are never deleted.
func (s *PostgresStore) Save(ctx context.Context, state *models.State) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO availability_state (state_key, slots, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (state_key) DO UPDATE SET slots = EXCLUDED.slots, updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for key, slots := range state.Found {
		if slots == nil {
			slots = []string{}
		}
		if _, err = stmt.ExecContext(ctx, key, pq.Array(slots)); err != nil {
			return fmt.Errorf("failed to upsert %q: %w", key, err)
		}
	}

	if !state.LastRun.IsZero() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO monitor_meta (name, value) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
		`, lastRunMetaKey, state.LastRun.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to store last run: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("State written to PostgreSQL (%d keys)", len(state.Found))
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
