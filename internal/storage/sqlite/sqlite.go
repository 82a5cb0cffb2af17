// Package sqlite implements the RunStore interface against a local
// SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skysolve/suntilt/internal/storage"
	_ "modernc.org/sqlite"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	site            TEXT NOT NULL,
	year            INTEGER NOT NULL,
	efficiency_pct  REAL NOT NULL,
	best_ew_tilt    INTEGER NOT NULL,
	best_ns_tilt    INTEGER NOT NULL,
	tracking_wh     REAL NOT NULL,
	best_fixed_wh   REAL NOT NULL,
	custom_ew_tilt  REAL,
	custom_ns_tilt  REAL,
	custom_wh       REAL,
	best_yield_pct  REAL,
	degenerate      INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS run_monthly (
	run_id        TEXT NOT NULL REFERENCES runs(id),
	month         TEXT NOT NULL,
	tracking_kwh  REAL NOT NULL,
	best_kwh      REAL NOT NULL,
	custom_kwh    REAL
);
CREATE INDEX IF NOT EXISTS run_monthly_run_id ON run_monthly(run_id);
`

// Store is a SQLite-backed RunStore.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the SQLite results database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create results tables: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun writes a run and its monthly rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *storage.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, site, year, efficiency_pct, best_ew_tilt, best_ns_tilt,
			tracking_wh, best_fixed_wh, custom_ew_tilt, custom_ns_tilt, custom_wh,
			best_yield_pct, degenerate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Site, run.Year, run.EfficiencyPct, run.BestEWTilt, run.BestNSTilt,
		run.TrackingWh, run.BestFixedWh, run.CustomEWTilt, run.CustomNSTilt, run.CustomWh,
		run.BestYieldPct, run.Degenerate, run.CreatedAt.Format("2006-01-02T15:04:05Z"))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, m := range run.Monthly {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_monthly (run_id, month, tracking_kwh, best_kwh, custom_kwh)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, m.Month, m.TrackingKWh, m.BestKWh, m.CustomKWh)
		if err != nil {
			return fmt.Errorf("inserting monthly row: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
