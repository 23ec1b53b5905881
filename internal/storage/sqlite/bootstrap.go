package sqlite

import (
	"context"
	"fmt"
)

// Bootstrap creates the claims and metrics tables when they do not exist.
// Idempotent; safe to run on every startup.
func (r *Repository) Bootstrap(ctx context.Context) error {
	claimsDDL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id                    INTEGER PRIMARY KEY AUTOINCREMENT,
  practice_name         TEXT,
  charge_from_date      TEXT,
  charge_to_date        TEXT,
  charge_amount         REAL,
  allowed_amount        REAL,
  paid_amount           REAL,
  payment_received_date TEXT,
  revenue_code          TEXT,
  cpt_code              TEXT,
  level_of_care         TEXT,
  payer_name            TEXT,
  payer_class           TEXT,
  state_treated_at      TEXT,
  row_hash              TEXT NOT NULL UNIQUE,
  created_at            TEXT NOT NULL DEFAULT (datetime('now')),
  updated_at            TEXT NOT NULL DEFAULT (datetime('now'))
)`, r.cfg.ClaimsTable)

	locIdx := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS claims_level_of_care_idx ON %s (level_of_care)",
		r.cfg.ClaimsTable)

	metricsDDL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id                    INTEGER PRIMARY KEY AUTOINCREMENT,
  level_of_care         TEXT NOT NULL,
  state_treated_at      TEXT NOT NULL DEFAULT '',
  payer_name            TEXT NOT NULL DEFAULT '',
  payer_class           TEXT NOT NULL DEFAULT '',
  service_year          INTEGER NOT NULL DEFAULT 0,
  payment_received_year INTEGER NOT NULL DEFAULT 0,
  record_count          INTEGER NOT NULL,
  mean_allowed          REAL NOT NULL,
  min_allowed           REAL NOT NULL,
  max_allowed           REAL NOT NULL,
  median_allowed        REAL NOT NULL,
  mode_allowed          REAL NOT NULL,
  updated_at            TEXT NOT NULL,
  UNIQUE (level_of_care, state_treated_at, payer_name, payer_class, service_year, payment_received_year)
)`, r.cfg.MetricsTable)

	for _, ddl := range []string{claimsDDL, locIdx, metricsDDL} {
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sqlite: bootstrap: %w", err)
		}
	}
	return nil
}
