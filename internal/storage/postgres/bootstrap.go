package postgres

import (
	"context"
	"fmt"
)

// Bootstrap creates the claims and metrics tables when they do not exist.
// Idempotent; safe to run on every startup.
func (r *Repository) Bootstrap(ctx context.Context) error {
	claimsDDL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  "id"                    BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  "practice_name"         TEXT,
  "charge_from_date"      DATE,
  "charge_to_date"        DATE,
  "charge_amount"         DOUBLE PRECISION,
  "allowed_amount"        DOUBLE PRECISION,
  "paid_amount"           DOUBLE PRECISION,
  "payment_received_date" DATE,
  "revenue_code"          TEXT,
  "cpt_code"              TEXT,
  "level_of_care"         TEXT,
  "payer_name"            TEXT,
  "payer_class"           TEXT,
  "state_treated_at"      TEXT,
  "row_hash"              TEXT NOT NULL,
  "created_at"            TIMESTAMPTZ NOT NULL DEFAULT now(),
  "updated_at"            TIMESTAMPTZ NOT NULL DEFAULT now()
)`, pgFQN(r.cfg.ClaimsTable))

	hashIdx := fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS "claims_row_hash_key" ON %s ("row_hash")`,
		pgFQN(r.cfg.ClaimsTable))

	locIdx := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS "claims_level_of_care_idx" ON %s ("level_of_care")`,
		pgFQN(r.cfg.ClaimsTable))

	metricsDDL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  "id"                    BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  "level_of_care"         TEXT NOT NULL,
  "state_treated_at"      TEXT NOT NULL DEFAULT '',
  "payer_name"            TEXT NOT NULL DEFAULT '',
  "payer_class"           TEXT NOT NULL DEFAULT '',
  "service_year"          INTEGER NOT NULL DEFAULT 0,
  "payment_received_year" INTEGER NOT NULL DEFAULT 0,
  "record_count"          BIGINT NOT NULL,
  "mean_allowed"          DOUBLE PRECISION NOT NULL,
  "min_allowed"           DOUBLE PRECISION NOT NULL,
  "max_allowed"           DOUBLE PRECISION NOT NULL,
  "median_allowed"        DOUBLE PRECISION NOT NULL,
  "mode_allowed"          DOUBLE PRECISION NOT NULL,
  "updated_at"            TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE ("level_of_care","state_treated_at","payer_name","payer_class","service_year","payment_received_year")
)`, pgFQN(r.cfg.MetricsTable))

	for _, ddl := range []string{claimsDDL, hashIdx, locIdx, metricsDDL} {
		if _, err := r.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}
	return nil
}
