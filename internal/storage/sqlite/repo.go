// Package sqlite implements the claim and summary stores on SQLite via
// database/sql, for local and development runs. SQLite has no COPY-style bulk
// path; batched INSERTs inside a transaction keep performance acceptable for
// moderate volumes. Dates are stored as ISO "YYYY-MM-DD" text so the year
// range filters compare correctly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"claimstats/internal/storage"
	"claimstats/pkg/claims"
)

// Config holds SQLite store configuration.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.
	// "file:claims.db?cache=shared" or "claims.db".
	DSN          string
	ClaimsTable  string // defaults to "claims"
	MetricsTable string // defaults to "claim_metrics"
}

// Repository implements storage.ClaimStore and storage.SummaryStore.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens the database and returns the repository plus a close
// function. Fails fast on an invalid DSN via a short ping.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if cfg.ClaimsTable == "" {
		cfg.ClaimsTable = "claims"
	}
	if cfg.MetricsTable == "" {
		cfg.MetricsTable = "claim_metrics"
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db, cfg: cfg}, func() { db.Close() }, nil
}

// Create inserts a single record, skipping silently on duplicate fingerprint.
func (r *Repository) Create(ctx context.Context, rec claims.Record) error {
	_, err := r.CreateMany(ctx, []claims.Record{rec}, true)
	return err
}

// CreateMany inserts records inside one transaction with a prepared
// statement. skipDuplicates maps to INSERT OR IGNORE on the fingerprint's
// unique index. Returns rows actually inserted.
func (r *Repository) CreateMany(ctx context.Context, recs []claims.Record, skipDuplicates bool) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	cols := append(claims.Columns(), "row_hash")
	verb := "INSERT"
	if skipDuplicates {
		verb = "INSERT OR IGNORE"
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmtSQL := fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		verb, r.cfg.ClaimsTable, strings.Join(cols, ", "), ph)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, rec := range recs {
		args := make([]any, 0, len(cols))
		for _, c := range claims.Columns() {
			if v, ok := rec[claims.Field(c)]; ok {
				args = append(args, sqlVal(v))
			} else {
				args = append(args, nil)
			}
		}
		args = append(args, rec.Fingerprint())
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Count returns the number of records matching f.
func (r *Repository) Count(ctx context.Context, f storage.Filter) (int64, error) {
	where, args := filterWhere(f)
	var count int64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT count(*) FROM %s%s", r.cfg.ClaimsTable, where), args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return count, nil
}

// FindAmounts projects the allowed amount of matching records, nulls dropped.
func (r *Repository) FindAmounts(ctx context.Context, f storage.Filter) ([]float64, error) {
	where, args := filterWhere(f)
	cond := "allowed_amount IS NOT NULL"
	if where == "" {
		where = " WHERE " + cond
	} else {
		where += " AND " + cond
	}
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT allowed_amount FROM %s%s ORDER BY id", r.cfg.ClaimsTable, where), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select amounts: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("sqlite: scan amount: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindMany returns matching records in insertion order.
func (r *Repository) FindMany(ctx context.Context, f storage.Filter, limit, offset int) ([]claims.Record, error) {
	where, args := filterWhere(f)
	q := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id",
		strings.Join(claims.Columns(), ", "), r.cfg.ClaimsTable, where)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		q += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select claims: %w", err)
	}
	defer rows.Close()

	fields := claims.Fields()
	var out []claims.Record
	for rows.Next() {
		dest := make([]any, len(fields))
		amounts := make([]sql.NullFloat64, len(fields))
		texts := make([]sql.NullString, len(fields))
		for i, fld := range fields {
			if claims.KindOf(fld) == claims.KindAmount {
				dest[i] = &amounts[i]
			} else {
				dest[i] = &texts[i]
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sqlite: scan claim: %w", err)
		}
		rec := make(claims.Record, len(fields))
		for i, fld := range fields {
			switch claims.KindOf(fld) {
			case claims.KindAmount:
				if amounts[i].Valid {
					rec[fld] = claims.AmountValue(amounts[i].Float64)
				}
			case claims.KindDate:
				if texts[i].Valid {
					if t, err := time.Parse(claims.DateLayout, texts[i].String); err == nil {
						rec[fld] = claims.DateValue(t)
					}
				}
			default:
				if texts[i].Valid {
					rec[fld] = claims.CategoryValue(texts[i].String)
				}
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GroupByLevelOfCare returns record counts per level-of-care value.
func (r *Repository) GroupByLevelOfCare(ctx context.Context, f storage.Filter) (map[string]int64, error) {
	where, args := filterWhere(f)
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT level_of_care, count(*) FROM %s%s GROUP BY 1", r.cfg.ClaimsTable, where), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: group: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			level sql.NullString
			count int64
		)
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scan group: %w", err)
		}
		out[level.String] = count
	}
	return out, rows.Err()
}

// Upsert writes a summary row keyed by bucket and filter dimensions.
func (r *Repository) Upsert(ctx context.Context, s storage.Summary) error {
	q := fmt.Sprintf(`INSERT INTO %s
  (level_of_care, state_treated_at, payer_name, payer_class, service_year, payment_received_year,
   record_count, mean_allowed, min_allowed, max_allowed, median_allowed, mode_allowed, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (level_of_care, state_treated_at, payer_name, payer_class, service_year, payment_received_year)
DO UPDATE SET
  record_count = excluded.record_count,
  mean_allowed = excluded.mean_allowed,
  min_allowed = excluded.min_allowed,
  max_allowed = excluded.max_allowed,
  median_allowed = excluded.median_allowed,
  mode_allowed = excluded.mode_allowed,
  updated_at = excluded.updated_at`, r.cfg.MetricsTable)

	_, err := r.db.ExecContext(ctx, q,
		s.LevelOfCare, s.StateTreatedAt, s.PayerName, s.PayerClass, s.ServiceYear, s.PaymentReceivedYear,
		s.RecordCount, s.Mean, s.Min, s.Max, s.Median, s.Mode, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite: upsert summary: %w", err)
	}
	return nil
}

// sqlVal converts a claim value into the driver representation; dates become
// ISO text so range filters work lexicographically.
func sqlVal(v claims.Value) any {
	if v.Kind() == claims.KindDate {
		return v.String()
	}
	return v.SQL()
}

// filterWhere renders a Filter as a WHERE clause with '?' placeholders.
func filterWhere(f storage.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	eq := func(col, val string) {
		if val == "" {
			return
		}
		conds = append(conds, col+" = ?")
		args = append(args, val)
	}
	yearRange := func(col string, year int) {
		if year == 0 {
			return
		}
		conds = append(conds, col+" >= ?", col+" < ?")
		args = append(args, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1))
	}

	eq("level_of_care", f.LevelOfCare)
	eq("state_treated_at", f.StateTreatedAt)
	eq("payer_name", f.PayerName)
	eq("payer_class", f.PayerClass)
	yearRange("charge_from_date", f.ServiceYear)
	yearRange("payment_received_date", f.PaymentReceivedYear)

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
