// Package postgres implements the claim and summary stores on Postgres using
// pgx v5 pools. Bulk inserts use a multi-row INSERT with ON CONFLICT on the
// record fingerprint, which is what makes re-uploading a file a no-op.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"claimstats/internal/storage"
	"claimstats/pkg/claims"
)

// Config holds Postgres store configuration.
type Config struct {
	DSN          string // connection string for pgxpool
	ClaimsTable  string // defaults to "claims"
	MetricsTable string // defaults to "claim_metrics"
}

// Repository implements storage.ClaimStore and storage.SummaryStore.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository connects a pool and returns the repository plus a close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if cfg.ClaimsTable == "" {
		cfg.ClaimsTable = "claims"
	}
	if cfg.MetricsTable == "" {
		cfg.MetricsTable = "claim_metrics"
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// Create inserts a single record, skipping silently when its fingerprint
// already exists.
func (r *Repository) Create(ctx context.Context, rec claims.Record) error {
	_, err := r.CreateMany(ctx, []claims.Record{rec}, true)
	return err
}

// CreateMany inserts records with one multi-row INSERT. With skipDuplicates,
// conflicting fingerprints are dropped by ON CONFLICT DO NOTHING; the
// returned count is rows actually inserted.
func (r *Repository) CreateMany(ctx context.Context, recs []claims.Record, skipDuplicates bool) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	cols := append(claims.Columns(), "row_hash")
	var (
		rowsSQL []string
		args    []any
	)
	n := 1
	for _, rec := range recs {
		ph := make([]string, len(cols))
		for i, c := range claims.Columns() {
			ph[i] = fmt.Sprintf("$%d", n)
			n++
			if v, ok := rec[claims.Field(c)]; ok {
				args = append(args, v.SQL())
			} else {
				args = append(args, nil)
			}
		}
		ph[len(cols)-1] = fmt.Sprintf("$%d", n)
		n++
		args = append(args, rec.Fingerprint())
		rowsSQL = append(rowsSQL, "("+strings.Join(ph, ",")+")")
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		pgFQN(r.cfg.ClaimsTable),
		strings.Join(mapIdent(cols), ","),
		strings.Join(rowsSQL, ","),
	)
	if skipDuplicates {
		sql += ` ON CONFLICT ("row_hash") DO NOTHING`
	}

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert claims: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of records matching f.
func (r *Repository) Count(ctx context.Context, f storage.Filter) (int64, error) {
	where, args := filterWhere(f)
	var count int64
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT count(*) FROM %s%s", pgFQN(r.cfg.ClaimsTable), where),
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}
	return count, nil
}

// FindAmounts projects the allowed amount of matching records, dropping
// nulls in the query rather than client-side.
func (r *Repository) FindAmounts(ctx context.Context, f storage.Filter) ([]float64, error) {
	where, args := filterWhere(f)
	cond := "allowed_amount IS NOT NULL"
	if where == "" {
		where = " WHERE " + cond
	} else {
		where += " AND " + cond
	}

	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT "allowed_amount" FROM %s%s ORDER BY "id"`, pgFQN(r.cfg.ClaimsTable), where),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("select amounts: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan amount: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindMany returns matching records in insertion order.
func (r *Repository) FindMany(ctx context.Context, f storage.Filter, limit, offset int) ([]claims.Record, error) {
	where, args := filterWhere(f)
	sql := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY "id"`,
		strings.Join(mapIdent(claims.Columns()), ","), pgFQN(r.cfg.ClaimsTable), where)
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		sql += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select claims: %w", err)
	}
	defer rows.Close()

	fields := claims.Fields()
	var out []claims.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		rec := make(claims.Record, len(fields))
		for i, fld := range fields {
			if i >= len(vals) || vals[i] == nil {
				continue
			}
			switch claims.KindOf(fld) {
			case claims.KindAmount:
				if v, ok := vals[i].(float64); ok {
					rec[fld] = claims.AmountValue(v)
				}
			case claims.KindDate:
				if v, ok := vals[i].(time.Time); ok {
					rec[fld] = claims.DateValue(v)
				}
			default:
				if v, ok := vals[i].(string); ok {
					rec[fld] = claims.CategoryValue(v)
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
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT "level_of_care", count(*) FROM %s%s GROUP BY 1`, pgFQN(r.cfg.ClaimsTable), where),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("group claims: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			level *string
			count int64
		)
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		key := ""
		if level != nil {
			key = *level
		}
		out[key] = count
	}
	return out, rows.Err()
}

// Upsert writes a summary row, overwriting the statistics when the
// (bucket, filter dimensions) key already exists.
func (r *Repository) Upsert(ctx context.Context, s storage.Summary) error {
	sql := fmt.Sprintf(`INSERT INTO %s
  ("level_of_care","state_treated_at","payer_name","payer_class","service_year","payment_received_year",
   "record_count","mean_allowed","min_allowed","max_allowed","median_allowed","mode_allowed","updated_at")
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now())
ON CONFLICT ("level_of_care","state_treated_at","payer_name","payer_class","service_year","payment_received_year")
DO UPDATE SET
  "record_count" = EXCLUDED."record_count",
  "mean_allowed" = EXCLUDED."mean_allowed",
  "min_allowed" = EXCLUDED."min_allowed",
  "max_allowed" = EXCLUDED."max_allowed",
  "median_allowed" = EXCLUDED."median_allowed",
  "mode_allowed" = EXCLUDED."mode_allowed",
  "updated_at" = now()`, pgFQN(r.cfg.MetricsTable))

	_, err := r.pool.Exec(ctx, sql,
		s.LevelOfCare, s.StateTreatedAt, s.PayerName, s.PayerClass, s.ServiceYear, s.PaymentReceivedYear,
		s.RecordCount, s.Mean, s.Min, s.Max, s.Median, s.Mode,
	)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// filterWhere renders a Filter as a WHERE clause with positional args.
// Year filters expand to half-open date ranges so indexes stay usable.
func filterWhere(f storage.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	eq := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(`"%s" = $%d`, col, len(args)))
	}
	yearRange := func(col string, year int) {
		if year == 0 {
			return
		}
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		args = append(args, from)
		conds = append(conds, fmt.Sprintf(`"%s" >= $%d`, col, len(args)))
		args = append(args, to)
		conds = append(conds, fmt.Sprintf(`"%s" < $%d`, col, len(args)))
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

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.claims" to
// "public"."claims". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
