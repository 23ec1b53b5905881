// Package storage contains the storage-agnostic contracts for the claims
// record store and the derived metrics summary store, plus the batched
// persister that writes canonical records with per-record fallback.
//
// Backends (Postgres, SQLite) implement these interfaces in subpackages; the
// pipeline and the aggregation engine depend only on this package.
package storage

import (
	"context"

	"claimstats/pkg/claims"
)

// Filter enumerates every supported query dimension as an optional field.
// The zero value matches everything. Zero values ("" / 0) mean "not
// filtered"; the same sentinels are what keys a summary row, so a summary's
// uniqueness tuple is exactly this struct plus its bucket.
type Filter struct {
	LevelOfCare         string
	StateTreatedAt      string
	PayerName           string
	PayerClass          string
	ServiceYear         int // filters charge_from_date to [year-01-01, year+1-01-01)
	PaymentReceivedYear int // same range filter on payment_received_date
}

// ClaimStore is the record-store contract consumed by the pipeline and the
// aggregation engine. Implementations provide at least read-committed
// consistency between Count and the Find* operations.
type ClaimStore interface {
	// Create inserts a single record.
	Create(ctx context.Context, rec claims.Record) error

	// CreateMany inserts records in bulk. With skipDuplicates, records whose
	// fingerprint already exists are silently skipped (re-upload idempotence).
	// Returns the number of rows actually inserted.
	CreateMany(ctx context.Context, recs []claims.Record, skipDuplicates bool) (int64, error)

	// Count returns the number of records matching f.
	Count(ctx context.Context, f Filter) (int64, error)

	// FindAmounts returns the allowed-amount of every matching record,
	// with nulls already dropped.
	FindAmounts(ctx context.Context, f Filter) ([]float64, error)

	// FindMany returns matching records ordered by insertion, for paging.
	FindMany(ctx context.Context, f Filter, limit, offset int) ([]claims.Record, error)

	// GroupByLevelOfCare returns record counts per level-of-care value.
	GroupByLevelOfCare(ctx context.Context, f Filter) (map[string]int64, error)
}

// Summary is one precomputed statistics row for a (bucket, filter) pair.
// The filter dimensions are flattened in so the uniqueness key is visible in
// the row itself.
type Summary struct {
	LevelOfCare         string
	StateTreatedAt      string
	PayerName           string
	PayerClass          string
	ServiceYear         int
	PaymentReceivedYear int

	RecordCount int64
	Mean        float64
	Min         float64
	Max         float64
	Median      float64
	Mode        float64
}

// SummaryFor returns a zero-statistics summary keyed by bucket and the
// filter's dimension values.
func SummaryFor(bucket string, f Filter) Summary {
	return Summary{
		LevelOfCare:         bucket,
		StateTreatedAt:      f.StateTreatedAt,
		PayerName:           f.PayerName,
		PayerClass:          f.PayerClass,
		ServiceYear:         f.ServiceYear,
		PaymentReceivedYear: f.PaymentReceivedYear,
	}
}

// SummaryStore persists computed summaries. Upsert overwrites on key
// conflict; recomputing with the same filters never duplicates.
type SummaryStore interface {
	Upsert(ctx context.Context, s Summary) error
}
