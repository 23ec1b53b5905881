// Package aggregate computes descriptive statistics over persisted claims,
// one summary per level-of-care bucket under an optional filter set, and
// caches the results in the summary store keyed by the filter combination.
package aggregate

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"claimstats/internal/metrics"
	"claimstats/internal/storage"
	"claimstats/pkg/claims"
)

// Buckets is the closed level-of-care domain, in the order summaries are
// returned.
var Buckets = []string{
	claims.LevelDetox,
	claims.LevelRes,
	claims.LevelPHP,
	claims.LevelIOP,
	claims.LevelOther,
}

// Engine queries the claim store per bucket and upserts summaries.
type Engine struct {
	claims    storage.ClaimStore
	summaries storage.SummaryStore
}

// New constructs an Engine over the two stores.
func New(cs storage.ClaimStore, ss storage.SummaryStore) *Engine {
	return &Engine{claims: cs, summaries: ss}
}

// Compute returns one summary per bucket, always len(Buckets) entries in
// bucket order. Buckets are independent and computed concurrently; each
// bucket's query -> compute -> upsert path is sequential so the upsert sees
// the count just computed.
//
// Compute never fails: a storage error in one bucket degrades that bucket to
// a zero-valued summary, and a failed upsert is logged while the computed
// summary is still returned.
func (e *Engine) Compute(ctx context.Context, f storage.Filter) []storage.Summary {
	start := time.Now()
	out := make([]storage.Summary, len(Buckets))

	g, gctx := errgroup.WithContext(ctx)
	for i, bucket := range Buckets {
		i, bucket := i, bucket
		g.Go(func() error {
			out[i] = e.bucket(gctx, bucket, f)
			return nil
		})
	}
	_ = g.Wait()

	metrics.RecordStep("aggregate", nil, time.Since(start))
	return out
}

// bucket computes one bucket's summary. All failure paths resolve to the
// zero-valued summary for that bucket.
func (e *Engine) bucket(ctx context.Context, bucket string, f storage.Filter) storage.Summary {
	s := storage.SummaryFor(bucket, f)

	bf := f
	bf.LevelOfCare = bucket

	n, err := e.claims.Count(ctx, bf)
	if err != nil {
		log.Printf("aggregate: %s: count failed, returning zero summary: %v", bucket, err)
		return s
	}
	s.RecordCount = n
	if n == 0 {
		e.upsert(ctx, s)
		return s
	}

	amounts, err := e.claims.FindAmounts(ctx, bf)
	if err != nil {
		log.Printf("aggregate: %s: amount fetch failed, returning zero summary: %v", bucket, err)
		return storage.SummaryFor(bucket, f)
	}

	st := Describe(amounts)
	s.Mean = st.Mean
	s.Min = st.Min
	s.Max = st.Max
	s.Median = st.Median
	s.Mode = st.Mode

	e.upsert(ctx, s)
	return s
}

// upsert persists a summary; failure is logged, never propagated, and the
// in-memory summary stays in the result list.
func (e *Engine) upsert(ctx context.Context, s storage.Summary) {
	if err := e.summaries.Upsert(ctx, s); err != nil {
		log.Printf("aggregate: %s: summary upsert failed: %v", s.LevelOfCare, err)
	}
}
