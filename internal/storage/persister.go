package storage

import (
	"context"
	"log"
	"time"

	"claimstats/internal/metrics"
	"claimstats/pkg/claims"
)

// DefaultBatchSize is the number of records attempted per bulk insert.
const DefaultBatchSize = 50

// FailedRecord identifies a record that could not be persisted even after the
// per-record fallback, with enough content to diagnose it.
type FailedRecord struct {
	Index  int // position in the input sequence
	Record claims.Record
	Err    error
}

// PersistResult accounts for one persistence run. Saved counts rows the
// store reported inserted; duplicates skipped by the store show up as
// attempted-but-not-saved without appearing in Failed.
type PersistResult struct {
	Attempted int
	Saved     int64
	Failed    []FailedRecord
}

// PersistBatches writes records to the store in bounded batches. Each batch
// is first attempted as one bulk insert with duplicate-skipping; if the bulk
// write fails, every record in that batch is retried individually so one bad
// record cannot sink its 49 neighbors. Failures are logged with the record's
// content and collected in the result; they never abort later batches.
//
// The only errors that surface to the caller are context cancellation —
// partial failure is a result, not an error.
func PersistBatches(ctx context.Context, store ClaimStore, recs []claims.Record, batchSize int) (PersistResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	res := PersistResult{Attempted: len(recs)}
	start := time.Now()
	lastFlush := start
	var batches int

	for lo := 0; lo < len(recs); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		hi := lo + batchSize
		if hi > len(recs) {
			hi = len(recs)
		}
		batch := recs[lo:hi]

		n, err := store.CreateMany(ctx, batch, true)
		res.Saved += n
		if err != nil {
			log.Printf("persist: bulk insert of batch %d-%d failed, retrying records individually: %v", lo, hi-1, err)
			metrics.RecordRows("bulk_failed", len(batch))
			res.fallback(ctx, store, batch, lo)
		}

		batches++
		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(hi-lo) / since.Seconds()
		}
		log.Printf("persist: batch #%d rows=%d saved_total=%d rps=%.0f elapsed=%s",
			batches, hi-lo, res.Saved, rps, now.Sub(start).Truncate(time.Millisecond))
		lastFlush = now
	}

	metrics.RecordRows("saved", int(res.Saved))
	metrics.RecordRows("failed", len(res.Failed))
	log.Printf("persist: done attempted=%d saved=%d failed=%d", res.Attempted, res.Saved, len(res.Failed))
	return res, nil
}

// fallback retries one failed batch record by record.
func (res *PersistResult) fallback(ctx context.Context, store ClaimStore, batch []claims.Record, offset int) {
	for i, rec := range batch {
		if ctx.Err() != nil {
			return
		}
		if err := store.Create(ctx, rec); err != nil {
			log.Printf("persist: record %d not saved: %v; content: %v", offset+i, err, describe(rec))
			res.Failed = append(res.Failed, FailedRecord{Index: offset + i, Record: rec, Err: err})
			continue
		}
		res.Saved++
	}
}

// describe renders a record compactly for failure logs, in column order.
func describe(rec claims.Record) map[string]string {
	out := make(map[string]string, len(rec))
	for f, v := range rec {
		out[string(f)] = v.String()
	}
	return out
}
