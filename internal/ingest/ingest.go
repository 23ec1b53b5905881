// Package ingest is the surface the surrounding application calls: parse an
// uploaded file into canonical records, persist them, and trigger metric
// recomputation. One upload flows through these stages strictly in sequence.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"claimstats/internal/aggregate"
	"claimstats/internal/metrics"
	"claimstats/internal/parser"
	pcsv "claimstats/internal/parser/csv"
	"claimstats/internal/parser/xlsx"
	"claimstats/internal/storage"
	"claimstats/internal/transformer"
	"claimstats/pkg/claims"
)

// previewSize is how many built records a FileResult carries for display.
const previewSize = 10

// FileResult is the outcome of parsing one uploaded file.
type FileResult struct {
	Headers []string
	Records []claims.Record
	Preview []claims.Record
	Skipped int // rows dropped by the reader or the per-row guard
}

// ParseDelimited parses delimited text into canonical records. delimiter is
// the field separator; empty means comma. Structural errors (unreadable
// header) propagate; individual bad rows are skipped and counted.
func ParseDelimited(text, delimiter string) (*FileResult, error) {
	start := time.Now()
	opts := pcsv.Options{TrimSpace: true}
	if delimiter != "" {
		opts.Comma = []rune(delimiter)[0]
	}
	p := pcsv.NewParser(opts)
	res, err := p.Parse(strings.NewReader(text))
	metrics.RecordStep("parse_delimited", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("parse delimited: %w", err)
	}
	return build(res), nil
}

// ParseSpreadsheet parses an XLSX upload into canonical records. Fails when
// the workbook has fewer than two rows or no usable headers.
func ParseSpreadsheet(data []byte) (*FileResult, error) {
	start := time.Now()
	res, err := xlsx.NewParser().ParseBytes(data)
	metrics.RecordStep("parse_spreadsheet", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("parse spreadsheet: %w", err)
	}
	return build(res), nil
}

// build runs the record builder over parsed rows. Each row is guarded: a
// panic in one row's transform skips that row and the rest of the file keeps
// going.
func build(res parser.Result) *FileResult {
	out := &FileResult{Headers: res.Headers, Skipped: res.Skipped}
	for _, row := range res.Rows {
		rec, ok := buildRow(res.Headers, row)
		if !ok {
			out.Skipped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	if out.Skipped > 0 {
		log.Printf("ingest: %d row(s) skipped, %d record(s) built", out.Skipped, len(out.Records))
	}
	metrics.RecordRows("parsed", len(out.Records))
	metrics.RecordRows("skipped", out.Skipped)

	n := previewSize
	if len(out.Records) < n {
		n = len(out.Records)
	}
	out.Preview = out.Records[:n]
	return out
}

func buildRow(headers []string, row parser.Row) (rec claims.Record, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ingest: row transform failed, skipping row: %v", r)
			ok = false
		}
	}()
	return transformer.Build(headers, row), true
}

// Persist writes records through the batch persister. Partial failure is a
// result, never an error; only context cancellation propagates.
func Persist(ctx context.Context, store storage.ClaimStore, recs []claims.Record, batchSize int) (storage.PersistResult, error) {
	start := time.Now()
	res, err := storage.PersistBatches(ctx, store, recs, batchSize)
	metrics.RecordStep("persist", err, time.Since(start))
	return res, err
}

// Run executes the full upload flow for one already-parsed file: persist the
// records, then recompute the unfiltered summaries so dashboards reflect the
// new data. Stages run strictly in sequence.
func Run(ctx context.Context, store storage.ClaimStore, summaries storage.SummaryStore, file *FileResult, batchSize int) error {
	uploadID := uuid.NewString()
	log.Printf("ingest: upload %s: %d record(s) from %d column(s)", uploadID, len(file.Records), len(file.Headers))

	res, err := Persist(ctx, store, file.Records, batchSize)
	if err != nil {
		return fmt.Errorf("upload %s: %w", uploadID, err)
	}
	log.Printf("ingest: upload %s: attempted=%d saved=%d failed=%d",
		uploadID, res.Attempted, res.Saved, len(res.Failed))

	aggregate.New(store, summaries).Compute(ctx, storage.Filter{})
	return nil
}
