package ingest

import (
	"context"
	"sync"
	"testing"

	"claimstats/internal/storage"
	"claimstats/pkg/claims"
)

const upload = `Practice Name,Charge Amount,Allowed Amount,Charge From Date,Revenue Code,LOC,State Treated At
Sunrise Health,"$100.00","$80.00",01/15/2023,305,,UT
Sunrise Health,"$250.50","$200.00",02/01/2023,912,,UT
Sunrise Health,"$75.00",,03/10/2023,126,,CA
`

func TestParseDelimitedBuildsCanonicalRecords(t *testing.T) {
	res, err := ParseDelimited(upload, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(res.Records))
	}

	first := res.Records[0]
	if got, ok := first.Amount(claims.ChargeAmount); !ok || got != 100.0 {
		t.Errorf("charge amount = %v (%v), want 100", got, ok)
	}
	if got, ok := first.Amount(claims.AllowedAmount); !ok || got != 80.0 {
		t.Errorf("allowed amount = %v (%v), want 80", got, ok)
	}
	if d, ok := first.Date(claims.ChargeFromDate); !ok || d.Format(claims.DateLayout) != "2023-01-15" {
		t.Errorf("charge from date = %v (%v)", d, ok)
	}

	// Empty LOC, so level of care derives from each revenue code's leading digit.
	if loc, _ := first.Category(claims.LevelOfCare); loc != claims.LevelRes {
		t.Errorf("row 1 level of care = %q, want %q", loc, claims.LevelRes)
	}
	if loc, _ := res.Records[1].Category(claims.LevelOfCare); loc != claims.LevelOther {
		t.Errorf("row 2 level of care = %q, want %q", loc, claims.LevelOther)
	}
	if loc, _ := res.Records[2].Category(claims.LevelOfCare); loc != claims.LevelIOP {
		t.Errorf("row 3 level of care = %q, want %q", loc, claims.LevelIOP)
	}

	// Absent allowed amount must stay absent, not become zero.
	if _, ok := res.Records[2].Amount(claims.AllowedAmount); ok {
		t.Error("missing allowed amount should be absent from the record")
	}
}

func TestParseDelimitedPreviewCap(t *testing.T) {
	text := "Charge Amount\n"
	for i := 0; i < 25; i++ {
		text += "$10.00\n"
	}
	res, err := ParseDelimited(text, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Records) != 25 {
		t.Fatalf("records = %d, want 25", len(res.Records))
	}
	if len(res.Preview) != previewSize {
		t.Errorf("preview = %d, want %d", len(res.Preview), previewSize)
	}
}

func TestParseDelimitedPreviewShortFile(t *testing.T) {
	res, err := ParseDelimited("Charge Amount\n$10.00\n$20.00\n", "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(res.Preview) != 2 {
		t.Errorf("preview = %d, want 2", len(res.Preview))
	}
}

func TestParseDelimitedHeaderFailure(t *testing.T) {
	if _, err := ParseDelimited("", ""); err == nil {
		t.Fatal("empty input should fail")
	}
}

// runStore tracks persisted records and summary upserts for Run.
type runStore struct {
	mu      sync.Mutex
	saved   []claims.Record
	upserts []storage.Summary
}

func (s *runStore) Create(_ context.Context, rec claims.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, rec)
	return nil
}

func (s *runStore) CreateMany(_ context.Context, recs []claims.Record, _ bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, recs...)
	return int64(len(recs)), nil
}

func (s *runStore) Count(_ context.Context, f storage.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.saved {
		if loc, _ := rec.Category(claims.LevelOfCare); loc == f.LevelOfCare {
			n++
		}
	}
	return n, nil
}

func (s *runStore) FindAmounts(_ context.Context, f storage.Filter) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []float64
	for _, rec := range s.saved {
		loc, _ := rec.Category(claims.LevelOfCare)
		if loc != f.LevelOfCare {
			continue
		}
		if v, ok := rec.Amount(claims.AllowedAmount); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *runStore) FindMany(context.Context, storage.Filter, int, int) ([]claims.Record, error) {
	return nil, nil
}

func (s *runStore) GroupByLevelOfCare(context.Context, storage.Filter) (map[string]int64, error) {
	return nil, nil
}

func (s *runStore) Upsert(_ context.Context, sum storage.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, sum)
	return nil
}

func TestRunPersistsThenAggregates(t *testing.T) {
	file, err := ParseDelimited(upload, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	store := &runStore{}
	if err := Run(context.Background(), store, store, file, 0); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(store.saved) != 3 {
		t.Fatalf("saved = %d, want 3", len(store.saved))
	}
	if len(store.upserts) == 0 {
		t.Fatal("run should recompute summaries after persisting")
	}

	// The RES bucket summary reflects the one record with an allowed amount.
	for _, sum := range store.upserts {
		if sum.LevelOfCare == claims.LevelRes {
			if sum.RecordCount != 1 || sum.Mean != 80 {
				t.Errorf("RES summary = %+v, want count 1 mean 80", sum)
			}
		}
	}
}
