package claims

import (
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	if KindOf(ChargeAmount) != KindAmount {
		t.Errorf("charge_amount should be an amount field")
	}
	if KindOf(ChargeFromDate) != KindDate {
		t.Errorf("charge_from_date should be a date field")
	}
	if KindOf(PayerName) != KindCategory {
		t.Errorf("payer_name should be a category field")
	}
}

func TestRecordAccessorsEnforceKind(t *testing.T) {
	rec := Record{
		ChargeAmount: AmountValue(100),
		LevelOfCare:  CategoryValue(LevelRes),
	}
	if v, ok := rec.Amount(ChargeAmount); !ok || v != 100 {
		t.Errorf("Amount = %v (%v)", v, ok)
	}
	if _, ok := rec.Amount(LevelOfCare); ok {
		t.Error("Amount on a category value should miss")
	}
	if _, ok := rec.Category(ChargeAmount); ok {
		t.Error("Category on an amount value should miss")
	}
	if _, ok := rec.Date(ChargeFromDate); ok {
		t.Error("Date on an absent field should miss")
	}
}

func TestDateValueTruncatesToMidnightUTC(t *testing.T) {
	in := time.Date(2023, time.June, 30, 17, 45, 12, 0, time.FixedZone("X", 3600))
	rec := Record{ChargeFromDate: DateValue(in)}
	d, ok := rec.Date(ChargeFromDate)
	if !ok {
		t.Fatal("date absent")
	}
	want := time.Date(2023, time.June, 30, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("date = %v, want %v", d, want)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := Record{
		ChargeAmount: AmountValue(100),
		PayerName:    CategoryValue("Acme Health"),
	}
	b := Record{
		PayerName:    CategoryValue("Acme Health"),
		ChargeAmount: AmountValue(100),
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical content should fingerprint identically")
	}
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	a := Record{ChargeAmount: AmountValue(100)}
	b := Record{ChargeAmount: AmountValue(100.01)}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different amounts should fingerprint differently")
	}

	// A value moving between adjacent columns must change the hash.
	c := Record{ChargeAmount: AmountValue(100)}
	d := Record{AllowedAmount: AmountValue(100)}
	if c.Fingerprint() == d.Fingerprint() {
		t.Error("same value in a different column should fingerprint differently")
	}
}
