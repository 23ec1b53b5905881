package transformer

import (
	"testing"
	"time"

	"claimstats/pkg/claims"
)

func amount(t *testing.T, raw any) (float64, bool) {
	t.Helper()
	v, ok := Coerce(claims.ChargeAmount, raw)
	if !ok {
		return 0, false
	}
	rec := claims.Record{claims.ChargeAmount: v}
	f, _ := rec.Amount(claims.ChargeAmount)
	return f, true
}

func date(t *testing.T, raw any) (time.Time, bool) {
	t.Helper()
	v, ok := Coerce(claims.ChargeFromDate, raw)
	if !ok {
		return time.Time{}, false
	}
	rec := claims.Record{claims.ChargeFromDate: v}
	d, _ := rec.Date(claims.ChargeFromDate)
	return d, true
}

func TestCoerceAmount(t *testing.T) {
	if f, ok := amount(t, "$1,234.50"); !ok || f != 1234.50 {
		t.Fatalf("$1,234.50 -> %v, %v", f, ok)
	}
	if f, ok := amount(t, "$100.00"); !ok || f != 100.0 {
		t.Fatalf("$100.00 -> %v, %v", f, ok)
	}
	if f, ok := amount(t, 42.5); !ok || f != 42.5 {
		t.Fatalf("42.5 -> %v, %v", f, ok)
	}
	if f, ok := amount(t, int64(7)); !ok || f != 7 {
		t.Fatalf("7 -> %v, %v", f, ok)
	}
	for _, bad := range []any{"abc", "", "   ", nil, "$,"} {
		if f, ok := amount(t, bad); ok {
			t.Fatalf("%v should coerce to null, got %v", bad, f)
		}
	}
}

func TestCoerceDateSerial(t *testing.T) {
	// 44197 days past 1899-12-30 is 2021-01-01.
	d, ok := date(t, 44197)
	if !ok {
		t.Fatal("serial date did not coerce")
	}
	if d.Year() != 2021 || d.Month() != time.January || d.Day() != 1 {
		t.Fatalf("serial 44197 -> %v, want 2021-01-01", d)
	}
}

func TestCoerceDateUnixSeconds(t *testing.T) {
	// Below the 1e10 threshold but above the serial range: Unix seconds.
	d, ok := date(t, int64(1673740800)) // 2023-01-15T00:00:00Z
	if !ok {
		t.Fatal("unix seconds did not coerce")
	}
	if d.Year() != 2023 || d.Month() != time.January || d.Day() != 15 {
		t.Fatalf("unix seconds -> %v, want 2023-01-15", d)
	}
}

func TestCoerceDateUnixMillis(t *testing.T) {
	d, ok := date(t, float64(1673740800000)) // past 1e10: milliseconds
	if !ok {
		t.Fatal("unix millis did not coerce")
	}
	if d.Year() != 2023 || d.Month() != time.January || d.Day() != 15 {
		t.Fatalf("unix millis -> %v, want 2023-01-15", d)
	}
}

func TestCoerceDateStrings(t *testing.T) {
	d, ok := date(t, "01/15/2023")
	if !ok || d.Year() != 2023 || d.Month() != time.January || d.Day() != 15 {
		t.Fatalf("01/15/2023 -> %v, %v", d, ok)
	}
	// Explicit month/day/year, not day/month/year.
	d, ok = date(t, "2/1/2023")
	if !ok || d.Month() != time.February || d.Day() != 1 {
		t.Fatalf("2/1/2023 -> %v, %v", d, ok)
	}
	d, ok = date(t, "2023-06-30")
	if !ok || d.Month() != time.June || d.Day() != 30 {
		t.Fatalf("2023-06-30 -> %v, %v", d, ok)
	}
	for _, bad := range []any{"", "   ", "not a date", nil, "13/45/20"} {
		if d, ok := date(t, bad); ok {
			t.Fatalf("%v should coerce to null, got %v", bad, d)
		}
	}
}

func TestCoerceDatePassThrough(t *testing.T) {
	in := time.Date(2022, time.March, 9, 12, 30, 0, 0, time.UTC)
	d, ok := date(t, in)
	if !ok {
		t.Fatal("time.Time did not pass through")
	}
	// Time-of-day truncated.
	if !d.Equal(time.Date(2022, time.March, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("pass-through -> %v", d)
	}
}

func TestCoerceCategory(t *testing.T) {
	cases := []struct {
		raw  any
		want string
	}{
		{"RES", "RES"},
		{int64(250), "250"},
		{250.0, "250"},
		{120.5, "120.5"},
		{true, "true"},
	}
	for _, c := range cases {
		v, ok := Coerce(claims.RevenueCode, c.raw)
		if !ok {
			t.Fatalf("%v did not coerce", c.raw)
		}
		rec := claims.Record{claims.RevenueCode: v}
		if got, _ := rec.Category(claims.RevenueCode); got != c.want {
			t.Errorf("category %v -> %q, want %q", c.raw, got, c.want)
		}
	}
	if _, ok := Coerce(claims.RevenueCode, ""); ok {
		t.Fatal("empty string should coerce to null")
	}
	if _, ok := Coerce(claims.RevenueCode, nil); ok {
		t.Fatal("nil should coerce to null")
	}
}
