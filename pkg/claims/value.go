package claims

import (
	"strconv"
	"time"
)

// Value is a tagged typed cell value. The zero Value is not meaningful;
// construct values with Amount, Date, or Category. Null is represented by
// absence from the Record, which keeps "unset" and "zero" distinct.
type Value struct {
	kind     Kind
	amount   float64
	date     time.Time
	category string
}

// AmountValue wraps a currency/decimal number.
func AmountValue(f float64) Value { return Value{kind: KindAmount, amount: f} }

// DateValue wraps a calendar date. Time-of-day is truncated.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// CategoryValue wraps a categorical string.
func CategoryValue(s string) Value { return Value{kind: KindCategory, category: s} }

// Kind reports the value's kind tag.
func (v Value) Kind() Kind { return v.kind }

// SQL returns the value in the representation database drivers expect:
// float64 for amounts, time.Time for dates, string for categories.
func (v Value) SQL() any {
	switch v.kind {
	case KindAmount:
		return v.amount
	case KindDate:
		return v.date
	default:
		return v.category
	}
}

// String renders the value for fingerprints and diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindAmount:
		return strconv.FormatFloat(v.amount, 'f', -1, 64)
	case KindDate:
		return v.date.Format(DateLayout)
	default:
		return v.category
	}
}
