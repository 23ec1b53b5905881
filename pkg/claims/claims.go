// Package claims defines the canonical claims schema shared by the parser,
// transformer, and storage layers: the set of canonical fields, the tagged
// value type each field holds, and the record map that one normalized claims
// row is represented as.
//
// The field table below is the single source of truth for both value coercion
// and the persisted column set. Extending the schema means adding a field here
// and a header alias in internal/schema; nothing else in the pipeline changes.
package claims

import "time"

// Field identifies one column of the normalized claims schema. The string
// value doubles as the database column name.
type Field string

const (
	PracticeName        Field = "practice_name"
	ChargeFromDate      Field = "charge_from_date"
	ChargeToDate        Field = "charge_to_date"
	ChargeAmount        Field = "charge_amount"
	AllowedAmount       Field = "allowed_amount"
	PaidAmount          Field = "paid_amount"
	PaymentReceivedDate Field = "payment_received_date"
	RevenueCode         Field = "revenue_code"
	CPTCode             Field = "cpt_code"
	LevelOfCare         Field = "level_of_care"
	PayerName           Field = "payer_name"
	PayerClass          Field = "payer_class"
	StateTreatedAt      Field = "state_treated_at"
)

// Kind is the declared value kind of a canonical field.
type Kind uint8

const (
	KindAmount   Kind = iota // currency / decimal number
	KindDate                 // calendar date
	KindCategory             // categorical string
)

// fieldKinds declares the value kind for every canonical field.
var fieldKinds = map[Field]Kind{
	PracticeName:        KindCategory,
	ChargeFromDate:      KindDate,
	ChargeToDate:        KindDate,
	ChargeAmount:        KindAmount,
	AllowedAmount:       KindAmount,
	PaidAmount:          KindAmount,
	PaymentReceivedDate: KindDate,
	RevenueCode:         KindCategory,
	CPTCode:             KindCategory,
	LevelOfCare:         KindCategory,
	PayerName:           KindCategory,
	PayerClass:          KindCategory,
	StateTreatedAt:      KindCategory,
}

// fieldOrder is the stable column order used for persistence and fingerprints.
var fieldOrder = []Field{
	PracticeName,
	ChargeFromDate,
	ChargeToDate,
	ChargeAmount,
	AllowedAmount,
	PaidAmount,
	PaymentReceivedDate,
	RevenueCode,
	CPTCode,
	LevelOfCare,
	PayerName,
	PayerClass,
	StateTreatedAt,
}

// Fields returns every canonical field in stable column order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// Columns returns the persisted column names in stable order.
func Columns() []string {
	out := make([]string, len(fieldOrder))
	for i, f := range fieldOrder {
		out[i] = string(f)
	}
	return out
}

// KindOf returns the declared kind for f. Unknown fields report KindCategory;
// callers only reach this through the field table, so that path is inert.
func KindOf(f Field) Kind {
	if k, ok := fieldKinds[f]; ok {
		return k
	}
	return KindCategory
}

// Level-of-care buckets. The set is closed; aggregation iterates it as a
// static list and derivation never produces a value outside it (plus Unknown).
const (
	LevelDetox   = "DETOX"
	LevelRes     = "RES"
	LevelPHP     = "PHP"
	LevelIOP     = "IOP"
	LevelOther   = "OTHER"
	LevelUnknown = "UNKNOWN"
)

// DateLayout is the calendar-date layout used whenever a date value is
// rendered as text (fingerprints, sqlite storage, logs).
const DateLayout = "2006-01-02"

// Record is one normalized claims row: canonical field -> typed value.
// Absent keys mean null. Values are always of the field's declared kind;
// the coercion boundary guarantees no raw value ever lands here.
type Record map[Field]Value

// Amount returns the amount value of f and whether it is set.
func (r Record) Amount(f Field) (float64, bool) {
	v, ok := r[f]
	if !ok || v.kind != KindAmount {
		return 0, false
	}
	return v.amount, true
}

// Date returns the date value of f and whether it is set.
func (r Record) Date(f Field) (time.Time, bool) {
	v, ok := r[f]
	if !ok || v.kind != KindDate {
		return time.Time{}, false
	}
	return v.date, true
}

// Category returns the categorical value of f and whether it is set.
func (r Record) Category(f Field) (string, bool) {
	v, ok := r[f]
	if !ok || v.kind != KindCategory {
		return "", false
	}
	return v.category, true
}
