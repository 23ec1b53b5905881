package transformer

import (
	"claimstats/internal/schema"
	"claimstats/pkg/claims"
)

// Build transforms one raw row into a canonical claim record. headers is the
// source file's header list; row maps source header text to an untyped cell
// value. For each header the pipeline is: normalize -> map -> coerce.
// Unmapped columns and unparseable values are dropped silently. A row that
// maps zero fields still yields a record (with level_of_care UNKNOWN);
// filtering genuinely empty rows is the parser's job, not the builder's.
func Build(headers []string, row map[string]any) claims.Record {
	rec := make(claims.Record, len(headers))
	for _, h := range headers {
		field, ok := schema.FieldFor(h)
		if !ok {
			continue
		}
		raw, present := row[h]
		if !present {
			continue
		}
		if v, ok := Coerce(field, raw); ok {
			rec[field] = v
		}
	}
	DeriveLevelOfCare(rec)
	return rec
}

// BuildAll applies Build to every row. Rows are independent; a surprise in
// one row cannot affect the others.
func BuildAll(headers []string, rows []map[string]any) []claims.Record {
	out := make([]claims.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Build(headers, row))
	}
	return out
}
