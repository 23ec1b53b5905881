// Package parser defines the contract shared by the file readers: turn raw
// file bytes into a header list plus a sequence of raw rows. Concrete
// implementations live in the csv and xlsx subpackages.
package parser

import "io"

// Row is one raw source row: original header text -> untyped cell value
// (string, int64, float64, bool). Absent keys mean the cell was empty.
type Row map[string]any

// Result is the outcome of parsing one file. Skipped counts rows dropped for
// structural reasons (parse errors, width mismatches, empty rows); those are
// diagnostics, not failures.
type Result struct {
	Headers []string
	Rows    []Row
	Skipped int
}

// Parser parses a whole input into headers and raw rows. Implementations
// soft-fail individual rows and only return an error for structural problems
// that make the entire file unusable.
type Parser interface {
	Parse(r io.Reader) (Result, error)
}
