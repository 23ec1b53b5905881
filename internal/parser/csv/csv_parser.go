// Package csv implements a streaming delimited-text parser for claims files.
// It avoids whole-file buffering and can handle multi-megabyte inputs safely:
// the only accumulated state is the final row slice. Individual bad rows are
// soft-failed and counted, never fatal.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"claimstats/internal/parser"
)

// Options configures the parser. All fields are optional; sensible defaults
// are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each cell value.
	TrimSpace bool

	// SkipLogLimit caps per-row skip log lines so a pathological file cannot
	// flood the log. When zero, 400 is used.
	SkipLogLimit int
}

// Parser parses delimited text according to Options. Safe to reuse across
// inputs; not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// Parse reads the header row and then streams body rows, inferring a type
// for each cell (int, float, bool; everything else stays a string). Rows with
// zero populated cells are filtered out here so the record builder never sees
// them. Returns an error only for structural problems (unreadable header);
// malformed body rows are skipped and counted.
func (p *Parser) Parse(r io.Reader) (parser.Result, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // enforce width ourselves, soft-fail mismatches

	head, err := cr.Read()
	if err != nil {
		return parser.Result{}, fmt.Errorf("read header: %w", err)
	}
	headers := make([]string, len(head))
	for i, h := range head {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		headers[i] = h
	}

	logLimit := p.opt.SkipLogLimit
	if logLimit == 0 {
		logLimit = 400
	}

	var (
		rows    []parser.Row
		skipped int
	)
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < logLimit {
				log.Printf("csv: skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(cells) != len(headers) {
			if skipped < logLimit {
				log.Printf("csv: skipping row %d: expected %d fields, got %d", line, len(headers), len(cells))
			}
			skipped++
			continue
		}

		row := make(parser.Row, len(cells))
		populated := 0
		for i, cell := range cells {
			if p.opt.TrimSpace {
				cell = strings.TrimSpace(cell)
			}
			if cell == "" {
				continue
			}
			row[headers[i]] = parser.InferCell(cell)
			populated++
		}
		if populated == 0 {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	return parser.Result{Headers: headers, Rows: rows, Skipped: skipped}, nil
}
