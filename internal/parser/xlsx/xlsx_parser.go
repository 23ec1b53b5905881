// Package xlsx implements a spreadsheet reader for claims files using
// excelize. Only the first sheet is read; the first row supplies headers and
// every following row is zipped positionally against them.
package xlsx

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/xuri/excelize/v2"

	"claimstats/internal/parser"
)

// Parser reads the first sheet of an XLSX workbook. Safe to reuse;
// not concurrency-safe.
type Parser struct{}

// NewParser constructs a Parser.
func NewParser() *Parser { return &Parser{} }

// Parse reads the workbook and returns headers plus raw rows.
//
// Structural failures (fatal): unreadable workbook, fewer than two rows
// (no headers or no data), zero non-empty header cells. Everything else is
// soft: blank header cells drop their column, row cells beyond the header
// count are ignored, missing trailing cells are treated as absent, and
// entirely empty rows are skipped and counted.
//
// Cells are read raw (RawCellValue) so date cells surface as serial numbers
// and reach the coercer's numeric date path instead of a locale-formatted
// string.
func (p *Parser) Parse(r io.Reader) (parser.Result, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return parser.Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return parser.Result{}, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	grid, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return parser.Result{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(grid) < 2 {
		return parser.Result{}, fmt.Errorf("sheet %q has %d row(s); need a header row and at least one data row", sheet, len(grid))
	}

	// Header row: blank cells drop the column but positions are kept so data
	// cells still line up.
	headerAt := map[int]string{}
	var headers []string
	for i, h := range grid[0] {
		if h == "" {
			continue
		}
		headerAt[i] = h
		headers = append(headers, h)
	}
	if len(headers) == 0 {
		return parser.Result{}, fmt.Errorf("sheet %q has no usable headers", sheet)
	}

	var (
		rows    []parser.Row
		skipped int
	)
	for _, cells := range grid[1:] {
		row := make(parser.Row, len(headers))
		populated := 0
		for i, cell := range cells {
			h, ok := headerAt[i]
			if !ok || cell == "" {
				continue
			}
			row[h] = parser.InferCell(cell)
			populated++
		}
		if populated == 0 {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	if skipped > 0 {
		log.Printf("xlsx: sheet %q: skipped %d empty row(s)", sheet, skipped)
	}

	return parser.Result{Headers: headers, Rows: rows, Skipped: skipped}, nil
}

// ParseBytes is a convenience for callers holding the whole upload in memory.
func (p *Parser) ParseBytes(data []byte) (parser.Result, error) {
	return p.Parse(bytes.NewReader(data))
}
