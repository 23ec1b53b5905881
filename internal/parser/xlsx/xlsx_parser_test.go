package xlsx_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"claimstats/internal/parser/xlsx"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	data := workbook(t, [][]any{
		{"Practice Name", "", "Charge Amount"},
		{"Lakeside", "ignored", "$100.00"},
		{nil, nil, nil},
		{"Hillcrest", nil, 88.5},
	})

	res, err := xlsx.NewParser().ParseBytes(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// Blank header cell drops its column.
	if len(res.Headers) != 2 {
		t.Fatalf("headers = %v", res.Headers)
	}
	if len(res.Rows) != 2 || res.Skipped != 1 {
		t.Fatalf("rows=%d skipped=%d, want 2/1", len(res.Rows), res.Skipped)
	}
	if res.Rows[0]["Practice Name"] != "Lakeside" {
		t.Errorf("practice = %v", res.Rows[0]["Practice Name"])
	}
	if res.Rows[0]["Charge Amount"] != "$100.00" {
		t.Errorf("amount = %v", res.Rows[0]["Charge Amount"])
	}
	// Column B has no header; its cell must not leak through.
	if _, ok := res.Rows[0]["ignored"]; ok {
		t.Error("headerless column leaked into row")
	}
	if res.Rows[1]["Charge Amount"] != 88.5 {
		t.Errorf("numeric amount = %#v", res.Rows[1]["Charge Amount"])
	}
}

func TestParseTooFewRows(t *testing.T) {
	data := workbook(t, [][]any{{"Only", "Headers"}})
	if _, err := xlsx.NewParser().ParseBytes(data); err == nil {
		t.Fatal("expected error for header-only workbook")
	}
}

func TestParseNoHeaders(t *testing.T) {
	data := workbook(t, [][]any{
		{"", "", ""},
		{"a", "b", "c"},
	})
	if _, err := xlsx.NewParser().ParseBytes(data); err == nil {
		t.Fatal("expected error for blank header row")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := xlsx.NewParser().ParseBytes([]byte("not a workbook")); err == nil {
		t.Fatal("expected error for non-xlsx bytes")
	}
}
