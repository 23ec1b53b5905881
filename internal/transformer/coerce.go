// Package transformer converts raw parsed rows into canonical claim records:
// header mapping, per-field value coercion, and level-of-care derivation.
package transformer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"claimstats/pkg/claims"
)

// serialDateEpoch is the spreadsheet serial-date day 0 (1899-12-30).
// Serial dates count days from here; 44197 lands in January 2021.
var serialDateEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Numeric date disambiguation thresholds. These are heuristic and can
// misclassify a legitimate sub-100000 Unix timestamp as a serial date (or a
// huge serial date as a timestamp); they are kept exactly as-is for
// compatibility with files already ingested under these rules.
const (
	serialDateMin    = 1000
	serialDateMax    = 100000
	unixSecondsLimit = 10_000_000_000
)

var mdyPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// dateLayouts tried, in order, for generic string date parsing.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
}

// Coerce converts a raw cell value into the typed value declared for field f.
// It never fails: every unparseable input resolves to (Value{}, false), which
// the builder treats as null.
func Coerce(f claims.Field, raw any) (claims.Value, bool) {
	if raw == nil {
		return claims.Value{}, false
	}
	switch claims.KindOf(f) {
	case claims.KindAmount:
		return coerceAmount(raw)
	case claims.KindDate:
		return coerceDate(raw)
	default:
		return coerceCategory(raw)
	}
}

// coerceAmount parses currency-formatted numbers. Textual input is stripped
// of '$' and ',' before parsing; numeric input is used directly.
func coerceAmount(raw any) (claims.Value, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return claims.Value{}, false
		}
		return claims.AmountValue(v), true
	case int64:
		return claims.AmountValue(float64(v)), true
	case int:
		return claims.AmountValue(float64(v)), true
	case string:
		s := strings.TrimSpace(v)
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return claims.Value{}, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return claims.Value{}, false
		}
		return claims.AmountValue(f), true
	}
	return claims.Value{}, false
}

// coerceDate resolves calendar dates in priority order: already-a-date,
// numeric (serial date, then Unix seconds, then Unix millis), the explicit
// m/d/yyyy pattern, then generic layouts.
func coerceDate(raw any) (claims.Value, bool) {
	switch v := raw.(type) {
	case time.Time:
		return claims.DateValue(v), true
	case float64:
		return numericDate(v)
	case int64:
		return numericDate(float64(v))
	case int:
		return numericDate(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return claims.Value{}, false
		}
		// Numeric text (common in raw spreadsheet cells) follows the same
		// disambiguation rules as numeric input.
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return numericDate(n)
		}
		if mdyPattern.MatchString(s) {
			// Explicit month/day/year; generic parsing is locale-ambiguous here.
			if t, err := time.Parse("1/2/2006", s); err == nil {
				return claims.DateValue(t), true
			}
			return claims.Value{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return claims.DateValue(t), true
			}
		}
		return claims.Value{}, false
	}
	return claims.Value{}, false
}

func numericDate(n float64) (claims.Value, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return claims.Value{}, false
	}
	switch {
	case n > serialDateMin && n < serialDateMax:
		return claims.DateValue(serialDateEpoch.AddDate(0, 0, int(n))), true
	case n < unixSecondsLimit:
		return claims.DateValue(time.Unix(int64(n), 0).UTC()), true
	default:
		return claims.DateValue(time.UnixMilli(int64(n)).UTC()), true
	}
}

// coerceCategory stringifies any scalar. Integral floats render without a
// decimal point so spreadsheet-typed codes like 250.0 become "250".
func coerceCategory(raw any) (claims.Value, bool) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return claims.Value{}, false
		}
		return claims.CategoryValue(s), true
	case int64:
		return claims.CategoryValue(strconv.FormatInt(v, 10)), true
	case int:
		return claims.CategoryValue(strconv.Itoa(v)), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return claims.Value{}, false
		}
		return claims.CategoryValue(strconv.FormatFloat(v, 'f', -1, 64)), true
	case bool:
		return claims.CategoryValue(strconv.FormatBool(v)), true
	case time.Time:
		return claims.CategoryValue(v.Format(claims.DateLayout)), true
	}
	return claims.Value{}, false
}
