// Package schema turns arbitrary source header text into canonical claims
// fields. It has two halves: a normalizer that collapses any header spelling
// into a lookup key, and a static alias table mapping those keys onto the
// canonical field set. Columns whose normalized header has no alias are
// dropped by the record builder; a lookup miss is not an error.
package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"claimstats/pkg/claims"
)

// NormalizeHeader produces the canonical lookup key for a source header:
//
//  1. trim surrounding whitespace, lowercase
//  2. strip accents (NFD -> remove Mn -> NFC)
//  3. collapse whitespace runs to a single underscore
//  4. drop every remaining character outside [a-z0-9_]
//
// Total function: any input yields a key, worst case "". Idempotent, since
// its output contains only characters the function passes through unchanged.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	b.Grow(len(ascii))
	inSpace := false
	for _, r := range ascii {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if inSpace && b.Len() > 0 {
				b.WriteByte('_')
			}
			inSpace = false
			b.WriteRune(r)
		default:
			// dropped
		}
	}
	return b.String()
}

// headerFields maps normalized header keys to canonical fields. This is
// configuration data, not logic: real-world files rename columns constantly,
// so new aliases get added here as they show up.
var headerFields = map[string]claims.Field{
	"practice_name": claims.PracticeName,
	"practice":      claims.PracticeName,
	"facility_name": claims.PracticeName,

	"charge_from_date":  claims.ChargeFromDate,
	"charge_from":       claims.ChargeFromDate,
	"from_date":         claims.ChargeFromDate,
	"date_of_service":   claims.ChargeFromDate,
	"service_date":      claims.ChargeFromDate,
	"dos":               claims.ChargeFromDate,
	"charge_to_date":    claims.ChargeToDate,
	"charge_to":         claims.ChargeToDate,
	"to_date":           claims.ChargeToDate,

	"charge_amount":  claims.ChargeAmount,
	"charges":        claims.ChargeAmount,
	"charged_amount": claims.ChargeAmount,
	"billed_amount":  claims.ChargeAmount,

	"allowed_amount": claims.AllowedAmount,
	"allowed":        claims.AllowedAmount,
	"allowed_amt":    claims.AllowedAmount,

	"paid_amount":    claims.PaidAmount,
	"paid":           claims.PaidAmount,
	"payment_amount": claims.PaidAmount,

	"payment_received_date": claims.PaymentReceivedDate,
	"payment_date":          claims.PaymentReceivedDate,
	"date_paid":             claims.PaymentReceivedDate,

	"revenue_code": claims.RevenueCode,
	"rev_code":     claims.RevenueCode,
	"rev":          claims.RevenueCode,

	"cpt_code": claims.CPTCode,
	"cpt":      claims.CPTCode,
	"hcpcs":    claims.CPTCode,

	"level_of_care": claims.LevelOfCare,
	"loc":           claims.LevelOfCare,
	"care_level":    claims.LevelOfCare,

	"payer_name":      claims.PayerName,
	"payer":           claims.PayerName,
	"insurance_name":  claims.PayerName,
	"payer_class":     claims.PayerClass,
	"plan_type":       claims.PayerClass,
	"insurance_class": claims.PayerClass,

	"state_treated_at": claims.StateTreatedAt,
	"state":            claims.StateTreatedAt,
	"treatment_state":  claims.StateTreatedAt,
}

// FieldFor maps a raw source header to its canonical field. The boolean is
// false when the column is unmapped and should be ignored.
func FieldFor(header string) (claims.Field, bool) {
	f, ok := headerFields[NormalizeHeader(header)]
	return f, ok
}

// AddAlias registers an extra header alias at runtime (from config). Aliases
// are normalized before insertion so config files can use the source
// spelling verbatim.
func AddAlias(header string, f claims.Field) {
	key := NormalizeHeader(header)
	if key == "" {
		return
	}
	headerFields[key] = f
}
