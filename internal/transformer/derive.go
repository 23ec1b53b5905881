package transformer

import "claimstats/pkg/claims"

// DeriveLevelOfCare fills a missing level_of_care from the revenue code's
// leading digit. Runs once per record, after all coercions, because it reads
// the coerced revenue_code value. Ordered rule table:
//
//	1 -> IOP, 2 -> PHP, 3 -> RES, 4 -> DETOX, anything else -> OTHER
//
// A record with neither field gets the UNKNOWN sentinel; level_of_care is
// never left unset.
func DeriveLevelOfCare(rec claims.Record) {
	if _, ok := rec.Category(claims.LevelOfCare); ok {
		return
	}
	code, ok := rec.Category(claims.RevenueCode)
	if !ok || code == "" {
		rec[claims.LevelOfCare] = claims.CategoryValue(claims.LevelUnknown)
		return
	}
	var level string
	switch code[0] {
	case '1':
		level = claims.LevelIOP
	case '2':
		level = claims.LevelPHP
	case '3':
		level = claims.LevelRes
	case '4':
		level = claims.LevelDetox
	default:
		level = claims.LevelOther
	}
	rec[claims.LevelOfCare] = claims.CategoryValue(level)
}
