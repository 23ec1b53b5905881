package parser

import "strconv"

// InferCell parses a raw cell into the narrowest sensible type: int64,
// float64, bool, else the original string. Values with leading zeros are kept
// as strings so codes like "0420" survive intact.
func InferCell(s string) any {
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true", "TRUE", "True":
		return true
	case "false", "FALSE", "False":
		return false
	}
	return s
}
