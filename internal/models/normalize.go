package models

import "strings"

// NormalizeKey maps a raw join-key value to its canonical form:
//
//  1. trim surrounding whitespace
//  2. drop a single leading apostrophe (spreadsheet numeric-as-text marker)
//  3. if the remainder, after stripping leading zeros, is entirely digits,
//     replace it with the zero-stripped digits (all zeros collapse to "0")
//  4. uppercase
//
// The function is total and idempotent. It must be applied to every base and
// reference key before any comparison; raw and normalized keys never mix.
func NormalizeKey(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "'") {
		s = s[1:]
	}
	if s != "" {
		stripped := strings.TrimLeft(s, "0")
		switch {
		case stripped == "":
			// A string of all zeros never collapses to empty.
			s = "0"
		case isDigits(stripped):
			s = stripped
		}
	}
	return strings.ToUpper(s)
}

// NormalizeKeyValue normalizes the key carried by a cell. Non-string values
// are stringified first; null normalizes to the empty string.
func NormalizeKeyValue(v Value) string {
	return NormalizeKey(v.String())
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// CleanCompareValue canonicalizes a cell for field-level comparison:
// lower-case, trimmed, with literal "00:00:00" time suffixes removed and
// "nan"/"nat" artifacts blanked.
func CleanCompareValue(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "00:00:00")
	s = strings.TrimSpace(s)
	if s == "nan" || s == "nat" {
		return ""
	}
	return s
}
