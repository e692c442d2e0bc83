// Package heuristics detects amount, date and cross-checkable columns in
// inconsistently named tabular data.
//
// Detection is a priority-table lookup over lower-cased, trimmed column
// names: an ordered list of predicates where the first tier that yields any
// match wins, and within a tier the first keyword in priority order that
// matches any column wins. The functions are pure so they can be tested
// against column-name fixtures directly.
package heuristics

import "strings"

// amountExactNames is the first detection tier: column names that are, after
// lower-casing and trimming, exactly one of these. Earlier entries win.
var amountExactNames = []string{
	"invoice total",
	"open amount",
	"total amount",
	"net amount",
	"gross amount",
	"invoice amount",
	"outstanding amount",
	"amount",
	"total",
	"balance",
	"amount due",
	"amt",
}

// amountSuffixes is the second tier: column names ending with one of these.
var amountSuffixes = []string{
	"total",
	"amount",
	"amt",
	"balance",
}

// amountKeywords is the third, broadest tier: column names containing one of
// these anywhere.
var amountKeywords = []string{
	"total",
	"amount",
	"amt",
	"price",
	"cost",
	"value",
	"sum",
}

// dateKeywords flag date-like columns by substring.
var dateKeywords = []string{
	"date",
	"dt",
	"dated",
}

func canon(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DetectAmountColumn returns the most plausible amount column, or empty when
// no tier matches. The three tiers run in order: exact name, suffix,
// substring. Within a tier, the first keyword that matches any column wins,
// and among columns matching that keyword the first in table order wins.
func DetectAmountColumn(columns []string) string {
	canonical := make([]string, len(columns))
	for i, c := range columns {
		canonical[i] = canon(c)
	}

	for _, want := range amountExactNames {
		for i, c := range canonical {
			if c == want {
				return columns[i]
			}
		}
	}
	for _, suffix := range amountSuffixes {
		for i, c := range canonical {
			if strings.HasSuffix(c, suffix) {
				return columns[i]
			}
		}
	}
	for _, kw := range amountKeywords {
		for i, c := range canonical {
			if strings.Contains(c, kw) {
				return columns[i]
			}
		}
	}
	return ""
}

// ContainsAmountKeyword reports whether a column name contains any amount
// keyword. Used to find reference-side amount columns in the detailed
// output for mismatch annotation.
func ContainsAmountKeyword(name string) bool {
	c := canon(name)
	for _, kw := range amountKeywords {
		if strings.Contains(c, kw) {
			return true
		}
	}
	return false
}

// DetectDateColumn returns the first column whose name contains a date
// keyword, or empty when none does.
func DetectDateColumn(columns []string) string {
	for _, kw := range dateKeywords {
		for _, c := range columns {
			if strings.Contains(canon(c), kw) {
				return c
			}
		}
	}
	return ""
}

// IsDateColumn reports whether a single column name looks date-like.
func IsDateColumn(name string) bool {
	c := canon(name)
	for _, kw := range dateKeywords {
		if strings.Contains(c, kw) {
			return true
		}
	}
	return false
}

// DetectComparableFields returns the base columns whose lower-cased trimmed
// names also appear among the reference columns, excluding anything named in
// exclusions (match column, detected amount column, designated base amount
// column). These fields are cross-checked per key by the field comparator.
// Order follows the base column order.
func DetectComparableFields(baseColumns, refColumns []string, exclusions []string) []string {
	excluded := make(map[string]bool, len(exclusions))
	for _, e := range exclusions {
		if e != "" {
			excluded[canon(e)] = true
		}
	}

	refNames := make(map[string]bool, len(refColumns))
	for _, c := range refColumns {
		refNames[canon(c)] = true
	}

	var out []string
	for _, c := range baseColumns {
		name := canon(c)
		if name == "" || excluded[name] || !refNames[name] {
			continue
		}
		out = append(out, c)
	}
	return out
}
