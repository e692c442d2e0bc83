package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the interpretation of a cell value.
type Kind int

const (
	// KindNull marks an absent or empty cell.
	KindNull Kind = iota
	// KindString marks a textual cell.
	KindString
	// KindNumber marks a numeric cell.
	KindNumber
	// KindTime marks a date or timestamp cell.
	KindTime
)

// Value is a tagged cell value. The display string is preserved for all
// kinds so output keeps the input's formatting.
type Value struct {
	kind    Kind
	display string
	num     decimal.Decimal
	t       time.Time
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// NewString creates a string value.
func NewString(s string) Value {
	return Value{kind: KindString, display: s}
}

// NewNumber creates a numeric value whose display string is the decimal's
// canonical rendering.
func NewNumber(d decimal.Decimal) Value {
	return Value{kind: KindNumber, display: d.String(), num: d}
}

// NewTime creates a date value with an explicit display string.
func NewTime(t time.Time, display string) Value {
	return Value{kind: KindTime, display: display, t: t}
}

// FromInterface converts an arbitrary scalar into a Value. Unknown types are
// stringified; nil becomes null.
func FromInterface(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return NewString(x)
	case decimal.Decimal:
		return NewNumber(x)
	case int:
		return NewNumber(decimal.NewFromInt(int64(x)))
	case int64:
		return NewNumber(decimal.NewFromInt(x))
	case float64:
		return NewNumber(decimal.NewFromFloat(x))
	case time.Time:
		return NewTime(x, x.Format("2006-01-02"))
	default:
		return NewString(fmt.Sprintf("%v", x))
	}
}

// Kind returns the value's tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null. A string value that is entirely
// whitespace is not null; callers that want that semantics trim first.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String returns the display string. Null renders as the empty string.
func (v Value) String() string {
	if v.kind == KindNull {
		return ""
	}
	return v.display
}

// Number returns the numeric interpretation and whether the value carries
// one. String values are parsed leniently via ParseAmount.
func (v Value) Number() (decimal.Decimal, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return ParseAmount(v.display)
	default:
		return decimal.Zero, false
	}
}

// Time returns the time interpretation and whether the value carries one.
// String values are parsed tolerantly via ParseDate.
func (v Value) Time() (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.t, true
	case KindString:
		return ParseDate(v.display)
	default:
		return time.Time{}, false
	}
}

// currencyRunes are stripped from amount strings before numeric parsing.
const currencyRunes = "$€£¥₹"

// ParseAmount converts a display string to a decimal amount. It strips
// thousands separators, currency symbols and surrounding whitespace, and
// treats accounting-style parentheses as negation. Any other non-numeric
// residue yields ok == false; callers treat that as null, never as zero at
// the row level.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, ",", "")
	for _, r := range currencyRunes {
		s = strings.ReplaceAll(s, string(r), "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// dateLayouts are tried in order. Day-first layouts come before their
// US-style counterparts so ambiguous values resolve toward day-first.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"01/02/2006",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2-Jan-06",
}

// ParseDate parses mixed-format date strings tolerantly. Values that fail
// every layout yield ok == false; they are never an error.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
