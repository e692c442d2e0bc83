package models

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "INV001", "INV001"},
		{"lowercase uppercased", "inv001", "INV001"},
		{"whitespace trimmed", "  inv001  ", "INV001"},
		{"leading apostrophe dropped", "'12345", "12345"},
		{"leading zeros stripped from digits", "000123", "123"},
		{"apostrophe then zeros", "'000123", "123"},
		{"all zeros collapse to single zero", "0000", "0"},
		{"single zero", "0", "0"},
		{"zeros before letters untouched", "00A12", "00A12"},
		{"mixed alphanumeric untouched", "A0012", "A0012"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"digits with inner zeros", "10010", "10010"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.in); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	inputs := []string{
		"INV001", "inv001", "  x  ", "'007", "0000", "00A12", "", "123",
		"ABC-001", "abc def", "'INV 9", "0",
	}
	for _, in := range inputs {
		once := NormalizeKey(in)
		twice := NormalizeKey(once)
		if once != twice {
			t.Errorf("NormalizeKey not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeKeyValue(t *testing.T) {
	if got := NormalizeKeyValue(Null()); got != "" {
		t.Errorf("NormalizeKeyValue(null) = %q, want empty", got)
	}
	if got := NormalizeKeyValue(NewString("'0042")); got != "42" {
		t.Errorf("NormalizeKeyValue('0042) = %q, want 42", got)
	}
}

func TestCleanCompareValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "hello"},
		{"  Spaced  ", "spaced"},
		{"2024-01-02 00:00:00", "2024-01-02"},
		{"nan", ""},
		{"NaT", ""},
		{"NAN", ""},
		{"actual value", "actual value"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanCompareValue(tt.in); got != tt.want {
			t.Errorf("CleanCompareValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
