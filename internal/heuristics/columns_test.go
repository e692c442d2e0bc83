package heuristics

import (
	"reflect"
	"testing"
)

func TestDetectAmountColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{
			"exact name wins",
			[]string{"Customer", "Invoice Total", "Due Date"},
			"Invoice Total",
		},
		{
			"exact name case insensitive",
			[]string{"customer", "OPEN AMOUNT"},
			"OPEN AMOUNT",
		},
		{
			"priority order within exact tier",
			[]string{"Total", "Open Amount"},
			"Open Amount",
		},
		{
			"suffix tier when no exact match",
			[]string{"Customer", "Doc Amount"},
			"Doc Amount",
		},
		{
			"suffix priority order",
			[]string{"Running Balance", "Grand Total"},
			"Grand Total",
		},
		{
			"contains tier fallback",
			[]string{"Customer", "Unit Price List"},
			"Unit Price List",
		},
		{
			"exact beats suffix",
			[]string{"Doc Amount", "Amount"},
			"Amount",
		},
		{
			"nothing matches",
			[]string{"Customer", "Region", "Notes"},
			"",
		},
		{
			"empty input",
			nil,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectAmountColumn(tt.columns); got != tt.want {
				t.Errorf("DetectAmountColumn(%v) = %q, want %q", tt.columns, got, tt.want)
			}
		})
	}
}

func TestDetectDateColumn(t *testing.T) {
	tests := []struct {
		columns []string
		want    string
	}{
		{[]string{"Customer", "Invoice Date", "Amount"}, "Invoice Date"},
		{[]string{"Doc Dt", "Amount"}, "Doc Dt"},
		{[]string{"Customer", "Amount"}, ""},
	}
	for _, tt := range tests {
		if got := DetectDateColumn(tt.columns); got != tt.want {
			t.Errorf("DetectDateColumn(%v) = %q, want %q", tt.columns, got, tt.want)
		}
	}
}

func TestIsDateColumn(t *testing.T) {
	if !IsDateColumn("Posting Date") || !IsDateColumn("doc_dt") {
		t.Error("expected date-like names to be detected")
	}
	if IsDateColumn("Amount") {
		t.Error("Amount should not look date-like")
	}
}

func TestContainsAmountKeyword(t *testing.T) {
	if !ContainsAmountKeyword("Ref1_Open Amount") || !ContainsAmountKeyword("amt") {
		t.Error("expected amount keywords to be detected")
	}
	if ContainsAmountKeyword("Invoice Date") {
		t.Error("Invoice Date should not look amount-like")
	}
}

func TestDetectComparableFields(t *testing.T) {
	base := []string{"Invoice", "Customer", "Amount", "Currency", "Region"}
	ref := []string{"invoice", "CUSTOMER", "Amt", "currency"}

	got := DetectComparableFields(base, ref, []string{"Invoice", "Amount", "Amt"})
	want := []string{"Customer", "Currency"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectComparableFields = %v, want %v", got, want)
	}

	// Exclusions are case-insensitive.
	got = DetectComparableFields(base, ref, []string{"customer"})
	want = []string{"Invoice", "Currency"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectComparableFields with folded exclusion = %v, want %v", got, want)
	}

	if got := DetectComparableFields(base, nil, nil); got != nil {
		t.Errorf("no reference columns should yield nil, got %v", got)
	}
}
