package reconciler

import (
	"testing"
	"time"

	"soa-reconciliation-engine/internal/models"
)

func TestAgeBucket(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "0-15"},
		{15, "0-15"},
		{16, "16-30"},
		{30, "16-30"},
		{31, "31-60"},
		{60, "31-60"},
		{61, "61-90"},
		{90, "61-90"},
		{91, "91-120"},
		{120, "91-120"},
		{121, "121+"},
		{400, "121+"},
		{-3, "0-15"},
	}
	for _, tt := range tests {
		if got := AgeBucket(tt.days); got != tt.want {
			t.Errorf("AgeBucket(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestAgeDays(t *testing.T) {
	run := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	if got := AgeDays(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), run); got != 14 {
		t.Errorf("AgeDays = %d, want 14", got)
	}
	if got := AgeDays(run, run); got != 0 {
		t.Errorf("AgeDays same day = %d, want 0", got)
	}
	// Partial days truncate.
	if got := AgeDays(time.Date(2024, 6, 13, 18, 0, 0, 0, time.UTC), run); got != 1 {
		t.Errorf("AgeDays partial = %d, want 1", got)
	}
}

func TestCalculateAgeBuckets(t *testing.T) {
	tbl := models.NewTable("Invoice", "Doc Date")
	tbl.AddRow(models.Row{"Invoice": models.NewString("A"), "Doc Date": models.NewString("2024-06-01")})
	tbl.AddRow(models.Row{"Invoice": models.NewString("B"), "Doc Date": models.NewString("2024-01-01")})
	tbl.AddRow(models.Row{"Invoice": models.NewString("C"), "Doc Date": models.NewString("garbage")})

	run := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	r := NewRunner()
	r.calculateAgeBuckets(tbl, "Doc Date", run)

	if tbl.Columns[0] != ColAgeBucket {
		t.Fatalf("bucket column not first: %v", tbl.Columns)
	}
	if !tbl.HasColumn(ColAgeDays) {
		t.Fatal("age days column missing")
	}

	if got := tbl.Rows[0].Get(ColAgeBucket).String(); got != "0-15" {
		t.Errorf("row 0 bucket = %q, want 0-15", got)
	}
	if got := tbl.Rows[1].Get(ColAgeBucket).String(); got != "121+" {
		t.Errorf("row 1 bucket = %q, want 121+", got)
	}
	if got := tbl.Rows[2].Get(ColAgeBucket).String(); got != UnknownBucket {
		t.Errorf("row 2 bucket = %q, want %q", got, UnknownBucket)
	}
	if !tbl.Rows[2].Get(ColAgeDays).IsNull() {
		t.Error("unparseable date should have null age")
	}

	// The source date column keeps its original display text.
	if got := tbl.Rows[0].Get("Doc Date").String(); got != "2024-06-01" {
		t.Errorf("date column mutated: %q", got)
	}
}
