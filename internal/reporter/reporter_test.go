package reporter

import (
	"os"
	"strings"
	"testing"

	"soa-reconciliation-engine/internal/models"
	"soa-reconciliation-engine/internal/reconciler"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func resultFixture() *reconciler.RunResult {
	detailed := models.NewTable("Invoice", "Amount", "Ref1_Open Amount", "Ref1_Doc No", "Ref1_Match_Count")
	detailed.AddRow(models.Row{
		"Invoice":          models.NewString("INV001"),
		"Amount":           models.NewString("100.00"),
		"Ref1_Open Amount": models.NewString("40.00"),
		"Ref1_Doc No":      models.NewString("INV001"),
		"Ref1_Match_Count": models.NewString("2"),
	})
	detailed.AddRow(models.Row{
		"Invoice":          models.NewString("INV002"),
		"Amount":           models.NewString("250.00"),
		"Ref1_Match_Count": models.NewString("0"),
	})

	discrepancies := models.NewTable("Key", "Status")
	discrepancies.AddRow(models.Row{
		"Key":    models.NewString("INV001"),
		"Status": models.NewString("MATCH"),
	})

	return &reconciler.RunResult{
		Detailed:       detailed,
		Discrepancies:  discrepancies,
		ReferenceNames: []string{"Ref1"},
		AmountColumn:   "Amount",
		MatchColumn:    "Invoice",
	}
}

func TestBuildAnnotations(t *testing.T) {
	ann := BuildAnnotations(resultFixture())

	if len(ann.AmountDifferences) != 2 {
		t.Fatalf("difference entries = %d, want one per detailed row", len(ann.AmountDifferences))
	}
	if got := ann.AmountDifferences[0]; got != "Ref1: +60.00" {
		t.Errorf("difference summary = %q, want %q", got, "Ref1: +60.00")
	}
	if got := ann.AmountDifferences[1]; got != "" {
		t.Errorf("row without reference amount got summary %q", got)
	}

	byReason := make(map[string][]CellAnnotation)
	for _, cell := range ann.Cells {
		byReason[cell.Reason] = append(byReason[cell.Reason], cell)
	}

	// Both sides of the mismatched pair are flagged on row 0.
	mismatches := byReason[ReasonAmountMismatch]
	if len(mismatches) != 2 {
		t.Fatalf("mismatch annotations = %v, want 2", mismatches)
	}
	cols := map[string]bool{}
	for _, cell := range mismatches {
		if cell.Row != 0 {
			t.Errorf("mismatch on row %d, want 0", cell.Row)
		}
		cols[cell.Column] = true
	}
	if !cols["Amount"] || !cols["Ref1_Open Amount"] {
		t.Errorf("mismatch columns = %v", cols)
	}

	// The fan-out count above one is flagged as a duplicate.
	dups := byReason[ReasonDuplicateKey]
	if len(dups) != 1 || dups[0].Row != 0 || dups[0].Column != "Ref1_Match_Count" {
		t.Errorf("duplicate annotations = %v", dups)
	}
}

func TestBuildAnnotationsNoAmountColumn(t *testing.T) {
	result := resultFixture()
	result.AmountColumn = ""

	ann := BuildAnnotations(result)
	for _, cell := range ann.Cells {
		if cell.Reason == ReasonAmountMismatch {
			t.Fatalf("amount annotation without a base amount column: %v", cell)
		}
	}
	if ann.AmountDifferences[0] != "" {
		t.Errorf("difference summary without amount column: %q", ann.AmountDifferences[0])
	}
}

func TestSignedAmount(t *testing.T) {
	if got := signedAmount(dec("60")); got != "+60.00" {
		t.Errorf("positive = %q, want +60.00", got)
	}
	if got := signedAmount(dec("-3.1")); got != "-3.10" {
		t.Errorf("negative = %q, want -3.10", got)
	}
	if got := signedAmount(dec("0")); got != "0.00" {
		t.Errorf("zero = %q, want 0.00", got)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	exporter := NewExporter(&ExportConfig{OutputDir: dir})

	path, err := exporter.Export(resultFixture(), nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if !strings.HasPrefix(path, dir) {
		t.Errorf("artifact path %q not under %q", path, dir)
	}
	base := path[strings.LastIndex(path, string(os.PathSeparator))+1:]
	if !strings.HasPrefix(base, "soa_reco_") || !strings.HasSuffix(base, ".xlsx") {
		t.Errorf("artifact name = %q, want soa_reco_*.xlsx", base)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("artifact is empty")
	}
}

func TestExportUnwritableDir(t *testing.T) {
	exporter := NewExporter(&ExportConfig{OutputDir: string([]byte{0})})
	if _, err := exporter.Export(resultFixture(), nil); err == nil {
		t.Error("expected export error for unwritable directory")
	}
}
