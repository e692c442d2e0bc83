package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorRendering(t *testing.T) {
	err := New(CategoryParse, CodeMissingColumn, "column missing")
	if err.Error() != "column missing" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = err.WithSuggestion("check the header row")
	if !strings.Contains(err.Error(), "check the header row") {
		t.Errorf("suggestion not rendered: %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, CategoryExport, CodeWriteFailed, "write failed")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if Wrap(nil, CategoryExport, CodeWriteFailed, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(ConfigurationError(CodeMissingConfig, "x")) {
		t.Error("configuration errors are fatal")
	}
	if IsFatal(ReferenceError("Ref1", stderrors.New("bad"))) {
		t.Error("reference errors are not fatal")
	}
	// Unknown errors default to fatal.
	if !IsFatal(stderrors.New("unknown")) {
		t.Error("unclassified errors should be treated as fatal")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryReconciliation, 5},
		{CategoryExport, 6},
		{ErrorCategory("other"), 1},
	}
	for _, tt := range tests {
		err := &ReconcilerError{Category: tt.category}
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("GetExitCode(%s) = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(FileError("x.csv", stderrors.New("nope"))); got != CategoryFile {
		t.Errorf("GetCategory = %q, want file", got)
	}
	if got := GetCategory(stderrors.New("plain")); got != "" {
		t.Errorf("GetCategory(plain) = %q, want empty", got)
	}
}

func TestWithContext(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "x").
		WithContext("path", "soa.csv").
		WithContext("attempt", 2)
	if err.Context["path"] != "soa.csv" || err.Context["attempt"] != 2 {
		t.Errorf("context = %v", err.Context)
	}
}
