// Package reporter derives presentation side-channels from reconciliation
// results and writes the Excel artifact.
//
// Cell-level annotations (amount mismatches, duplicate-count highlights) and
// the per-row amount-difference summary are computed from the detailed
// table; they are exposed as data rather than baked into the engine's output
// model, so any downstream consumer can render them.
package reporter

import (
	"fmt"
	"strings"

	"soa-reconciliation-engine/internal/heuristics"
	"soa-reconciliation-engine/internal/reconciler"

	"github.com/shopspring/decimal"
)

// Annotation reasons.
const (
	ReasonAmountMismatch = "amount_mismatch"
	ReasonDuplicateKey   = "duplicate_key"
)

// CellAnnotation flags one detailed-table cell for downstream highlighting.
type CellAnnotation struct {
	// Row is the zero-based detailed-table row index.
	Row int
	// Column is the detailed-table column name.
	Column string
	// Reason is one of the Reason* constants.
	Reason string
}

// Annotations is the presentation side-channel derived from a run result.
type Annotations struct {
	Cells []CellAnnotation
	// AmountDifferences holds one rendered per-reference difference summary
	// per detailed row, e.g. "Ref1: +12.00, Ref2: -3.10"; empty when the
	// row has no amount mismatch.
	AmountDifferences []string
}

// BuildAnnotations computes cell annotations and amount-difference summaries
// from the detailed table. A reference amount cell is flagged when both it
// and the base amount parse and their difference exceeds the tolerance; the
// base amount cell is flagged alongside. Match-count cells above one are
// flagged as duplicates.
func BuildAnnotations(result *reconciler.RunResult) *Annotations {
	ann := &Annotations{
		AmountDifferences: make([]string, result.Detailed.Len()),
	}

	refAmountCols := referenceAmountColumns(result)
	matchCountCols := matchCountColumns(result)

	for i, row := range result.Detailed.Rows {
		var diffs []string

		if result.AmountColumn != "" {
			baseAmt, baseOK := row.Get(result.AmountColumn).Number()
			if baseOK {
				for _, entry := range refAmountCols {
					refAmt, ok := row.Get(entry.column).Number()
					if !ok {
						continue
					}
					diff := baseAmt.Sub(refAmt)
					if diff.Abs().LessThanOrEqual(reconciler.Tolerance) {
						continue
					}
					ann.Cells = append(ann.Cells,
						CellAnnotation{Row: i, Column: entry.column, Reason: ReasonAmountMismatch},
						CellAnnotation{Row: i, Column: result.AmountColumn, Reason: ReasonAmountMismatch},
					)
					diffs = append(diffs, fmt.Sprintf("%s: %s", entry.refName, signedAmount(diff)))
				}
			}
		}

		for _, col := range matchCountCols {
			if count, ok := row.Get(col).Number(); ok && count.GreaterThan(decimal.NewFromInt(1)) {
				ann.Cells = append(ann.Cells, CellAnnotation{Row: i, Column: col, Reason: ReasonDuplicateKey})
			}
		}

		ann.AmountDifferences[i] = strings.Join(diffs, ", ")
	}

	return ann
}

type refAmountColumn struct {
	refName string
	column  string
}

// referenceAmountColumns finds detailed-table columns that belong to a
// reference block and look like amounts.
func referenceAmountColumns(result *reconciler.RunResult) []refAmountColumn {
	var out []refAmountColumn
	for _, col := range result.Detailed.Columns {
		for _, refName := range result.ReferenceNames {
			prefix := refName + "_"
			if !strings.HasPrefix(col, prefix) || strings.HasSuffix(col, "_Match_Count") {
				continue
			}
			if heuristics.ContainsAmountKeyword(strings.TrimPrefix(col, prefix)) {
				out = append(out, refAmountColumn{refName: refName, column: col})
			}
			break
		}
	}
	return out
}

func matchCountColumns(result *reconciler.RunResult) []string {
	var out []string
	for _, col := range result.Detailed.Columns {
		if strings.HasSuffix(col, "_Match_Count") {
			out = append(out, col)
		}
	}
	return out
}

// signedAmount renders a difference with an explicit sign for positive
// values, two decimal places.
func signedAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.IsPositive() {
		return "+" + s
	}
	return s
}
