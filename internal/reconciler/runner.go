// Package reconciler implements the reconciliation engine: per-reference
// joining with duplicate fan-out, age bucketing, cross-source amount
// aggregation and discrepancy classification.
//
// A run is a single synchronous batch. References are processed strictly in
// input order because column naming (Ref1, Ref2, ...) and the match-source
// and duplicate-count bookkeeping depend on that order; the bookkeeping is
// threaded through the fold as an explicit accumulator. Input tables are
// never mutated; all work happens on a working copy of the base table.
package reconciler

import (
	"fmt"
	"strings"
	"time"

	"soa-reconciliation-engine/internal/heuristics"
	"soa-reconciliation-engine/internal/matcher"
	"soa-reconciliation-engine/internal/models"
	"soa-reconciliation-engine/pkg/errors"
	"soa-reconciliation-engine/pkg/logger"
)

// Engine-wide column names in the detailed output.
const (
	ColAgeBucket        = "Age Bucket"
	ColAgeDays          = "Age (Days)"
	ColMatchSource      = "Match Source"
	ColDuplicateSummary = "Duplicate Summary"
)

// Discrepancy report column names.
const (
	ColKey              = "Key"
	ColSOAAmount        = "SOA Amount"
	ColRefTotal         = "Ref Total"
	ColRefSources       = "Ref Sources"
	ColRefCount         = "Ref Count"
	ColDelta            = "Delta"
	ColStatus           = "Status"
	ColMismatchedFields = "Mismatched Fields"
)

// RunInput carries everything a reconciliation run needs.
type RunInput struct {
	// Base is the ledger being reconciled. Never mutated.
	Base *models.Table
	// MatchColumn is the base join-key column. Required.
	MatchColumn string
	// DateColumn drives age bucketing when set. If set it must exist.
	DateColumn string
	// AmountColumn is the base amount column. If empty it is auto-detected;
	// if set it must exist.
	AmountColumn string
	// References are processed in order.
	References []models.ReferenceSpec
	// RunDate anchors age calculations. Zero means time.Now().
	RunDate time.Time
}

// RunResult is the output of a reconciliation run.
type RunResult struct {
	// Detailed is the base table extended with reference extractions and
	// bookkeeping columns. Row count can exceed the base row count when
	// references contain duplicate keys (join fan-out).
	Detailed *models.Table
	// Discrepancies is the per-key report table, ordered for review.
	Discrepancies *models.Table
	// Rows are the typed discrepancy rows backing the report.
	Rows []DiscrepancyRow
	// ReferenceNames lists the assigned reference names in processing
	// order, including skipped references.
	ReferenceNames []string
	// AmountColumn is the resolved base amount column (configured or
	// detected), empty when neither applies.
	AmountColumn string
	// MatchColumn echoes the base join-key column.
	MatchColumn string
	// Log accumulates non-fatal error and warning messages in order.
	Log []string
}

// Runner orchestrates a reconciliation run.
type Runner struct {
	log     logger.Logger
	matcher *matcher.Matcher

	runLog []string
}

// NewRunner creates a runner with the default fuzzy matcher.
func NewRunner() *Runner {
	return &Runner{
		log:     logger.WithComponent("reconciler"),
		matcher: matcher.NewMatcher(),
	}
}

// logf records a non-fatal message on the run log and the logger.
func (r *Runner) logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.runLog = append(r.runLog, msg)
	r.log.Warn(msg)
}

// Run executes the full reconciliation. It returns an error only for
// configuration problems (missing base, match, date or amount columns,
// duplicate reference names); per-reference and per-value failures are
// logged on the result and the run continues.
func (r *Runner) Run(input RunInput) (*RunResult, error) {
	r.runLog = nil

	resolved, err := r.resolveInput(&input)
	if err != nil {
		return nil, err
	}

	runDate := input.RunDate
	if runDate.IsZero() {
		runDate = time.Now()
	}

	r.log.WithFields(logger.Fields{
		"base_rows":  input.Base.Len(),
		"references": len(input.References),
	}).Info("starting reconciliation run")

	result := input.Base.Clone()

	if input.DateColumn != "" {
		r.calculateAgeBuckets(result, input.DateColumn, runDate)
	}

	specs, names := r.assignReferenceNames(input.References)

	acc := newMatchAccumulator()
	var processed []models.ReferenceSpec
	for i, spec := range specs {
		r.log.WithFields(logger.Fields{
			"reference":    spec.Name,
			"match_column": spec.MatchColumn,
			"match_type":   spec.MatchType,
		}).Info("matching reference")

		// An empty separator column between reference blocks, never before
		// the first block.
		sepName := ""
		if len(processed) > 0 {
			sepName = fmt.Sprintf("Separator%d", i+1)
			result.AddColumn(sepName)
		}

		joined, err := r.joinReference(result, input.MatchColumn, spec, acc)
		if err != nil {
			if sepName != "" {
				result.RemoveColumn(sepName)
			}
			r.logf("Error matching %s: %v", spec.Name, err)
			continue
		}
		result = joined
		acc.order = append(acc.order, spec.Name)
		processed = append(processed, spec)
	}

	r.appendMatchSources(result, input.MatchColumn, acc)
	r.appendDuplicateSummaries(result, input.MatchColumn, acc)
	cleanDateDisplay(result)

	rows, fieldOrder := r.buildDiscrepancies(input, processed, acc)

	r.log.WithFields(logger.Fields{
		"detailed_rows":    result.Len(),
		"discrepancy_rows": len(rows),
		"errors":           len(r.runLog),
	}).Info("reconciliation run complete")

	return &RunResult{
		Detailed:       result,
		Discrepancies:  buildDiscrepancyTable(rows, fieldOrder),
		Rows:           rows,
		ReferenceNames: names,
		AmountColumn:   resolved,
		MatchColumn:    input.MatchColumn,
		Log:            r.runLog,
	}, nil
}

// resolveInput validates the configuration and resolves the base amount
// column. Failures here are fatal: no partial output is produced.
func (r *Runner) resolveInput(input *RunInput) (string, error) {
	if input.Base == nil {
		return "", errors.ConfigurationError(errors.CodeMissingConfig, "base table is required")
	}
	if strings.TrimSpace(input.MatchColumn) == "" {
		return "", errors.ConfigurationError(errors.CodeMissingConfig, "match column is required")
	}
	if !input.Base.HasColumn(input.MatchColumn) {
		return "", errors.ConfigurationError(errors.CodeMissingColumn,
			fmt.Sprintf("match column %q not found in base table", input.MatchColumn))
	}
	if input.DateColumn != "" && !input.Base.HasColumn(input.DateColumn) {
		return "", errors.ConfigurationError(errors.CodeMissingColumn,
			fmt.Sprintf("date column %q not found in base table", input.DateColumn))
	}
	if input.AmountColumn != "" && !input.Base.HasColumn(input.AmountColumn) {
		return "", errors.ConfigurationError(errors.CodeMissingColumn,
			fmt.Sprintf("amount column %q not found in base table", input.AmountColumn))
	}

	seen := make(map[string]bool)
	for _, ref := range input.References {
		if ref.Name == "" {
			continue
		}
		if seen[ref.Name] {
			return "", errors.ConfigurationError(errors.CodeInvalidConfig,
				fmt.Sprintf("duplicate reference name %q", ref.Name))
		}
		seen[ref.Name] = true
	}

	resolved := input.AmountColumn
	if resolved == "" {
		resolved = heuristics.DetectAmountColumn(input.Base.Columns)
		if resolved != "" {
			r.log.WithField("column", resolved).Info("detected base amount column")
		} else {
			r.logf("No base amount column configured or detected; base sums are zero")
		}
		input.AmountColumn = resolved
	}
	return resolved, nil
}

// assignReferenceNames fills empty reference names with Ref1, Ref2, ... in
// processing order and normalizes empty match types to exact.
func (r *Runner) assignReferenceNames(refs []models.ReferenceSpec) ([]models.ReferenceSpec, []string) {
	specs := make([]models.ReferenceSpec, len(refs))
	names := make([]string, len(refs))
	for i, ref := range refs {
		spec := ref
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("Ref%d", i+1)
		}
		if spec.MatchType == "" {
			spec.MatchType = models.MatchExact
		}
		specs[i] = spec
		names[i] = spec.Name
	}
	return specs, names
}

// appendMatchSources adds the engine-wide Match Source column: the ordered,
// comma-joined reference names that matched each row's key.
func (r *Runner) appendMatchSources(result *models.Table, matchColumn string, acc *matchAccumulator) {
	result.AddColumn(ColMatchSource)
	for _, row := range result.Rows {
		key := models.NormalizeKeyValue(row.Get(matchColumn))
		row[ColMatchSource] = models.NewString(strings.Join(acc.sources[key], ", "))
	}
}

// appendDuplicateSummaries adds the Duplicate Summary column: per-reference
// occurrence counts for keys a reference matched more than once.
func (r *Runner) appendDuplicateSummaries(result *models.Table, matchColumn string, acc *matchAccumulator) {
	result.AddColumn(ColDuplicateSummary)
	for _, row := range result.Rows {
		key := models.NormalizeKeyValue(row.Get(matchColumn))
		var parts []string
		for _, refName := range acc.order {
			if count := acc.dupCounts[refName][key]; count > 1 {
				parts = append(parts, fmt.Sprintf("%s: %d", refName, count))
			}
		}
		row[ColDuplicateSummary] = models.NewString(strings.Join(parts, ", "))
	}
}

// cleanDateDisplay strips trailing " 00:00:00" time suffixes and nan/NaT
// artifacts from date-like columns, string-wise, leaving everything else
// untouched.
func cleanDateDisplay(result *models.Table) {
	for _, col := range result.Columns {
		if !heuristics.IsDateColumn(col) {
			continue
		}
		for _, row := range result.Rows {
			v, ok := row[col]
			if !ok || v.IsNull() {
				continue
			}
			s := v.String()
			cleaned := strings.TrimRight(strings.TrimSuffix(strings.TrimRight(s, " "), "00:00:00"), " ")
			if cleaned == "nan" || cleaned == "NaT" {
				cleaned = ""
			}
			if cleaned != s {
				row[col] = models.NewString(cleaned)
			}
		}
	}
}
