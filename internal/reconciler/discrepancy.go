package reconciler

import (
	"fmt"
	"sort"
	"strings"

	"soa-reconciliation-engine/internal/heuristics"
	"soa-reconciliation-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Status classifies the per-key payment state from the aggregated amounts.
type Status string

const (
	StatusMatch        Status = "MATCH"
	StatusMissingInSOA Status = "MISSING IN SOA"
	StatusMissingInRef Status = "MISSING IN REF"
	StatusUnderpaid    Status = "Underpaid (Short)"
	StatusOverpaid     Status = "Overpaid (Excess)"
)

// AllMatchSentinel marks discrepancy rows with no field or amount mismatch.
const AllMatchSentinel = "All Match"

// Tolerance is the numeric band treated as "no difference".
var Tolerance = decimal.RequireFromString("0.01")

// DiscrepancyRow is one row of the discrepancy report: a distinct normalized
// key present in the base and/or any reference, with its aggregated amounts
// and classification.
type DiscrepancyRow struct {
	Key              string
	SOAAmount        decimal.Decimal
	RefTotal         decimal.Decimal
	RefSources       []string
	RefCount         int
	Delta            decimal.Decimal
	Status           Status
	MismatchedFields []string
	// FieldDiffs renders the mismatching base/reference value pair per
	// base-side column name.
	FieldDiffs map[string]string
}

// ClassifyStatus applies the tolerance-based classifier. The tolerance check
// runs first, then the one-sided cases, then the delta sign.
func ClassifyStatus(soaAmount, refTotal, delta decimal.Decimal) Status {
	switch {
	case delta.Abs().LessThan(Tolerance):
		return StatusMatch
	case soaAmount.IsZero() && refTotal.IsPositive():
		return StatusMissingInSOA
	case soaAmount.IsPositive() && refTotal.IsZero():
		return StatusMissingInRef
	case delta.IsPositive():
		return StatusUnderpaid
	default:
		return StatusOverpaid
	}
}

// refAggregate accumulates reference-side amounts for one normalized key
// across every source.
type refAggregate struct {
	total   decimal.Decimal
	count   int
	sources map[string]bool
}

// refEntry remembers the first reference row seen for a key, used by the
// field comparator.
type refEntry struct {
	spec models.ReferenceSpec
	row  models.Row
}

// buildDiscrepancies aggregates base and reference amounts per normalized
// key as a full outer join, classifies each key, and cross-checks comparable
// fields. Only references that joined successfully participate. The second
// return value is the comparable-field order for the report columns.
func (r *Runner) buildDiscrepancies(input RunInput, specs []models.ReferenceSpec, acc *matchAccumulator) ([]DiscrepancyRow, []string) {
	var keyOrder []string
	seenKey := make(map[string]bool)
	note := func(key string) {
		if !seenKey[key] {
			seenKey[key] = true
			keyOrder = append(keyOrder, key)
		}
	}

	// Base-side sums. Unparseable amounts contribute zero to the sum; the
	// key itself still participates.
	baseSums := make(map[string]decimal.Decimal)
	firstBaseRow := make(map[string]models.Row)
	for _, row := range input.Base.Rows {
		key := models.NormalizeKeyValue(row.Get(input.MatchColumn))
		note(key)
		sum := baseSums[key]
		if input.AmountColumn != "" {
			if amt, ok := row.Get(input.AmountColumn).Number(); ok {
				sum = sum.Add(amt)
			}
		}
		baseSums[key] = sum
		if _, ok := firstBaseRow[key]; !ok {
			firstBaseRow[key] = row
		}
	}

	// Reference-side sums across all sources at once. Fuzzy-matched keys
	// aggregate under the base key they resolved to.
	refAggs := make(map[string]*refAggregate)
	firstRefEntry := make(map[string]refEntry)
	for _, spec := range specs {
		amountCol := heuristics.DetectAmountColumn(spec.Table.Columns)
		if amountCol == "" {
			r.logf("No amount column detected in %s; it contributes no amounts", spec.Name)
			continue
		}
		fuzzy := spec.MatchType == models.MatchFuzzy
		for _, row := range spec.Table.Rows {
			raw := row.Get(spec.MatchColumn)
			key := models.NormalizeKeyValue(raw)
			if fuzzy {
				if baseKey, ok := acc.fuzzyReverse[raw.String()]; ok {
					key = baseKey
				}
			}
			note(key)
			agg := refAggs[key]
			if agg == nil {
				agg = &refAggregate{total: decimal.Zero, sources: make(map[string]bool)}
				refAggs[key] = agg
			}
			agg.sources[spec.Name] = true
			if amt, ok := row.Get(amountCol).Number(); ok {
				agg.total = agg.total.Add(amt)
				agg.count++
			}
			if _, ok := firstRefEntry[key]; !ok {
				firstRefEntry[key] = refEntry{spec: spec, row: row}
			}
		}
	}

	comparator := newFieldComparator(input, specs)

	rows := make([]DiscrepancyRow, 0, len(keyOrder))
	for _, key := range keyOrder {
		soa := baseSums[key] // zero when the key is reference-only
		refTotal := decimal.Zero
		var sources []string
		count := 0
		if agg := refAggs[key]; agg != nil {
			refTotal = agg.total
			count = agg.count
			for name := range agg.sources {
				sources = append(sources, name)
			}
			sort.Strings(sources)
		}

		delta := soa.Sub(refTotal)
		row := DiscrepancyRow{
			Key:        key,
			SOAAmount:  soa,
			RefTotal:   refTotal,
			RefSources: sources,
			RefCount:   count,
			Delta:      delta,
			Status:     ClassifyStatus(soa, refTotal, delta),
		}

		comparator.compare(&row, firstBaseRow[key], firstRefEntry[key])
		if delta.Abs().GreaterThanOrEqual(Tolerance) {
			row.MismatchedFields = append(row.MismatchedFields, "Amount")
		}

		rows = append(rows, row)
	}

	sortDiscrepancies(rows)
	return rows, comparator.fieldOrder
}

// sortDiscrepancies orders the report for review: every row with a mismatch
// first, then by status, then by delta ascending.
func sortDiscrepancies(rows []DiscrepancyRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		iMatch := len(rows[i].MismatchedFields) == 0
		jMatch := len(rows[j].MismatchedFields) == 0
		if iMatch != jMatch {
			return !iMatch
		}
		if rows[i].Status != rows[j].Status {
			return rows[i].Status < rows[j].Status
		}
		return rows[i].Delta.LessThan(rows[j].Delta)
	})
}

// fieldComparator cross-checks same-named non-key, non-amount columns
// between the base and each reference. When a key has several reference
// entries the comparator uses the first one encountered; this is a
// simplification, not a guarantee of the best entry.
type fieldComparator struct {
	input RunInput
	// fields maps reference name -> base column -> reference column.
	fields map[string]map[string]string
	// fieldOrder preserves base column order for output columns.
	fieldOrder []string
}

func newFieldComparator(input RunInput, specs []models.ReferenceSpec) *fieldComparator {
	fc := &fieldComparator{
		input:  input,
		fields: make(map[string]map[string]string, len(specs)),
	}
	seenField := make(map[string]bool)

	for _, spec := range specs {
		refAmountCol := heuristics.DetectAmountColumn(spec.Table.Columns)
		exclusions := []string{
			input.MatchColumn,
			input.AmountColumn,
			spec.MatchColumn,
			refAmountCol,
		}
		comparable := heuristics.DetectComparableFields(input.Base.Columns, spec.Table.Columns, exclusions)
		if len(comparable) == 0 {
			continue
		}

		byBase := make(map[string]string, len(comparable))
		for _, baseCol := range comparable {
			refCol := findColumnFold(spec.Table.Columns, baseCol)
			if refCol == "" {
				continue
			}
			byBase[baseCol] = refCol
			if !seenField[baseCol] {
				seenField[baseCol] = true
				fc.fieldOrder = append(fc.fieldOrder, baseCol)
			}
		}
		fc.fields[spec.Name] = byBase
	}
	return fc
}

// compare records field-level mismatches on the discrepancy row. Both sides
// must be non-empty after cleaning for a difference to count.
func (fc *fieldComparator) compare(row *DiscrepancyRow, baseRow models.Row, entry refEntry) {
	if baseRow == nil || entry.row == nil {
		return
	}
	byBase := fc.fields[entry.spec.Name]
	if len(byBase) == 0 {
		return
	}

	for _, field := range fc.fieldOrder {
		refCol, ok := byBase[field]
		if !ok {
			continue
		}
		baseVal := models.CleanCompareValue(baseRow.Get(field).String())
		refVal := models.CleanCompareValue(entry.row.Get(refCol).String())
		if baseVal == "" || refVal == "" || baseVal == refVal {
			continue
		}
		row.MismatchedFields = append(row.MismatchedFields, field)
		if row.FieldDiffs == nil {
			row.FieldDiffs = make(map[string]string)
		}
		row.FieldDiffs[field] = fmt.Sprintf("%s -> %s",
			strings.TrimSpace(baseRow.Get(field).String()),
			strings.TrimSpace(entry.row.Get(refCol).String()))
	}
}

// findColumnFold returns the column whose lower-cased trimmed name equals
// the given name's, or empty.
func findColumnFold(columns []string, name string) string {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, c := range columns {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return c
		}
	}
	return ""
}

// buildDiscrepancyTable renders the discrepancy rows as a table. Per-field
// mismatch columns appear only for fields that mismatched somewhere, in base
// column order, between Status and the summary column.
func buildDiscrepancyTable(rows []DiscrepancyRow, fieldOrder []string) *models.Table {
	mismatched := make(map[string]bool)
	for _, row := range rows {
		for field := range row.FieldDiffs {
			mismatched[field] = true
		}
	}
	var fieldCols []string
	for _, field := range fieldOrder {
		if mismatched[field] {
			fieldCols = append(fieldCols, field)
		}
	}

	columns := []string{ColKey, ColSOAAmount, ColRefTotal, ColRefSources, ColRefCount, ColDelta, ColStatus}
	for _, field := range fieldCols {
		columns = append(columns, field+" Mismatch")
	}
	columns = append(columns, ColMismatchedFields)

	table := models.NewTable(columns...)
	for _, row := range rows {
		out := models.Row{
			ColKey:        models.NewString(row.Key),
			ColSOAAmount:  models.NewNumber(row.SOAAmount),
			ColRefTotal:   models.NewNumber(row.RefTotal),
			ColRefSources: models.NewString(strings.Join(row.RefSources, ", ")),
			ColRefCount:   models.NewNumber(decimal.NewFromInt(int64(row.RefCount))),
			ColDelta:      models.NewNumber(row.Delta),
			ColStatus:     models.NewString(string(row.Status)),
		}
		for _, field := range fieldCols {
			if diff, ok := row.FieldDiffs[field]; ok {
				out[field+" Mismatch"] = models.NewString(diff)
			} else {
				out[field+" Mismatch"] = models.NewString("")
			}
		}
		if len(row.MismatchedFields) == 0 {
			out[ColMismatchedFields] = models.NewString(AllMatchSentinel)
		} else {
			out[ColMismatchedFields] = models.NewString(strings.Join(row.MismatchedFields, ", "))
		}
		table.AddRow(out)
	}
	return table
}
