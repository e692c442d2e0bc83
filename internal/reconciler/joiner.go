package reconciler

import (
	"fmt"

	"soa-reconciliation-engine/internal/matcher"
	"soa-reconciliation-engine/internal/models"
	"soa-reconciliation-engine/pkg/errors"

	"github.com/shopspring/decimal"
)

// matchAccumulator carries the shared bookkeeping threaded through the
// ordered fold over references: match-source provenance, per-reference
// duplicate counts and the fuzzy key attributions needed later by the
// discrepancy aggregator. References must be folded in input order because
// source lists and column prefixes are order-dependent.
type matchAccumulator struct {
	// order lists reference names in processing order.
	order []string
	// sources maps a normalized base key to the reference names that matched
	// it, in processing order, without duplicates.
	sources map[string][]string
	// dupCounts maps reference name -> normalized base key -> number of
	// reference rows joined to that key.
	dupCounts map[string]map[string]int
	// fuzzyReverse maps a raw reference key back to the normalized base key
	// that fuzzy-matched it, so reference amounts aggregate under the base
	// key instead of surfacing as a separate one.
	fuzzyReverse map[string]string
}

func newMatchAccumulator() *matchAccumulator {
	return &matchAccumulator{
		sources:      make(map[string][]string),
		dupCounts:    make(map[string]map[string]int),
		fuzzyReverse: make(map[string]string),
	}
}

func (a *matchAccumulator) addSource(baseKey, refName string) {
	for _, existing := range a.sources[baseKey] {
		if existing == refName {
			return
		}
	}
	a.sources[baseKey] = append(a.sources[baseKey], refName)
}

func (a *matchAccumulator) setDupCount(refName, baseKey string, count int) {
	m := a.dupCounts[refName]
	if m == nil {
		m = make(map[string]int)
		a.dupCounts[refName] = m
	}
	m[baseKey] = count
}

// joinReference performs the per-reference join against the working result
// table and returns the extended table. The input reference table is never
// mutated. Any validation failure is returned so the runner can log it and
// continue with the next reference.
func (r *Runner) joinReference(result *models.Table, matchColumn string, spec models.ReferenceSpec, acc *matchAccumulator) (*models.Table, error) {
	if spec.Table == nil {
		return nil, errors.ReferenceError(spec.Name, fmt.Errorf("reference table is nil"))
	}
	if !spec.Table.HasColumn(spec.MatchColumn) {
		return nil, errors.ReferenceError(spec.Name,
			errors.MissingColumnError(spec.Name, spec.MatchColumn))
	}
	for _, col := range spec.ReturnColumns {
		if !spec.Table.HasColumn(col) {
			return nil, errors.ReferenceError(spec.Name,
				errors.MissingColumnError(spec.Name, col))
		}
	}

	// Extract the configured return columns plus the match column itself,
	// which is always included so the provenance of the matched reference
	// row stays visible in output.
	extracted := make([]string, 0, len(spec.ReturnColumns)+1)
	seen := make(map[string]bool)
	for _, col := range spec.ReturnColumns {
		if !seen[col] {
			extracted = append(extracted, col)
			seen[col] = true
		}
	}
	if !seen[spec.MatchColumn] {
		extracted = append(extracted, spec.MatchColumn)
	}

	// The first configured return column is the match-provenance proxy; a
	// base row counts as matched when it is non-null after the join.
	provenanceCol := prefixed(spec.Name, extracted[0])

	fuzzy := spec.MatchType == models.MatchFuzzy

	// Fuzzy joins resolve each distinct base value to its best reference
	// value once, then join exactly on the derived key.
	var keyMap map[string]string
	if fuzzy {
		keyMap = r.buildFuzzyKeyMap(result, matchColumn, spec, acc)
	}

	// Index the extracted, prefixed reference slices by join key: the
	// normalized key for exact joins, the raw reference value for fuzzy
	// joins (the derived key is a raw reference value).
	refIndex := make(map[string][]models.Row, spec.Table.Len())
	for _, refRow := range spec.Table.Rows {
		key := joinKeyForRefRow(refRow, spec.MatchColumn, fuzzy)
		slice := make(models.Row, len(extracted))
		for _, col := range extracted {
			if v, ok := refRow[col]; ok {
				slice[prefixed(spec.Name, col)] = v
			}
		}
		refIndex[key] = append(refIndex[key], slice)
	}

	matchCountCol := spec.Name + "_Match_Count"

	// Left-join. Reference-side duplicate keys fan the base row out into
	// one output row per duplicate; this multiplication is intentional and
	// must not be deduplicated away.
	joined := make([]models.Row, 0, len(result.Rows))
	for _, row := range result.Rows {
		raw := row.Get(matchColumn)
		baseKey := models.NormalizeKeyValue(raw)

		var joinKey string
		if fuzzy {
			if mapped, ok := keyMap[raw.String()]; ok {
				joinKey = mapped
			} else {
				joinKey = matcher.NoMatchSentinel
			}
		} else {
			joinKey = baseKey
		}

		matches := refIndex[joinKey]
		count := int64(len(matches))
		countValue := models.NewNumber(decimal.NewFromInt(count))

		if len(matches) == 0 {
			row[matchCountCol] = countValue
			joined = append(joined, row)
			continue
		}

		acc.setDupCount(spec.Name, baseKey, len(matches))
		for _, slice := range matches {
			out := row.Clone()
			for col, v := range slice {
				out[col] = v
			}
			out[matchCountCol] = countValue
			if !out.Get(provenanceCol).IsNull() {
				acc.addSource(baseKey, spec.Name)
			}
			joined = append(joined, out)
		}
	}

	for _, col := range extracted {
		result.AddColumn(prefixed(spec.Name, col))
	}
	result.AddColumn(matchCountCol)
	result.Rows = joined

	// Normalized join keys live in side lookups rather than helper columns,
	// so there is nothing to drop before the next reference.
	return result, nil
}

// buildFuzzyKeyMap collects the distinct non-null base and reference key
// values in their raw string form and resolves each base value to its best
// reference candidate. Reverse attributions are recorded for the
// discrepancy aggregator.
func (r *Runner) buildFuzzyKeyMap(result *models.Table, matchColumn string, spec models.ReferenceSpec, acc *matchAccumulator) map[string]string {
	baseValues := distinctColumnValues(result.Rows, matchColumn)
	refValues := distinctColumnValues(spec.Table.Rows, spec.MatchColumn)

	keyMap := r.matcher.BuildKeyMap(baseValues, refValues)

	for baseRaw, refRaw := range keyMap {
		if refRaw == matcher.NoMatchSentinel {
			continue
		}
		if _, taken := acc.fuzzyReverse[refRaw]; !taken {
			acc.fuzzyReverse[refRaw] = models.NormalizeKey(baseRaw)
		}
	}
	return keyMap
}

func joinKeyForRefRow(row models.Row, matchColumn string, fuzzy bool) string {
	v := row.Get(matchColumn)
	if fuzzy {
		return v.String()
	}
	return models.NormalizeKeyValue(v)
}

func distinctColumnValues(rows []models.Row, column string) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, row := range rows {
		v := row.Get(column)
		if v.IsNull() {
			continue
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func prefixed(refName, column string) string {
	return refName + "_" + column
}
