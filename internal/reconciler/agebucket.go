package reconciler

import (
	"time"

	"soa-reconciliation-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Age bucket thresholds use inclusive upper bounds: 15, 30, 60, 90, 120.
// Anything older is "121+"; unparseable dates land in "Unknown".
const UnknownBucket = "Unknown"

// AgeBucket maps an age in days to its bucket label.
func AgeBucket(days int) string {
	switch {
	case days <= 15:
		return "0-15"
	case days <= 30:
		return "16-30"
	case days <= 60:
		return "31-60"
	case days <= 90:
		return "61-90"
	case days <= 120:
		return "91-120"
	default:
		return "121+"
	}
}

// AgeDays computes whole elapsed days between the document date and the run
// date, truncated toward zero.
func AgeDays(docDate, runDate time.Time) int {
	return int(runDate.Sub(docDate).Hours() / 24)
}

// calculateAgeBuckets derives the "Age (Days)" and "Age Bucket" columns from
// the configured date column. The bucket column is inserted at the front of
// the table, the day column appended after the base columns. The original
// date column is read-only here, so its display formatting survives
// unchanged; values that fail tolerant parsing get a null age and the
// Unknown bucket.
func (r *Runner) calculateAgeBuckets(result *models.Table, dateColumn string, runDate time.Time) {
	result.AddColumn(ColAgeDays)
	result.InsertColumnAt(0, ColAgeBucket)

	unknown := 0
	for _, row := range result.Rows {
		docDate, ok := row.Get(dateColumn).Time()
		if !ok {
			row[ColAgeDays] = models.Null()
			row[ColAgeBucket] = models.NewString(UnknownBucket)
			unknown++
			continue
		}
		days := AgeDays(docDate, runDate)
		row[ColAgeDays] = models.NewNumber(decimal.NewFromInt(int64(days)))
		row[ColAgeBucket] = models.NewString(AgeBucket(days))
	}

	if unknown > 0 {
		r.log.WithField("rows", unknown).Warn("unparseable dates bucketed as Unknown")
	}
}
