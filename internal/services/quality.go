package services

import "math"

// RequiredFieldCount is the number of required sales columns; missing-value
// density is measured against totalRows * RequiredFieldCount cells.
const RequiredFieldCount = 5

// Scoring caps. Deductions run in this order against a running total.
const (
	warningPenalty    = 5.0
	maxWarningPenalty = 50.0
	maxMissingPenalty = 30.0
	maxDupPenalty     = 20.0
)

// QualityScore maps validation counts to a 0-100 score, rounded to one decimal.
//
//	total_rows == 0 or errors > 0  -> 0
//	100
//	  - min(warnings*5, 50)
//	  - min(missing / (rows*5) * 100, 30)
//	  - min(duplicates / rows * 100, 20)   (only when duplicates > 0)
//	clamped to [0, 100]
func QualityScore(totalRows, errorsCount, warningsCount, missingTotal, duplicates int) float64 {
	if totalRows <= 0 || errorsCount > 0 {
		return 0.0
	}

	score := 100.0
	score -= math.Min(float64(warningsCount)*warningPenalty, maxWarningPenalty)

	missingPct := float64(missingTotal) / float64(totalRows*RequiredFieldCount) * 100
	score -= math.Min(missingPct, maxMissingPenalty)

	if duplicates > 0 {
		dupPct := float64(duplicates) / float64(totalRows) * 100
		score -= math.Min(dupPct, maxDupPenalty)
	}

	score = math.Max(0, math.Min(100, score))
	return math.Round(score*10) / 10
}
