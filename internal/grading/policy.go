// Package grading holds the stateless grade policy shared by mark entry,
// summary aggregation and term weighting. Inputs are clamped or defaulted
// rather than rejected: these run inline during bulk ingestion where one
// bad row must not abort a batch.
package grading

import "math"

// Percentage returns obtained/max*100, or 0 when max is not positive.
// No rounding is applied here; rounding is a presentation concern.
func Percentage(obtained, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return obtained / max * 100
}

// GradeFromPercentage bands a percentage into a letter grade, highest band
// first with inclusive lower bounds. Non-finite input yields "N/A".
func GradeFromPercentage(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "N/A"
	}
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 60:
		return "C"
	case pct >= 50:
		return "D"
	default:
		return "E"
	}
}

// Passed reports whether the obtained marks meet the passing threshold.
func Passed(obtained, passingMarks float64) bool {
	return obtained >= passingMarks
}

// MarkPair is one subject's obtained/max contribution to an aggregate.
type MarkPair struct {
	Obtained float64
	Max      float64
}

// OverallPercentage computes the marks-weighted aggregate
// sum(obtained)/sum(max)*100 over all pairs. This is deliberately not the
// mean of the per-subject percentages: a 10/10 and a 0/90 aggregate to 10%,
// not 50%.
func OverallPercentage(pairs []MarkPair) float64 {
	var obtained, max float64
	for _, p := range pairs {
		obtained += p.Obtained
		max += p.Max
	}
	if max <= 0 {
		return 0
	}
	return obtained / max * 100
}

// DefaultPassingMarks derives the passing threshold when an exam subject
// carries no explicit passing mark: ratio of max marks rounded to the
// nearest integer.
func DefaultPassingMarks(maxMarks, ratio float64) float64 {
	if maxMarks <= 0 || ratio <= 0 {
		return 0
	}
	return math.Round(maxMarks * ratio)
}

// Round2 rounds to two decimals, the convention for stored and returned
// percentage values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
