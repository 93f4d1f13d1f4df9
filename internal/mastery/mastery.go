// Package mastery computes the blended 0-100 competence estimate for a
// learner in a content scope.
package mastery

import "math"

// Smoothing factor for the recency term.
const alpha = 0.25

// Weighting between overall accuracy and recency.
const (
	accuracyWeight = 0.6
	recencyWeight  = 0.4
)

// Compute blends historical accuracy with recency-weighted correctness.
// priorMastery seeds the exponential moving average; the latest answer pulls
// it toward 100 (correct) or 0 (wrong). Deterministic for any input, and the
// result is always clamped to [0, 100].
func Compute(priorMastery, correctAttempts, totalAttempts int, latestIsCorrect bool) int {
	if totalAttempts <= 0 {
		return clamp(priorMastery)
	}

	accuracy := float64(correctAttempts) / float64(totalAttempts) * 100

	latest := 0.0
	if latestIsCorrect {
		latest = 100.0
	}
	recency := alpha*latest + (1-alpha)*float64(clamp(priorMastery))

	blended := accuracyWeight*accuracy + recencyWeight*recency
	return clamp(int(math.Round(blended)))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
