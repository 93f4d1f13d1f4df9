// Package scoring combines objective and free-response performance into the
// blended percentage, the predicted tier, and the per-unit strength and
// weakness summary. Everything here is deterministic.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"assessment-service/internal/models"
)

// TierBand maps a minimum blended percentage to a predicted tier.
type TierBand struct {
	Tier          int     `json:"tier"`
	MinPercentage float64 `json:"min_percentage"`
}

// Config holds the scoring weights and tier thresholds. Thresholds are
// configuration, not engine logic, but must be monotonic and exhaustive over
// [0, 100].
type Config struct {
	ObjectiveWeight float64    `json:"objective_weight"`
	FRQWeight       float64    `json:"frq_weight"`
	TierBands       []TierBand `json:"tier_bands"` // descending by MinPercentage
	StrongThreshold float64    `json:"strong_threshold"`
	WeakThreshold   float64    `json:"weak_threshold"`
}

// DefaultConfig returns the standard 55/45 weighting and the five-band tier
// table.
func DefaultConfig() *Config {
	return &Config{
		ObjectiveWeight: 0.55,
		FRQWeight:       0.45,
		TierBands: []TierBand{
			{Tier: 5, MinPercentage: 75},
			{Tier: 4, MinPercentage: 60},
			{Tier: 3, MinPercentage: 45},
			{Tier: 2, MinPercentage: 30},
			{Tier: 1, MinPercentage: 0},
		},
		StrongThreshold: 80,
		WeakThreshold:   60,
	}
}

// Validate rejects band tables that are empty, non-monotonic, or fail to
// cover the bottom of the range.
func (c *Config) Validate() error {
	if len(c.TierBands) == 0 {
		return fmt.Errorf("scoring config: no tier bands")
	}
	for i := 1; i < len(c.TierBands); i++ {
		if c.TierBands[i].MinPercentage >= c.TierBands[i-1].MinPercentage {
			return fmt.Errorf("scoring config: tier bands must descend strictly (band %d)", i)
		}
		if c.TierBands[i].Tier >= c.TierBands[i-1].Tier {
			return fmt.Errorf("scoring config: tier values must descend with thresholds (band %d)", i)
		}
	}
	if c.TierBands[len(c.TierBands)-1].MinPercentage != 0 {
		return fmt.Errorf("scoring config: lowest band must start at 0")
	}
	if c.ObjectiveWeight <= 0 || c.FRQWeight <= 0 {
		return fmt.Errorf("scoring config: weights must be positive")
	}
	return nil
}

// Aggregator computes exam results.
type Aggregator struct {
	config *Config
}

// NewAggregator creates an aggregator. A nil config selects defaults.
func NewAggregator(config *Config) *Aggregator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Aggregator{config: config}
}

// ScoreObjective counts correct objective responses and stamps the attempt's
// synchronous score fields. Available immediately at submit, before any
// free-response grading.
func (a *Aggregator) ScoreObjective(attempt *models.ExamAttempt) {
	correct := 0
	for _, r := range attempt.ObjectiveResponses {
		if r.IsCorrect {
			correct++
		}
	}
	attempt.ObjectiveCorrect = correct
	attempt.ObjectiveTotal = len(attempt.ObjectiveResponses)
	attempt.ObjectivePercentage = percentage(correct, attempt.ObjectiveTotal)
}

// Finalize folds the graded free-response scores into the blended result,
// predicted tier, unit breakdown, and recommendations.
func (a *Aggregator) Finalize(attempt *models.ExamAttempt) {
	earned, max := 0, 0
	for _, fr := range attempt.FreeResponses {
		earned += fr.Score
		max += fr.MaxPoints
	}
	attempt.FRQEarned = earned
	attempt.FRQMax = max
	attempt.FRQPercentage = percentage(earned, max)

	attempt.BlendedPercentage = a.Blend(attempt.ObjectivePercentage, attempt.FRQPercentage)
	attempt.PredictedTier = a.PredictTier(attempt.BlendedPercentage)

	attempt.UnitBreakdown = a.unitBreakdown(attempt.ObjectiveResponses)
	attempt.Strengths, attempt.Weaknesses = a.strengthsAndWeaknesses(attempt.UnitBreakdown)
	attempt.Recommendations = a.recommendations(attempt)
}

// Blend combines the two percentages under the configured weighting,
// monotonic non-decreasing in both inputs.
func (a *Aggregator) Blend(objectivePct, frqPct float64) float64 {
	blended := a.config.ObjectiveWeight*objectivePct + a.config.FRQWeight*frqPct
	return math.Round(blended*10) / 10
}

// PredictTier buckets the blended percentage into the first band it clears.
func (a *Aggregator) PredictTier(blendedPct float64) int {
	for _, band := range a.config.TierBands {
		if blendedPct >= band.MinPercentage {
			return band.Tier
		}
	}
	return a.config.TierBands[len(a.config.TierBands)-1].Tier
}

// unitBreakdown groups objective responses by unit, ordered by unit ID so
// ties resolve deterministically.
func (a *Aggregator) unitBreakdown(responses []models.ObjectiveResponse) []models.UnitBreakdown {
	byUnit := make(map[string]*models.UnitBreakdown)
	for _, r := range responses {
		ub, ok := byUnit[r.UnitID]
		if !ok {
			ub = &models.UnitBreakdown{UnitID: r.UnitID}
			byUnit[r.UnitID] = ub
		}
		ub.Attempted++
		if r.IsCorrect {
			ub.Correct++
		}
	}

	units := make([]string, 0, len(byUnit))
	for unit := range byUnit {
		units = append(units, unit)
	}
	sort.Strings(units)

	out := make([]models.UnitBreakdown, 0, len(units))
	for _, unit := range units {
		ub := byUnit[unit]
		ub.Percentage = percentage(ub.Correct, ub.Attempted)
		out = append(out, *ub)
	}
	return out
}

// Placeholder messages when no unit clears either threshold.
const (
	noStrengthsMessage  = "No standout strengths yet; consistent practice across units will get you there."
	noWeaknessesMessage = "No significant weak areas detected."
)

func (a *Aggregator) strengthsAndWeaknesses(breakdown []models.UnitBreakdown) ([]string, []string) {
	var strengths, weaknesses []string
	for _, ub := range breakdown {
		if ub.Percentage >= a.config.StrongThreshold {
			strengths = append(strengths, ub.UnitID)
		} else if ub.Percentage < a.config.WeakThreshold {
			weaknesses = append(weaknesses, ub.UnitID)
		}
	}
	if len(strengths) == 0 {
		strengths = []string{noStrengthsMessage}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{noWeaknessesMessage}
	}
	return strengths, weaknesses
}

// recommendations templates next steps off the weakness list and the blended
// band. No randomness.
func (a *Aggregator) recommendations(attempt *models.ExamAttempt) []string {
	recs := make([]string, 0, len(attempt.Weaknesses)+1)
	for _, w := range attempt.Weaknesses {
		if w == noWeaknessesMessage {
			continue
		}
		recs = append(recs, fmt.Sprintf("Focus review sessions on %s; accuracy there is pulling your score down.", w))
	}

	switch {
	case attempt.BlendedPercentage >= 75:
		recs = append(recs, "You are on track for the top band. Keep up timed full-exam practice to stay sharp.")
	case attempt.BlendedPercentage >= 60:
		recs = append(recs, "Solid performance. Targeted free-response practice is the fastest path to the next band.")
	case attempt.BlendedPercentage >= 45:
		recs = append(recs, "Build fundamentals with mixed-unit practice before attempting another full exam.")
	default:
		recs = append(recs, "Start with easy-tier practice in each unit and work up as your mastery climbs.")
	}
	return recs
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
