// Package selection picks practice questions and composes exam question
// sets. All randomness flows through an injected rand source so selection is
// reproducible in tests.
package selection

import (
	"context"
	"math/rand"
	"time"

	"assessment-service/internal/adaptive"
	"assessment-service/internal/models"
)

// Selector performs difficulty-targeted random question selection with
// graceful fallback to adjacent tiers.
type Selector struct {
	source QuestionSource
	rand   *rand.Rand
}

// NewSelector creates a selector seeded from the clock.
func NewSelector(source QuestionSource) *Selector {
	return NewSelectorWithRand(source, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSelectorWithRand creates a selector with a caller-supplied rand source.
func NewSelectorWithRand(source QuestionSource, r *rand.Rand) *Selector {
	return &Selector{source: source, rand: r}
}

// NextQuestion picks one question at the target tier from the eligible pool,
// excluding already-answered IDs. If the target tier is empty it tries one
// tier down, then one tier up, then anything left. A nil result with a nil
// error means the pool is exhausted and the session is complete, not failed.
func (s *Selector) NextQuestion(ctx context.Context, unitID, topicID string, target adaptive.Tier, excludeIDs []string) (*models.Question, error) {
	pool, err := s.source.ListEligible(ctx, unitID, topicID, "", excludeIDs)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	for _, tier := range fallbackOrder(target) {
		candidates := filterByTier(pool, tier)
		if len(candidates) > 0 {
			q := candidates[s.rand.Intn(len(candidates))]
			return &q, nil
		}
	}

	// No tier matched at all; sample uniformly from whatever remains.
	q := pool[s.rand.Intn(len(pool))]
	return &q, nil
}

// fallbackOrder yields the target tier, one level down, then one level up,
// without duplicates.
func fallbackOrder(target adaptive.Tier) []adaptive.Tier {
	order := []adaptive.Tier{target}
	if below := target.Below(); below != target {
		order = append(order, below)
	}
	if above := target.Above(); above != target {
		order = append(order, above)
	}
	return order
}

func filterByTier(pool []models.Question, tier adaptive.Tier) []models.Question {
	out := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if q.Difficulty == string(tier) {
			out = append(out, q)
		}
	}
	return out
}
