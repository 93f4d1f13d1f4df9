package selection

import (
	"context"
	"math/rand"
	"time"

	"assessment-service/internal/models"
)

// Composer draws one exam's question set: stratified objective sampling per
// the blueprint's unit quotas, shuffled across units afterward, plus exactly
// one free-response question per required category. Composition is
// all-or-nothing: any under-supplied stratum aborts with
// *InsufficientPoolError before anything is persisted.
type Composer struct {
	source    QuestionSource
	blueprint *Blueprint
	rand      *rand.Rand
}

// NewComposer creates a composer seeded from the clock. A nil blueprint
// selects the default exam shape.
func NewComposer(source QuestionSource, blueprint *Blueprint) *Composer {
	return NewComposerWithRand(source, blueprint, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewComposerWithRand creates a composer with a caller-supplied rand source.
func NewComposerWithRand(source QuestionSource, blueprint *Blueprint, r *rand.Rand) *Composer {
	if blueprint == nil {
		blueprint = DefaultBlueprint()
	}
	return &Composer{source: source, blueprint: blueprint, rand: r}
}

// Blueprint returns the composer's exam shape.
func (c *Composer) Blueprint() *Blueprint { return c.blueprint }

// Compose draws the full question set or fails naming the short stratum.
func (c *Composer) Compose(ctx context.Context) (*ExamSet, error) {
	objective := make([]models.Question, 0, c.blueprint.ObjectiveCount())
	for _, quota := range c.blueprint.UnitQuotas {
		pool, err := c.source.ListEligible(ctx, quota.UnitID, "", "", nil)
		if err != nil {
			return nil, err
		}
		if len(pool) < quota.Count {
			return nil, &InsufficientPoolError{
				Stratum:   "unit " + quota.UnitID,
				Required:  quota.Count,
				Available: len(pool),
			}
		}
		objective = append(objective, c.sampleWithoutReplacement(pool, quota.Count)...)
	}

	// Shuffle across units so the exam does not present unit blocks.
	c.rand.Shuffle(len(objective), func(i, j int) {
		objective[i], objective[j] = objective[j], objective[i]
	})

	freeResponse := make([]models.Question, 0, len(c.blueprint.FRQCategories))
	for _, category := range c.blueprint.FRQCategories {
		pool, err := c.source.ListFreeResponseByCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return nil, &InsufficientPoolError{
				Stratum:   "category " + category,
				Required:  1,
				Available: 0,
			}
		}
		freeResponse = append(freeResponse, pool[c.rand.Intn(len(pool))])
	}

	return &ExamSet{Objective: objective, FreeResponse: freeResponse}, nil
}

// PoolReport counts eligible questions per stratum so shortfalls are visible
// before a learner hits them.
func (c *Composer) PoolReport(ctx context.Context) (map[string]int, error) {
	report := make(map[string]int)
	for _, quota := range c.blueprint.UnitQuotas {
		pool, err := c.source.ListEligible(ctx, quota.UnitID, "", "", nil)
		if err != nil {
			return nil, err
		}
		report["unit:"+quota.UnitID] = len(pool)
	}
	for _, category := range c.blueprint.FRQCategories {
		pool, err := c.source.ListFreeResponseByCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		report["category:"+category] = len(pool)
	}
	return report, nil
}

func (c *Composer) sampleWithoutReplacement(pool []models.Question, count int) []models.Question {
	picked := make([]models.Question, 0, count)
	remaining := make([]models.Question, len(pool))
	copy(remaining, pool)

	for i := 0; i < count && len(remaining) > 0; i++ {
		idx := c.rand.Intn(len(remaining))
		picked = append(picked, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return picked
}
