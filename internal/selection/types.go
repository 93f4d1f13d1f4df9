package selection

import (
	"context"
	"fmt"

	"assessment-service/internal/models"
)

// QuestionSource is the content-store contract the selection layer reads
// from. Implementations must only return approved, active questions.
type QuestionSource interface {
	// ListEligible returns objective questions matching the scope. Empty
	// unitID means all units; empty topicID or difficulty means no filter.
	ListEligible(ctx context.Context, unitID, topicID, difficulty string, excludeIDs []string) ([]models.Question, error)
	// ListFreeResponseByCategory returns the approved free-response pool for
	// one category.
	ListFreeResponseByCategory(ctx context.Context, category string) ([]models.Question, error)
}

// UnitQuota is one stratum of the objective blueprint.
type UnitQuota struct {
	UnitID string `json:"unit_id"`
	Count  int    `json:"count"`
}

// Blueprint fixes the shape of a composed exam: how many objective questions
// each unit contributes and which free-response categories must each supply
// exactly one question.
type Blueprint struct {
	UnitQuotas    []UnitQuota `json:"unit_quotas"`
	FRQCategories []string    `json:"frq_categories"`
}

// ObjectiveCount is the total objective question count across all quotas.
func (b *Blueprint) ObjectiveCount() int {
	total := 0
	for _, q := range b.UnitQuotas {
		total += q.Count
	}
	return total
}

// DefaultBlueprint mirrors the standard course exam: 30 objective questions
// weighted across ten content units, plus one free-response question per
// required category.
func DefaultBlueprint() *Blueprint {
	return &Blueprint{
		UnitQuotas: []UnitQuota{
			{UnitID: "unit-1", Count: 3},
			{UnitID: "unit-2", Count: 3},
			{UnitID: "unit-3", Count: 4},
			{UnitID: "unit-4", Count: 4},
			{UnitID: "unit-5", Count: 3},
			{UnitID: "unit-6", Count: 4},
			{UnitID: "unit-7", Count: 3},
			{UnitID: "unit-8", Count: 3},
			{UnitID: "unit-9", Count: 2},
			{UnitID: "unit-10", Count: 1},
		},
		FRQCategories: []string{
			"methods-and-control",
			"classes",
			"array-arraylist",
			"2d-array",
		},
	}
}

// ExamSet is a fully composed question set, ready to open an attempt from.
type ExamSet struct {
	Objective    []models.Question `json:"objective"`
	FreeResponse []models.Question `json:"free_response"`
}

// InsufficientPoolError reports an under-supplied stratum. Composition is
// all-or-nothing, so this fires before any attempt state is persisted.
type InsufficientPoolError struct {
	Stratum   string
	Required  int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("insufficient question pool for %s: need %d, have %d",
		e.Stratum, e.Required, e.Available)
}
