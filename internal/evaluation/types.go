package evaluation

import (
	"context"
	"fmt"

	"assessment-service/internal/models"
)

// PartContext is everything the text-evaluation collaborator needs to score
// one rubric part of a free-response submission.
type PartContext struct {
	QuestionID     string
	PartLabel      string
	Prompt         string
	Scaffold       string
	SampleSolution string
	Rubric         []models.RubricLine
	MaxPoints      int
	Submission     string
}

// Evaluation is the collaborator's score breakdown for one part.
type Evaluation struct {
	Score           int                      `json:"score"`
	RubricBreakdown []models.RubricLineScore `json:"rubric_breakdown"`
	Penalties       []string                 `json:"penalties"`
	Feedback        string                   `json:"feedback"`
	Strengths       []string                 `json:"strengths"`
	Improvements    []string                 `json:"improvements"`
}

// Evaluator scores a single rubric part. Implementations must tolerate many
// concurrent calls with independent contexts.
type Evaluator interface {
	Evaluate(ctx context.Context, pc PartContext) (*Evaluation, error)
}

// EvaluationError is returned when evaluating a part fails, so callers can
// distinguish a bad response from an unreachable collaborator.
type EvaluationError struct {
	Reason  string
	Wrapped error
}

func (e *EvaluationError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("evaluation failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("evaluation failed: %s", e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Wrapped
}

// Feedback strings stored on zero-scored parts.
const (
	FeedbackNoSubmission = "no submission"
	FeedbackEvalFailed   = "automatic evaluation failed - requires manual review"
)

// maxPenalties caps how many one-point penalties a part may carry.
const maxPenalties = 3
