package models

import "time"

// Exam attempt statuses. The transition is one-way and happens exactly once.
const (
	AttemptInProgress = "in_progress"
	AttemptGraded     = "graded"
)

// Free-response answer statuses.
const (
	FRQUngraded   = "ungraded"
	FRQGrading    = "grading"
	FRQGraded     = "graded"
	FRQZeroScored = "zero_scored"
)

// ObjectiveResponse is the learner's answer to one drawn objective question.
type ObjectiveResponse struct {
	QuestionID       string `bson:"question_id" json:"question_id"`
	UnitID           string `bson:"unit_id" json:"unit_id"`
	Sequence         int    `bson:"sequence" json:"sequence"`
	Answer           string `bson:"answer" json:"answer"`
	Answered         bool   `bson:"answered" json:"answered"`
	IsCorrect        bool   `bson:"is_correct" json:"is_correct"`
	TimeSpentSeconds int    `bson:"time_spent_seconds" json:"time_spent_seconds"`
	FlaggedForReview bool   `bson:"flagged_for_review" json:"flagged_for_review"`
}

// PartResponse holds the learner's raw submission for one rubric part.
type PartResponse struct {
	Label string `bson:"label" json:"label"`
	Text  string `bson:"text" json:"text"`
}

// RubricLineScore is the evaluator's verdict on one rubric criterion.
type RubricLineScore struct {
	Criterion string `bson:"criterion" json:"criterion"`
	Earned    int    `bson:"earned" json:"earned"`
	Possible  int    `bson:"possible" json:"possible"`
	Feedback  string `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// PartScore is the graded outcome for one rubric part.
type PartScore struct {
	Label           string            `bson:"label" json:"label"`
	Score           int               `bson:"score" json:"score"`
	MaxPoints       int               `bson:"max_points" json:"max_points"`
	RubricBreakdown []RubricLineScore `bson:"rubric_breakdown,omitempty" json:"rubric_breakdown,omitempty"`
	Penalties       []string          `bson:"penalties,omitempty" json:"penalties,omitempty"`
	Feedback        string            `bson:"feedback,omitempty" json:"feedback,omitempty"`
	NeedsManual     bool              `bson:"needs_manual" json:"needs_manual"`
}

// FreeResponseAnswer is the learner's submission and, once the evaluation
// pipeline has run, the grade for one drawn free-response question.
type FreeResponseAnswer struct {
	QuestionID string         `bson:"question_id" json:"question_id"`
	Category   string         `bson:"category" json:"category"`
	Sequence   int            `bson:"sequence" json:"sequence"`
	Submission string         `bson:"submission" json:"submission"`
	Parts      []PartResponse `bson:"parts" json:"parts"`

	Status     string      `bson:"status" json:"status"`
	Score      int         `bson:"score" json:"score"`
	MaxPoints  int         `bson:"max_points" json:"max_points"`
	PartScores []PartScore `bson:"part_scores,omitempty" json:"part_scores,omitempty"`
	Feedback   string      `bson:"feedback,omitempty" json:"feedback,omitempty"`
}

// UnitBreakdown is the per-content-unit objective performance summary.
type UnitBreakdown struct {
	UnitID     string  `bson:"unit_id" json:"unit_id"`
	Attempted  int     `bson:"attempted" json:"attempted"`
	Correct    int     `bson:"correct" json:"correct"`
	Percentage float64 `bson:"percentage" json:"percentage"`
}

// ExamAttempt is one full-exam instance. Objective scoring is synchronous at
// submit time; free-response grading completes in the background, after which
// the blended result and predicted tier are recomputed.
type ExamAttempt struct {
	ID     string `bson:"_id,omitempty" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`
	Status string `bson:"status" json:"status"`

	ObjectiveResponses []ObjectiveResponse  `bson:"objective_responses" json:"objective_responses"`
	FreeResponses      []FreeResponseAnswer `bson:"free_responses" json:"free_responses"`

	ObjectiveCorrect    int     `bson:"objective_correct" json:"objective_correct"`
	ObjectiveTotal      int     `bson:"objective_total" json:"objective_total"`
	ObjectivePercentage float64 `bson:"objective_percentage" json:"objective_percentage"`

	FRQEarned     int     `bson:"frq_earned" json:"frq_earned"`
	FRQMax        int     `bson:"frq_max" json:"frq_max"`
	FRQPercentage float64 `bson:"frq_percentage" json:"frq_percentage"`

	BlendedPercentage float64 `bson:"blended_percentage" json:"blended_percentage"`
	PredictedTier     int     `bson:"predicted_tier" json:"predicted_tier"`

	UnitBreakdown   []UnitBreakdown `bson:"unit_breakdown,omitempty" json:"unit_breakdown,omitempty"`
	Strengths       []string        `bson:"strengths,omitempty" json:"strengths,omitempty"`
	Weaknesses      []string        `bson:"weaknesses,omitempty" json:"weaknesses,omitempty"`
	Recommendations []string        `bson:"recommendations,omitempty" json:"recommendations,omitempty"`

	StartTime   time.Time  `bson:"start_time" json:"start_time"`
	SubmittedAt *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	GradedAt    *time.Time `bson:"graded_at,omitempty" json:"graded_at,omitempty"`
}

// GradingPending reports whether any free-response answer is still waiting on
// the evaluation pipeline.
func (a *ExamAttempt) GradingPending() bool {
	for i := range a.FreeResponses {
		switch a.FreeResponses[i].Status {
		case FRQUngraded, FRQGrading:
			return true
		}
	}
	return false
}
