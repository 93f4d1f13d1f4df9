package models

// Question types.
const (
	QuestionTypeObjective    = "objective"
	QuestionTypeFreeResponse = "free_response"
)

type Option struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text"`
}

// RubricLine is one scoreable criterion inside a rubric part.
type RubricLine struct {
	Criterion string `bson:"criterion" json:"criterion"`
	Points    int    `bson:"points" json:"points"`
}

// RubricPart is one lettered part of a free-response question. Immutable once
// the question is published; the engine only reads it.
type RubricPart struct {
	Label          string       `bson:"label" json:"label"`
	Points         int          `bson:"points" json:"points"`
	Prompt         string       `bson:"prompt" json:"prompt"`
	Scaffold       string       `bson:"scaffold,omitempty" json:"scaffold,omitempty"`
	SampleSolution string       `bson:"sample_solution,omitempty" json:"sample_solution,omitempty"`
	Rubric         []RubricLine `bson:"rubric" json:"rubric"`
}

type Question struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Type        string `bson:"type" json:"type"`
	Content     string `bson:"content" json:"content"`
	UnitID      string `bson:"unit_id" json:"unit_id"`
	TopicID     string `bson:"topic_id,omitempty" json:"topic_id,omitempty"`
	Difficulty  string `bson:"difficulty" json:"difficulty"`
	Status      string `bson:"status" json:"status"`
	Active      bool   `bson:"active" json:"active"`
	Explanation string `bson:"explanation,omitempty" json:"explanation,omitempty"`

	// Objective questions.
	Options              []Option `bson:"options,omitempty" json:"options,omitempty"`
	CorrectAnswer        string   `bson:"correct_answer,omitempty" json:"-"`
	EstimatedTimeSeconds int      `bson:"estimated_time_seconds,omitempty" json:"estimated_time_seconds,omitempty"`

	// Free-response questions.
	Category  string       `bson:"category,omitempty" json:"category,omitempty"`
	MaxPoints int          `bson:"max_points,omitempty" json:"max_points,omitempty"`
	Parts     []RubricPart `bson:"parts,omitempty" json:"parts,omitempty"`
}

// TotalRubricPoints sums the point caps across all parts. For a question with
// no decomposed parts it falls back to MaxPoints.
func (q *Question) TotalRubricPoints() int {
	if len(q.Parts) == 0 {
		return q.MaxPoints
	}
	total := 0
	for _, p := range q.Parts {
		total += p.Points
	}
	return total
}

// IsEligible reports whether a question may be served to learners.
func (q *Question) IsEligible() bool {
	return q.Active && q.Status == "approved"
}
