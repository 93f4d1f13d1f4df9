package models

import "time"

// RecentWindowSize bounds the trailing answer window used for the
// recent-accuracy signal.
const RecentWindowSize = 8

// ProgressionRecord tracks a learner's difficulty progression and spaced
// repetition state within one content scope. Exactly one record exists per
// (user, unit, topic) key; topic may be empty, meaning unit-level aggregation.
// The engine never deletes these records.
type ProgressionRecord struct {
	ID      string `bson:"_id,omitempty" json:"id"`
	UserID  string `bson:"user_id" json:"user_id"`
	UnitID  string `bson:"unit_id" json:"unit_id"`
	TopicID string `bson:"topic_id,omitempty" json:"topic_id,omitempty"`

	Tier               string `bson:"tier" json:"tier"`
	ConsecutiveCorrect int    `bson:"consecutive_correct" json:"consecutive_correct"`
	ConsecutiveWrong   int    `bson:"consecutive_wrong" json:"consecutive_wrong"`
	TotalAttempts      int    `bson:"total_attempts" json:"total_attempts"`
	CorrectAttempts    int    `bson:"correct_attempts" json:"correct_attempts"`
	Mastery            int    `bson:"mastery" json:"mastery"`

	// Trailing outcomes, newest last, capped at RecentWindowSize.
	RecentOutcomes []bool `bson:"recent_outcomes" json:"recent_outcomes"`

	// Spaced repetition state.
	EaseFactor   float64   `bson:"ease_factor" json:"ease_factor"`
	IntervalDays int       `bson:"interval_days" json:"interval_days"`
	NextReview   time.Time `bson:"next_review" json:"next_review"`

	// Running average answer time, used to derive review quality.
	AvgTimeSeconds float64 `bson:"avg_time_seconds" json:"avg_time_seconds"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RecentAccuracy returns the fraction of correct answers in the trailing
// window as a percentage. Zero attempts yields 0.
func (p *ProgressionRecord) RecentAccuracy() float64 {
	if len(p.RecentOutcomes) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range p.RecentOutcomes {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(p.RecentOutcomes)) * 100
}

// PushOutcome appends the latest answer outcome, evicting the oldest entry
// once the window is full.
func (p *ProgressionRecord) PushOutcome(correct bool) {
	p.RecentOutcomes = append(p.RecentOutcomes, correct)
	if len(p.RecentOutcomes) > RecentWindowSize {
		p.RecentOutcomes = p.RecentOutcomes[len(p.RecentOutcomes)-RecentWindowSize:]
	}
}

// PracticeAnswer is one answered practice question.
type PracticeAnswer struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	SessionID        string    `bson:"session_id,omitempty" json:"session_id,omitempty"`
	UserID           string    `bson:"user_id" json:"user_id"`
	QuestionID       string    `bson:"question_id" json:"question_id"`
	UnitID           string    `bson:"unit_id" json:"unit_id"`
	TopicID          string    `bson:"topic_id,omitempty" json:"topic_id,omitempty"`
	Answer           string    `bson:"answer" json:"answer"`
	IsCorrect        bool      `bson:"is_correct" json:"is_correct"`
	TimeSpentSeconds int       `bson:"time_spent_seconds" json:"time_spent_seconds"`
	AnsweredAt       time.Time `bson:"answered_at" json:"answered_at"`
}
