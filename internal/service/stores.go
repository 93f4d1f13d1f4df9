package service

import (
	"context"
	"errors"
	"time"

	"assessment-service/internal/models"
	"assessment-service/internal/selection"
)

// Service-level error taxonomy. NotFound and InvalidState are the only
// conditions surfaced to callers; evaluation failures are absorbed by the
// pipeline as flagged zero scores.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)

// ContentStore is the engine's read contract on question content.
type ContentStore interface {
	selection.QuestionSource
	FindByID(ctx context.Context, id string) (*models.Question, error)
}

// ProgressionStore provides atomic get-or-create and save for progression
// records keyed by (user, unit, topic).
type ProgressionStore interface {
	GetOrCreate(ctx context.Context, userID, unitID, topicID string) (*models.ProgressionRecord, error)
	Save(ctx context.Context, record *models.ProgressionRecord) error
	FindByUser(ctx context.Context, userID, unitID string) ([]models.ProgressionRecord, error)
	FindDue(ctx context.Context, userID string, before time.Time) ([]models.ProgressionRecord, error)
}

// AnswerStore appends practice answer records.
type AnswerStore interface {
	Create(ctx context.Context, answer *models.PracticeAnswer) error
	FindBySession(ctx context.Context, sessionID string) ([]models.PracticeAnswer, error)
}

// AttemptStore persists exam attempts and their guarded state transitions.
type AttemptStore interface {
	Create(ctx context.Context, attempt *models.ExamAttempt) error
	FindByID(ctx context.Context, id string) (*models.ExamAttempt, error)
	FindByUser(ctx context.Context, userID string) ([]models.ExamAttempt, error)
	SaveObjectiveResponse(ctx context.Context, attemptID string, resp models.ObjectiveResponse) error
	SaveFreeResponseSubmission(ctx context.Context, attemptID, questionID, submission string, parts []models.PartResponse) error
	MarkSubmitted(ctx context.Context, attempt *models.ExamAttempt) error
	SaveGradingResults(ctx context.Context, attempt *models.ExamAttempt) error
}

// Publisher is the optional event sink. Services tolerate a nil publisher.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}
