package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"assessment-service/internal/evaluation"
	"assessment-service/internal/id"
	"assessment-service/internal/models"
	"assessment-service/internal/repository"
	"assessment-service/internal/scoring"
	"assessment-service/internal/selection"
)

// ExamService owns the full-exam lifecycle: composition, answer collection,
// synchronous objective scoring at submit, and the background free-response
// grading that produces the final blended result.
type ExamService struct {
	content    ContentStore
	attempts   AttemptStore
	composer   *selection.Composer
	pipeline   *evaluation.Pipeline
	aggregator *scoring.Aggregator
	publisher  Publisher
	logger     *slog.Logger
}

func NewExamService(
	content ContentStore,
	attempts AttemptStore,
	composer *selection.Composer,
	pipeline *evaluation.Pipeline,
	aggregator *scoring.Aggregator,
	publisher Publisher,
	logger *slog.Logger,
) *ExamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExamService{
		content:    content,
		attempts:   attempts,
		composer:   composer,
		pipeline:   pipeline,
		aggregator: aggregator,
		publisher:  publisher,
		logger:     logger,
	}
}

// StartedExam pairs the persisted attempt with the drawn questions (answer
// keys stay server-side; the Question JSON never carries them).
type StartedExam struct {
	Attempt   *models.ExamAttempt `json:"attempt"`
	Questions *selection.ExamSet  `json:"questions"`
}

// ExamResults is the poll surface while free-response grading runs in the
// background.
type ExamResults struct {
	Attempt         *models.ExamAttempt `json:"attempt"`
	GradingComplete bool                `json:"grading_complete"`
}

// StartExam composes a fresh question set and opens an attempt. Composition
// is all-or-nothing: an under-supplied stratum fails here and nothing is
// persisted.
func (s *ExamService) StartExam(ctx context.Context, userID string) (*StartedExam, error) {
	set, err := s.composer.Compose(ctx)
	if err != nil {
		return nil, err
	}

	attempt := &models.ExamAttempt{
		ID:        id.GenerateID(),
		UserID:    userID,
		Status:    models.AttemptInProgress,
		StartTime: time.Now().UTC(),
	}
	for i, q := range set.Objective {
		attempt.ObjectiveResponses = append(attempt.ObjectiveResponses, models.ObjectiveResponse{
			QuestionID: q.ID,
			UnitID:     q.UnitID,
			Sequence:   i + 1,
		})
	}
	for i, q := range set.FreeResponse {
		attempt.FreeResponses = append(attempt.FreeResponses, models.FreeResponseAnswer{
			QuestionID: q.ID,
			Category:   q.Category,
			Sequence:   i + 1,
			Status:     models.FRQUngraded,
			MaxPoints:  q.TotalRubricPoints(),
		})
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}
	return &StartedExam{Attempt: attempt, Questions: set}, nil
}

// SubmitObjectiveAnswer grades one objective answer against the key and
// stores it on the open attempt.
func (s *ExamService) SubmitObjectiveAnswer(ctx context.Context, attemptID, questionID, answer string, timeSpentSeconds int, flagged bool) error {
	question, err := s.content.FindByID(ctx, questionID)
	if err != nil {
		return fmt.Errorf("%w: question %s", ErrNotFound, questionID)
	}

	resp := models.ObjectiveResponse{
		QuestionID:       questionID,
		UnitID:           question.UnitID,
		Answer:           answer,
		Answered:         true,
		IsCorrect:        question.CorrectAnswer != "" && answer == question.CorrectAnswer,
		TimeSpentSeconds: timeSpentSeconds,
		FlaggedForReview: flagged,
	}
	if err := s.attempts.SaveObjectiveResponse(ctx, attemptID, resp); err != nil {
		if errors.Is(err, repository.ErrStaleAttempt) {
			return fmt.Errorf("%w: attempt %s is closed to answers", ErrInvalidState, attemptID)
		}
		if errors.Is(err, repository.ErrUnknownQuestion) {
			return fmt.Errorf("%w: question %s not in attempt %s", ErrNotFound, questionID, attemptID)
		}
		return err
	}
	return nil
}

// SubmitFreeResponse stores the learner's free-response text on the open
// attempt. Grading happens later, at exam submission.
func (s *ExamService) SubmitFreeResponse(ctx context.Context, attemptID, questionID, submission string, parts []models.PartResponse) error {
	err := s.attempts.SaveFreeResponseSubmission(ctx, attemptID, questionID, submission, parts)
	if errors.Is(err, repository.ErrStaleAttempt) {
		return fmt.Errorf("%w: attempt %s is closed to answers", ErrInvalidState, attemptID)
	}
	if errors.Is(err, repository.ErrUnknownQuestion) {
		return fmt.Errorf("%w: question %s not in attempt %s", ErrNotFound, questionID, attemptID)
	}
	return err
}

// SubmitExam closes the attempt, computes the objective score synchronously,
// and kicks off free-response grading in the background. Submitting an
// already-submitted attempt is an idempotent no-op returning the current
// state.
func (s *ExamService) SubmitExam(ctx context.Context, attemptID string) (*models.ExamAttempt, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("%w: attempt %s", ErrNotFound, attemptID)
	}
	if attempt.SubmittedAt != nil || attempt.Status == models.AttemptGraded {
		return attempt, nil
	}

	s.aggregator.ScoreObjective(attempt)
	if err := s.attempts.MarkSubmitted(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrStaleAttempt) {
			// Lost a submit race; the winner owns grading.
			return s.attempts.FindByID(ctx, attemptID)
		}
		return nil, err
	}

	s.publish("exam.submitted", map[string]interface{}{
		"attempt_id":           attempt.ID,
		"user_id":              attempt.UserID,
		"objective_correct":    attempt.ObjectiveCorrect,
		"objective_total":      attempt.ObjectiveTotal,
		"objective_percentage": attempt.ObjectivePercentage,
	})

	// Grading must survive the request's context. The goroutine works on its
	// own copy of the attempt; this one belongs to the caller.
	go s.gradeFreeResponses(context.Background(), attempt.ID)

	return attempt, nil
}

// GetResults returns the attempt and whether background grading has
// finished.
func (s *ExamService) GetResults(ctx context.Context, attemptID string) (*ExamResults, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("%w: attempt %s", ErrNotFound, attemptID)
	}
	return &ExamResults{
		Attempt:         attempt,
		GradingComplete: attempt.Status == models.AttemptGraded,
	}, nil
}

// ListAttempts returns a learner's exam history.
func (s *ExamService) ListAttempts(ctx context.Context, userID string) ([]models.ExamAttempt, error) {
	return s.attempts.FindByUser(ctx, userID)
}

// PoolReport exposes per-stratum eligible counts for the composer blueprint.
func (s *ExamService) PoolReport(ctx context.Context) (map[string]int, error) {
	return s.composer.PoolReport(ctx)
}

// gradeFreeResponses runs the evaluation pipeline over every free-response
// answer, finalizes the blended result, and flips the attempt to GRADED. It
// loads its own copy of the attempt so grading never touches state shared
// with an in-flight request. A part-level evaluation failure is already
// absorbed by the pipeline; only persistence errors surface here, and they
// leave the attempt re-gradable.
func (s *ExamService) gradeFreeResponses(ctx context.Context, attemptID string) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		s.logger.Error("attempt lookup failed before grading",
			"attempt_id", attemptID, "error", err)
		return
	}

	questions := make(map[string]*models.Question, len(attempt.FreeResponses))
	for i := range attempt.FreeResponses {
		qid := attempt.FreeResponses[i].QuestionID
		q, err := s.content.FindByID(ctx, qid)
		if err != nil {
			s.logger.Error("free-response question lookup failed",
				"attempt_id", attempt.ID, "question_id", qid, "error", err)
			continue
		}
		questions[qid] = q
	}

	s.pipeline.GradeAll(ctx, attempt.FreeResponses, questions)

	for i := range attempt.FreeResponses {
		fr := &attempt.FreeResponses[i]
		for _, ps := range fr.PartScores {
			if ps.NeedsManual {
				s.publish("evaluation.failed", map[string]interface{}{
					"attempt_id":  attempt.ID,
					"question_id": fr.QuestionID,
					"part":        ps.Label,
				})
			}
		}
	}

	s.aggregator.Finalize(attempt)

	if err := s.attempts.SaveGradingResults(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrStaleAttempt) {
			// Another grader already finalized this attempt.
			return
		}
		s.logger.Error("failed to persist grading results",
			"attempt_id", attempt.ID, "error", err)
		return
	}

	s.publish("exam.graded", map[string]interface{}{
		"attempt_id":         attempt.ID,
		"user_id":            attempt.UserID,
		"blended_percentage": attempt.BlendedPercentage,
		"predicted_tier":     attempt.PredictedTier,
	})
}

func (s *ExamService) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, payload); err != nil {
		s.logger.Warn("event publish failed", "type", eventType, "error", err)
	}
}
