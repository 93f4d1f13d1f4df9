package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"assessment-service/internal/adaptive"
	"assessment-service/internal/id"
	"assessment-service/internal/mastery"
	"assessment-service/internal/models"
	"assessment-service/internal/selection"
	"assessment-service/internal/srs"
)

// PracticeService runs adaptive practice: it serves the next question at the
// learner's current tier and folds every answer into the progression record,
// the mastery score, and the spaced repetition schedule.
type PracticeService struct {
	content     ContentStore
	progression ProgressionStore
	answers     AnswerStore
	selector    *selection.Selector
	manager     *adaptive.Manager
	sessions    *SessionStore
	publisher   Publisher
	logger      *slog.Logger
}

func NewPracticeService(
	content ContentStore,
	progression ProgressionStore,
	answers AnswerStore,
	selector *selection.Selector,
	manager *adaptive.Manager,
	publisher Publisher,
	logger *slog.Logger,
) *PracticeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PracticeService{
		content:     content,
		progression: progression,
		answers:     answers,
		selector:    selector,
		manager:     manager,
		sessions:    NewSessionStore(),
		publisher:   publisher,
		logger:      logger,
	}
}

// AnswerOutcome is what the learner sees after submitting one answer.
type AnswerOutcome struct {
	IsCorrect    bool          `json:"is_correct"`
	Explanation  string        `json:"explanation,omitempty"`
	Mastery      int           `json:"mastery"`
	Tier         adaptive.Tier `json:"tier"`
	Move         adaptive.Move `json:"move"`
	IntervalDays int           `json:"interval_days"`
	NextReview   time.Time     `json:"next_review"`
}

// SessionSummary is returned when a practice session ends.
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Answered  int    `json:"answered"`
	Correct   int    `json:"correct"`
}

// StartPractice opens a practice session. An empty unitID means mixed-unit
// practice, which gets its own session-scoped progression state. No
// progression record is created until the first answer lands.
func (s *PracticeService) StartPractice(userID, unitID, topicID string) *PracticeSession {
	session := NewPracticeSession(id.GenerateID(), userID, unitID, topicID)
	s.sessions.Put(session)
	return session
}

// NextQuestion serves one question at the session's current tier. A nil
// question with nil error means the eligible pool is exhausted and the
// session is complete.
func (s *PracticeService) NextQuestion(ctx context.Context, sessionID string) (*models.Question, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}

	tier, err := s.servingTier(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.selector.NextQuestion(ctx, session.UnitID, session.TopicID, tier, session.AnsweredIDs)
}

// SubmitAnswer grades the answer against the key, updates the persistent
// progression record for the question's unit, updates the session-scoped
// state for mixed practice, and appends the answer record.
func (s *PracticeService) SubmitAnswer(ctx context.Context, sessionID, questionID, answer string, timeSpentSeconds int) (*AnswerOutcome, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}

	question, err := s.content.FindByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("%w: question %s", ErrNotFound, questionID)
	}

	isCorrect := question.CorrectAnswer != "" && answer == question.CorrectAnswer
	now := time.Now().UTC()

	record, err := s.progression.GetOrCreate(ctx, session.UserID, question.UnitID, session.TopicID)
	if err != nil {
		return nil, err
	}
	decision := s.applyAnswer(record, isCorrect, timeSpentSeconds, now)
	if err := s.progression.Save(ctx, record); err != nil {
		return nil, err
	}

	// Mixed practice also advances the session-scoped state, which is what
	// drives the served difficulty across units.
	if session.Mixed {
		s.applyAnswer(session.State, isCorrect, timeSpentSeconds, now)
	}

	if err := s.answers.Create(ctx, &models.PracticeAnswer{
		ID:               id.GenerateID(),
		SessionID:        session.ID,
		UserID:           session.UserID,
		QuestionID:       question.ID,
		UnitID:           question.UnitID,
		TopicID:          session.TopicID,
		Answer:           answer,
		IsCorrect:        isCorrect,
		TimeSpentSeconds: timeSpentSeconds,
		AnsweredAt:       now,
	}); err != nil {
		return nil, err
	}

	session.AnsweredIDs = append(session.AnsweredIDs, question.ID)
	if isCorrect {
		session.Correct++
	}

	s.publish("practice.answer", map[string]interface{}{
		"session_id":  session.ID,
		"user_id":     session.UserID,
		"question_id": question.ID,
		"correct":     isCorrect,
		"tier":        record.Tier,
		"move":        decision.Move,
	})

	return &AnswerOutcome{
		IsCorrect:    isCorrect,
		Explanation:  question.Explanation,
		Mastery:      record.Mastery,
		Tier:         adaptive.Tier(record.Tier),
		Move:         decision.Move,
		IntervalDays: record.IntervalDays,
		NextReview:   record.NextReview,
	}, nil
}

// EndSession destroys the session state and returns a summary.
func (s *PracticeService) EndSession(sessionID string) (*SessionSummary, error) {
	session, ok := s.sessions.Delete(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	return &SessionSummary{
		SessionID: session.ID,
		Answered:  len(session.AnsweredIDs),
		Correct:   session.Correct,
	}, nil
}

// Progress lists the learner's progression records, optionally scoped to one
// unit.
func (s *PracticeService) Progress(ctx context.Context, userID, unitID string) ([]models.ProgressionRecord, error) {
	return s.progression.FindByUser(ctx, userID, unitID)
}

// DueReviews lists scopes whose spaced review date has arrived.
func (s *PracticeService) DueReviews(ctx context.Context, userID string) ([]models.ProgressionRecord, error) {
	return s.progression.FindDue(ctx, userID, time.Now().UTC())
}

// servingTier resolves the difficulty to serve next. Mixed sessions use the
// session-scoped state; single-unit sessions read the persistent record but
// do not create one (records appear lazily on first answer).
func (s *PracticeService) servingTier(ctx context.Context, session *PracticeSession) (adaptive.Tier, error) {
	if session.Mixed {
		return adaptive.Tier(session.State.Tier), nil
	}
	records, err := s.progression.FindByUser(ctx, session.UserID, session.UnitID)
	if err != nil {
		return adaptive.InitialTier(), err
	}
	for _, rec := range records {
		if rec.TopicID == session.TopicID {
			return adaptive.Tier(rec.Tier), nil
		}
	}
	return adaptive.InitialTier(), nil
}

// applyAnswer folds one answer into a progression record: counters, trailing
// window, mastery, spaced repetition schedule, then the tier decision. The
// decision sees the post-answer signal.
func (s *PracticeService) applyAnswer(record *models.ProgressionRecord, isCorrect bool, timeSpentSeconds int, now time.Time) adaptive.Decision {
	record.TotalAttempts++
	if isCorrect {
		record.CorrectAttempts++
		record.ConsecutiveCorrect++
		record.ConsecutiveWrong = 0
	} else {
		record.ConsecutiveWrong++
		record.ConsecutiveCorrect = 0
	}
	record.PushOutcome(isCorrect)

	record.Mastery = mastery.Compute(record.Mastery, record.CorrectAttempts, record.TotalAttempts, isCorrect)

	quality := srs.Quality(isCorrect, timeSpentSeconds, record.AvgTimeSeconds)
	review := srs.NextReview(record.IntervalDays, record.EaseFactor, quality, now)
	record.IntervalDays = review.IntervalDays
	record.EaseFactor = review.EaseFactor
	record.NextReview = review.NextReview

	if timeSpentSeconds > 0 {
		record.AvgTimeSeconds += (float64(timeSpentSeconds) - record.AvgTimeSeconds) / float64(record.TotalAttempts)
	}

	decision := s.manager.Next(adaptive.Tier(record.Tier), adaptive.Signal{
		IsCorrect:          isCorrect,
		ConsecutiveCorrect: record.ConsecutiveCorrect,
		ConsecutiveWrong:   record.ConsecutiveWrong,
		Mastery:            record.Mastery,
		RecentAccuracy:     record.RecentAccuracy(),
		TotalAttempts:      record.TotalAttempts,
	})
	record.Tier = string(decision.NextTier)
	return decision
}

func (s *PracticeService) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, payload); err != nil {
		s.logger.Warn("event publish failed", "type", eventType, "error", err)
	}
}
