package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"assessment-service/internal/models"
	"assessment-service/internal/repository"
)

// In-memory store implementations mirroring the mongo-backed repositories,
// including the guarded attempt transitions.

type memContent struct {
	questions []models.Question
}

func (m *memContent) FindByID(_ context.Context, id string) (*models.Question, error) {
	for i := range m.questions {
		if m.questions[i].ID == id {
			q := m.questions[i]
			return &q, nil
		}
	}
	return nil, errors.New("question not found")
}

func (m *memContent) ListEligible(_ context.Context, unitID, topicID, difficulty string, excludeIDs []string) ([]models.Question, error) {
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []models.Question
	for _, q := range m.questions {
		if q.Type != models.QuestionTypeObjective || !q.IsEligible() || excluded[q.ID] {
			continue
		}
		if unitID != "" && q.UnitID != unitID {
			continue
		}
		if topicID != "" && q.TopicID != topicID {
			continue
		}
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (m *memContent) ListFreeResponseByCategory(_ context.Context, category string) ([]models.Question, error) {
	var out []models.Question
	for _, q := range m.questions {
		if q.Type == models.QuestionTypeFreeResponse && q.IsEligible() && q.Category == category {
			out = append(out, q)
		}
	}
	return out, nil
}

type progressionKey struct {
	userID, unitID, topicID string
}

type memProgression struct {
	mu      sync.Mutex
	records map[progressionKey]models.ProgressionRecord
}

func newMemProgression() *memProgression {
	return &memProgression{records: make(map[progressionKey]models.ProgressionRecord)}
}

func (m *memProgression) GetOrCreate(_ context.Context, userID, unitID, topicID string) (*models.ProgressionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressionKey{userID, unitID, topicID}
	if rec, ok := m.records[key]; ok {
		out := rec
		return &out, nil
	}
	rec := models.ProgressionRecord{
		UserID:     userID,
		UnitID:     unitID,
		TopicID:    topicID,
		Tier:       "easy",
		EaseFactor: 2.5,
		CreatedAt:  time.Now().UTC(),
	}
	m.records[key] = rec
	out := rec
	return &out, nil
}

func (m *memProgression) Save(_ context.Context, record *models.ProgressionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressionKey{record.UserID, record.UnitID, record.TopicID}
	m.records[key] = *record
	return nil
}

func (m *memProgression) FindByUser(_ context.Context, userID, unitID string) ([]models.ProgressionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ProgressionRecord
	for key, rec := range m.records {
		if key.userID != userID {
			continue
		}
		if unitID != "" && key.unitID != unitID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *memProgression) FindDue(_ context.Context, userID string, before time.Time) ([]models.ProgressionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ProgressionRecord
	for key, rec := range m.records {
		if key.userID == userID && !rec.NextReview.IsZero() && !rec.NextReview.After(before) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memAnswers struct {
	mu      sync.Mutex
	answers []models.PracticeAnswer
}

func (m *memAnswers) Create(_ context.Context, answer *models.PracticeAnswer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, *answer)
	return nil
}

func (m *memAnswers) FindBySession(_ context.Context, sessionID string) ([]models.PracticeAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PracticeAnswer
	for _, a := range m.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memAttempts struct {
	mu       sync.Mutex
	attempts map[string]*models.ExamAttempt
}

func newMemAttempts() *memAttempts {
	return &memAttempts{attempts: make(map[string]*models.ExamAttempt)}
}

func copyAttempt(a *models.ExamAttempt) *models.ExamAttempt {
	out := *a
	out.ObjectiveResponses = append([]models.ObjectiveResponse(nil), a.ObjectiveResponses...)
	out.FreeResponses = make([]models.FreeResponseAnswer, len(a.FreeResponses))
	for i, fr := range a.FreeResponses {
		frCopy := fr
		frCopy.Parts = append([]models.PartResponse(nil), fr.Parts...)
		frCopy.PartScores = append([]models.PartScore(nil), fr.PartScores...)
		out.FreeResponses[i] = frCopy
	}
	out.UnitBreakdown = append([]models.UnitBreakdown(nil), a.UnitBreakdown...)
	out.Strengths = append([]string(nil), a.Strengths...)
	out.Weaknesses = append([]string(nil), a.Weaknesses...)
	out.Recommendations = append([]string(nil), a.Recommendations...)
	return &out
}

func (m *memAttempts) Create(_ context.Context, attempt *models.ExamAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[attempt.ID] = copyAttempt(attempt)
	return nil
}

func (m *memAttempts) FindByID(_ context.Context, id string) (*models.ExamAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt, ok := m.attempts[id]
	if !ok {
		return nil, errors.New("attempt not found")
	}
	return copyAttempt(attempt), nil
}

func (m *memAttempts) FindByUser(_ context.Context, userID string) ([]models.ExamAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ExamAttempt
	for _, attempt := range m.attempts {
		if attempt.UserID == userID {
			out = append(out, *copyAttempt(attempt))
		}
	}
	return out, nil
}

func (m *memAttempts) SaveObjectiveResponse(_ context.Context, attemptID string, resp models.ObjectiveResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt, ok := m.attempts[attemptID]
	if !ok || attempt.Status != models.AttemptInProgress || attempt.SubmittedAt != nil {
		return repository.ErrStaleAttempt
	}
	for i := range attempt.ObjectiveResponses {
		if attempt.ObjectiveResponses[i].QuestionID == resp.QuestionID {
			resp.UnitID = attempt.ObjectiveResponses[i].UnitID
			resp.Sequence = attempt.ObjectiveResponses[i].Sequence
			attempt.ObjectiveResponses[i] = resp
			return nil
		}
	}
	return repository.ErrUnknownQuestion
}

func (m *memAttempts) SaveFreeResponseSubmission(_ context.Context, attemptID, questionID, submission string, parts []models.PartResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt, ok := m.attempts[attemptID]
	if !ok || attempt.Status != models.AttemptInProgress || attempt.SubmittedAt != nil {
		return repository.ErrStaleAttempt
	}
	for i := range attempt.FreeResponses {
		if attempt.FreeResponses[i].QuestionID == questionID {
			attempt.FreeResponses[i].Submission = submission
			attempt.FreeResponses[i].Parts = append([]models.PartResponse(nil), parts...)
			return nil
		}
	}
	return repository.ErrUnknownQuestion
}

func (m *memAttempts) MarkSubmitted(_ context.Context, attempt *models.ExamAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.attempts[attempt.ID]
	if !ok || stored.Status != models.AttemptInProgress || stored.SubmittedAt != nil {
		return repository.ErrStaleAttempt
	}
	now := time.Now().UTC()
	stored.SubmittedAt = &now
	stored.ObjectiveCorrect = attempt.ObjectiveCorrect
	stored.ObjectiveTotal = attempt.ObjectiveTotal
	stored.ObjectivePercentage = attempt.ObjectivePercentage
	attempt.SubmittedAt = &now
	return nil
}

func (m *memAttempts) SaveGradingResults(_ context.Context, attempt *models.ExamAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.attempts[attempt.ID]
	if !ok || stored.Status != models.AttemptInProgress {
		return repository.ErrStaleAttempt
	}
	updated := copyAttempt(attempt)
	updated.Status = models.AttemptGraded
	now := time.Now().UTC()
	updated.GradedAt = &now
	updated.SubmittedAt = stored.SubmittedAt
	m.attempts[attempt.ID] = updated
	return nil
}

// memPublisher records published events for assertions.
type memPublisher struct {
	mu     sync.Mutex
	events []string
}

func (m *memPublisher) Publish(eventType string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
	return nil
}

func (m *memPublisher) has(eventType string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e == eventType {
			return true
		}
	}
	return false
}
