package service

import (
	"sync"
	"time"

	"assessment-service/internal/adaptive"
	"assessment-service/internal/models"
	"assessment-service/internal/srs"
)

// PracticeSession is the ephemeral state of one practice run. For mixed-unit
// practice (empty UnitID) the session carries its own progression state,
// since no single per-unit record can represent the served difficulty across
// units. Session state is advisory; persistent records remain authoritative.
type PracticeSession struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	UnitID  string    `json:"unit_id,omitempty"`
	TopicID string    `json:"topic_id,omitempty"`
	Mixed   bool      `json:"mixed"`
	Started time.Time `json:"started"`

	// Session-scoped progression, used only when Mixed.
	State *models.ProgressionRecord `json:"state,omitempty"`

	AnsweredIDs []string `json:"answered_ids"`
	Correct     int      `json:"correct"`
}

// NewPracticeSession initializes session state at the bottom tier.
func NewPracticeSession(id, userID, unitID, topicID string) *PracticeSession {
	mixed := unitID == ""
	s := &PracticeSession{
		ID:      id,
		UserID:  userID,
		UnitID:  unitID,
		TopicID: topicID,
		Mixed:   mixed,
		Started: time.Now().UTC(),
	}
	if mixed {
		s.State = &models.ProgressionRecord{
			UserID:     userID,
			Tier:       string(adaptive.InitialTier()),
			EaseFactor: srs.InitialEaseFactor,
		}
	}
	return s
}

// SessionStore holds live practice sessions in process memory. Sessions are
// not expected to see concurrent requests; if they do, last write wins.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*PracticeSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*PracticeSession)}
}

func (s *SessionStore) Put(session *PracticeSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *SessionStore) Get(id string) (*PracticeSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Delete removes a session, returning it for a final summary.
func (s *SessionStore) Delete(id string) (*PracticeSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	return session, ok
}
