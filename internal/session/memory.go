package session

import (
	"log/slog"
	"sync"

	"github.com/Somati-x/stroyhub-bot/internal/models"
)

// InMemoryStore keeps sessions in a map keyed by user identifier. Entries are
// private per user; the mutex only guards the map itself.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	slog.Debug("Creating in-memory session store")
	return &InMemoryStore{sessions: make(map[string]models.Session)}
}

// Get returns the stored session for the user, creating a fresh idle session
// on first access.
func (s *InMemoryStore) Get(userID string) (models.Session, error) {
	if userID == "" {
		return models.Session{}, models.ErrEmptyUserID
	}

	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		// Hand out a copy so callers cannot mutate the stored map in place.
		sess.Answers = sess.CloneAnswers()
		return sess, nil
	}

	sess = models.NewSession(userID)
	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()
	slog.Debug("InMemoryStore created fresh session", "userID", userID)
	sess.Answers = sess.CloneAnswers()
	return sess, nil
}

// Save atomically replaces the stored session.
func (s *InMemoryStore) Save(sess models.Session) error {
	if sess.UserID == "" {
		return models.ErrEmptyUserID
	}
	stored := sess
	stored.Answers = sess.CloneAnswers()

	s.mu.Lock()
	s.sessions[sess.UserID] = stored
	s.mu.Unlock()
	slog.Debug("InMemoryStore saved session", "userID", sess.UserID, "phase", sess.Phase, "stepIndex", sess.StepIndex)
	return nil
}

// Clear resets the user's session to a fresh idle one.
func (s *InMemoryStore) Clear(userID string) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	s.sessions[userID] = models.NewSession(userID)
	s.mu.Unlock()
	slog.Debug("InMemoryStore cleared session", "userID", userID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
