package session

import (
	"sync"

	"study-pulse/internal/domain"
	"study-pulse/internal/util"
)

// Store is the in-memory session registry. Nothing here outlives the
// process; score history is the backend's concern.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create validates the quiz, starts a session for it and registers it
// under a fresh ULID.
func (st *Store) Create(quiz *domain.Quiz) (*Session, error) {
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	sess := New(util.NewULID(), quiz)
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess, nil
}

// Get returns the session for an id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, domain.NewSessionNotFoundError(id)
	}
	return sess, nil
}

// Remove drops a session from the registry.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
