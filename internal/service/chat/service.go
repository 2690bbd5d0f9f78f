package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirex-ai/hirex/backend/internal/model/chat"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Service keeps every session's history in memory. Nothing survives a restart.
type Service struct {
	mu        sync.RWMutex
	sessions  map[string]chat.Session
	histories map[string]*chat.History
}

// NewService bootstraps the in-memory session store.
func NewService() *Service {
	return &Service{
		sessions:  make(map[string]chat.Session),
		histories: make(map[string]*chat.History),
	}
}

// CreateSession provisions an empty session.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.histories[session.ID] = chat.NewHistory()
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	if sessionID == "" {
		return chat.Session{}, ErrSessionRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// AppendTurns appends turns to the session history in one step, so readers
// never observe half of an exchange.
func (s *Service) AppendTurns(_ context.Context, sessionID string, turns ...chat.Turn) error {
	if sessionID == "" {
		return ErrSessionRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.histories[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	for i := range turns {
		turns[i].SessionID = sessionID
		if turns[i].CreatedAt.IsZero() {
			turns[i].CreatedAt = time.Now().UTC()
		}
	}
	history.Append(turns...)
	return nil
}

// Transcript returns the session's turns in display order.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Turn, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.histories[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return history.Turns(), nil
}

// Clear empties the session history while keeping the session alive.
func (s *Service) Clear(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.histories[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	history.Clear()
	return nil
}

// DeleteSession forgets a session and its history.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.histories, sessionID)
	return nil
}
