package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/linguasigna/signaling-server/internal/types"
	"github.com/teris-io/shortid"
)

// SessionRegistry owns translation-session records. Sessions have a
// lifecycle independent from rooms and are never tied to room
// membership.
type SessionRegistry interface {
	StartSession(userId, language string) (types.Session, error)
	GetSession(sessionId string) (types.Session, error)
	ListSessionsFor(userId string) []types.Session
	RecordTranslationEvent(sessionId string) error
	CountActive() int
}

type InMemorySessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*types.Session
}

func NewSessionRegistry() *InMemorySessionRegistry {
	return &InMemorySessionRegistry{
		sessions: make(map[string]*types.Session),
	}
}

// StartSession creates a new active session. The language is expected
// to be validated by the caller.
func (s *InMemorySessionRegistry) StartSession(userId, language string) (types.Session, error) {
	if userId == "" || language == "" {
		return types.Session{}, fmt.Errorf("user id and language are required: %w", ErrInvalidArgument)
	}

	id, err := shortid.Generate()
	if err != nil {
		return types.Session{}, fmt.Errorf("generate session id: %w", err)
	}

	session := &types.Session{
		Id:        id,
		UserId:    userId,
		Language:  language,
		Active:    true,
		StartTime: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Id] = session

	return *session, nil
}

func (s *InMemorySessionRegistry) GetSession(sessionId string) (types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionId]
	if !ok {
		return types.Session{}, fmt.Errorf("session %q: %w", sessionId, ErrSessionNotFound)
	}

	return *session, nil
}

// ListSessionsFor returns all sessions owned by userId, active and
// historical.
func (s *InMemorySessionRegistry) ListSessionsFor(userId string) []types.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]types.Session, 0)
	for _, session := range s.sessions {
		if session.UserId == userId {
			sessions = append(sessions, *session)
		}
	}

	return sessions
}

// RecordTranslationEvent increments the session's running count of
// translation events. It has no effect on room membership.
func (s *InMemorySessionRegistry) RecordTranslationEvent(sessionId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionId]
	if !ok {
		return fmt.Errorf("session %q: %w", sessionId, ErrSessionNotFound)
	}

	session.TranslationsCount++
	return nil
}

func (s *InMemorySessionRegistry) CountActive() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for _, session := range s.sessions {
		if session.Active {
			n++
		}
	}

	return n
}
