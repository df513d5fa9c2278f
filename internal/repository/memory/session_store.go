// Package memory содержит хранилище сессий в памяти процесса (один инстанс API).
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

type storedSession struct {
	session   entity.QuizSession
	expiresAt time.Time
}

// SessionStore реализует repository.SessionStore на map с мьютексом
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
	locks    map[string]bool
	now      func() time.Time
}

// NewSessionStore создает пустое хранилище
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]storedSession),
		locks:    make(map[string]bool),
		now:      time.Now,
	}
}

// Save сохраняет сессию; ttl <= 0 - без срока
func (s *SessionStore) Save(_ context.Context, id string, session entity.QuizSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}
	s.sessions[id] = storedSession{session: session, expiresAt: expiresAt}
	return nil
}

// Get возвращает сессию, если она есть и не истекла
func (s *SessionStore) Get(_ context.Context, id string) (entity.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[id]
	if !ok {
		return entity.QuizSession{}, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	if !stored.expiresAt.IsZero() && s.now().After(stored.expiresAt) {
		delete(s.sessions, id)
		return entity.QuizSession{}, fmt.Errorf("session %s expired: %w", id, apperrors.ErrNotFound)
	}
	return stored.session, nil
}

// Delete удаляет сессию
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Lock помечает сессию занятой до вызова unlock
func (s *SessionStore) Lock(_ context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks[id] {
		return nil, fmt.Errorf("session %s is busy: %w", id, apperrors.ErrConflict)
	}
	s.locks[id] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locks, id)
			s.mu.Unlock()
		})
	}, nil
}

// Cleanup удаляет истекшие сессии, возвращает количество удаленных
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, stored := range s.sessions {
		if !stored.expiresAt.IsZero() && now.After(stored.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
