package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

// DefaultLockTTL ограничивает время удержания блокировки, если процесс упал, не сняв ее
const DefaultLockTTL = 5 * time.Second

// SessionStore хранит снимки сессий в Redis (реализует repository.SessionStore)
type SessionStore struct {
	cache    repository.CacheRepository
	lockTTL  time.Duration
	newToken func() string
}

// NewSessionStore создает хранилище сессий поверх CacheRepository
func NewSessionStore(cache repository.CacheRepository) *SessionStore {
	return &SessionStore{cache: cache, lockTTL: DefaultLockTTL, newToken: uuid.NewString}
}

func sessionKey(id string) string { return fmt.Sprintf("quiz:session:%s", id) }
func lockKey(id string) string    { return fmt.Sprintf("quiz:session:%s:lock", id) }

// Save сохраняет снимок сессии с TTL
func (s *SessionStore) Save(ctx context.Context, id string, session entity.QuizSession, ttl time.Duration) error {
	if err := s.cache.SetJSON(ctx, sessionKey(id), session.Snapshot(), ttl); err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return nil
}

// Get читает и восстанавливает сессию
func (s *SessionStore) Get(ctx context.Context, id string) (entity.QuizSession, error) {
	var snap entity.SessionSnapshot
	if err := s.cache.GetJSON(ctx, sessionKey(id), &snap); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return entity.QuizSession{}, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
		}
		return entity.QuizSession{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return entity.RestoreQuizSession(snap)
}

// Delete удаляет сессию
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKey(id))
}

// Lock захватывает блокировку сессии через SETNX.
// Значение ключа - токен владельца, снять блокировку может только он.
func (s *SessionStore) Lock(ctx context.Context, id string) (func(), error) {
	key := lockKey(id)
	token := s.newToken()
	acquired, err := s.cache.SetNX(ctx, key, token, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session %s: %w", id, err)
	}
	if !acquired {
		return nil, fmt.Errorf("session %s is busy: %w", id, apperrors.ErrConflict)
	}

	return func() {
		// Снимаем блокировку даже если контекст запроса уже отменен
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		released, err := s.cache.DeleteIfEquals(releaseCtx, key, token)
		if err != nil {
			log.Printf("[SessionStore] WARNING: Не удалось снять блокировку сессии %s: %v", id, err)
			return
		}
		if !released {
			log.Printf("[SessionStore] WARNING: Блокировка сессии %s истекла до снятия", id)
		}
	}, nil
}
