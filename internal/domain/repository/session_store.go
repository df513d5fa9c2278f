package repository

import (
	"context"
	"time"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
)

// SessionStore хранит незавершенные сессии между запросами.
// Lock обеспечивает единственного писателя для одной сессии:
// пока блокировка удерживается, повторный Lock возвращает apperrors.ErrConflict.
type SessionStore interface {
	Save(ctx context.Context, id string, session entity.QuizSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (entity.QuizSession, error)
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (unlock func(), err error)
}
