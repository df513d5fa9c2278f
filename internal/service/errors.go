package service

import (
	"fmt"

	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

// Ошибки сервисного слоя; каждая оборачивает общую ошибку из apperrors
var (
	ErrTooManyQuestions = fmt.Errorf("%w: question count exceeds limit", apperrors.ErrValidation)
	ErrInvalidChoice    = fmt.Errorf("%w: choice is out of range", apperrors.ErrValidation)
	ErrNoQuestions      = fmt.Errorf("%w: question source returned no questions", apperrors.ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("%w: session not found or expired", apperrors.ErrNotFound)
)
