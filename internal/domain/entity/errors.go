package entity

import (
	"fmt"

	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

// Ошибки нарушения контракта ядра викторины.
// Это ошибки программиста, а не пользователя: их не ретраят.
var (
	// ErrInvalidQuestionCount - количество вопросов в настройках <= 0
	ErrInvalidQuestionCount = fmt.Errorf("%w: question count must be positive", apperrors.ErrValidation)

	// ErrInvalidOutcome - итог с total < 1, score < 0 или score > total
	ErrInvalidOutcome = fmt.Errorf("%w: invalid quiz outcome", apperrors.ErrValidation)

	// ErrNoCurrentQuestion - обращение к текущему вопросу завершенной сессии
	ErrNoCurrentQuestion = fmt.Errorf("%w: quiz session has no current question", apperrors.ErrConflict)

	// ErrInvalidSnapshot - снимок сессии нарушает инварианты step/score
	ErrInvalidSnapshot = fmt.Errorf("%w: invalid quiz session snapshot", apperrors.ErrValidation)
)
