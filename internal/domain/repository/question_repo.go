package repository

import (
	"context"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
)

// QuestionSource поставляет сырые вопросы по настройкам викторины.
// Ядро не знает, откуда пришли данные.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, settings entity.QuizSettings) ([]entity.RawQuestion, error)
}

// QuestionBankRepository определяет методы для работы с банком вопросов
type QuestionBankRepository interface {
	QuestionSource

	CreateBatch(questions []entity.BankQuestion) error
	GetByID(id uint) (*entity.BankQuestion, error)
	Delete(id uint) error
	Count() (int64, error)
	CountByCategory() (map[string]int64, error)
}
