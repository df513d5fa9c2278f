package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/domain/repository"
)

// BankStats - наполненность банка вопросов
type BankStats struct {
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"by_category"`
}

// BankService наполняет локальный банк вопросов из внешнего источника
type BankService struct {
	bank     repository.QuestionBankRepository
	upstream repository.QuestionSource
}

// NewBankService создает сервис банка вопросов.
// upstream может быть nil, тогда импорт недоступен.
func NewBankService(bank repository.QuestionBankRepository, upstream repository.QuestionSource) *BankService {
	return &BankService{bank: bank, upstream: upstream}
}

// Import загружает вопросы из внешнего источника и сохраняет их в банк
func (s *BankService) Import(ctx context.Context, settings entity.QuizSettings) (int, error) {
	if s.upstream == nil {
		return 0, fmt.Errorf("%w: no upstream question source configured", ErrNoQuestions)
	}
	settings, err := entity.NewQuizSettings(settings.QuestionCount, settings.Category, settings.Difficulty)
	if err != nil {
		return 0, err
	}

	raw, err := s.upstream.FetchQuestions(ctx, settings)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch questions for import: %w", err)
	}
	if len(raw) == 0 {
		return 0, ErrNoQuestions
	}

	questions := make([]entity.BankQuestion, len(raw))
	for i, r := range raw {
		questions[i] = entity.NewBankQuestion(r)
	}
	if err := s.bank.CreateBatch(questions); err != nil {
		log.Printf("[BankService] Ошибка сохранения %d вопросов: %v", len(questions), err)
		return 0, err
	}

	log.Printf("[BankService] Импортировано %d вопросов (category=%q, difficulty=%q)",
		len(questions), settings.Category, settings.Difficulty)
	return len(questions), nil
}

// GetQuestion возвращает вопрос банка по ID
func (s *BankService) GetQuestion(id uint) (*entity.BankQuestion, error) {
	return s.bank.GetByID(id)
}

// DeleteQuestion удаляет вопрос из банка
func (s *BankService) DeleteQuestion(id uint) error {
	if err := s.bank.Delete(id); err != nil {
		return err
	}
	log.Printf("[BankService] Вопрос %d удален из банка", id)
	return nil
}

// Stats возвращает количество вопросов в банке, всего и по категориям
func (s *BankService) Stats() (*BankStats, error) {
	total, err := s.bank.Count()
	if err != nil {
		return nil, err
	}
	byCategory, err := s.bank.CountByCategory()
	if err != nil {
		return nil, err
	}
	return &BankStats{Total: total, ByCategory: byCategory}, nil
}
