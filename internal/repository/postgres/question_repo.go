package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

// QuestionBankRepo реализует repository.QuestionBankRepository
type QuestionBankRepo struct {
	db *gorm.DB
}

// NewQuestionBankRepo создает новый репозиторий банка вопросов
func NewQuestionBankRepo(db *gorm.DB) *QuestionBankRepo {
	return &QuestionBankRepo{db: db}
}

// CreateBatch создает пакет вопросов
func (r *QuestionBankRepo) CreateBatch(questions []entity.BankQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Устанавливаем кодировку UTF-8 внутри транзакции
		if err := tx.Exec("SET CLIENT_ENCODING TO 'UTF8'").Error; err != nil {
			return err
		}
		return tx.Create(&questions).Error
	})
}

// GetByID возвращает вопрос по ID
func (r *QuestionBankRepo) GetByID(id uint) (*entity.BankQuestion, error) {
	var question entity.BankQuestion
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// Delete удаляет вопрос
func (r *QuestionBankRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.BankQuestion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FetchQuestions возвращает случайные вопросы с учетом категории и сложности.
// Пустая метка означает "любая".
func (r *QuestionBankRepo) FetchQuestions(ctx context.Context, settings entity.QuizSettings) ([]entity.RawQuestion, error) {
	var questions []entity.BankQuestion

	query := r.db.WithContext(ctx).Model(&entity.BankQuestion{})
	if settings.Category != "" {
		query = query.Where("category = ?", settings.Category)
	}
	if settings.Difficulty != "" {
		query = query.Where("difficulty = ?", settings.Difficulty)
	}

	if err := query.Order("RANDOM()").Limit(settings.QuestionCount).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to select bank questions: %w", err)
	}

	// Банк не может выдать нужное количество - то же, что "no results" у внешнего источника
	if len(questions) < settings.QuestionCount {
		return nil, fmt.Errorf("%w: bank has %d of %d requested questions", apperrors.ErrNotFound, len(questions), settings.QuestionCount)
	}

	raw := make([]entity.RawQuestion, len(questions))
	for i := range questions {
		raw[i] = questions[i].ToRaw()
	}
	return raw, nil
}

// Count возвращает общее количество вопросов в банке
func (r *QuestionBankRepo) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entity.BankQuestion{}).Count(&total).Error
	return total, err
}

// CountByCategory возвращает количество вопросов по категориям
func (r *QuestionBankRepo) CountByCategory() (map[string]int64, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	err := r.db.Model(&entity.BankQuestion{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]int64, len(rows))
	for _, row := range rows {
		byCategory[row.Category] = row.Count
	}
	return byCategory, nil
}
