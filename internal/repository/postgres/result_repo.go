package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/domain/repository"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

// ResultRepo реализует repository.ResultRepository
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo создает новый репозиторий результатов
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// SaveResult сохраняет итог сессии
func (r *ResultRepo) SaveResult(result *entity.Result) error {
	return r.db.Create(result).Error
}

// GetBySessionID возвращает итог конкретной сессии
func (r *ResultRepo) GetBySessionID(sessionID string) (*entity.Result, error) {
	var result entity.Result
	err := r.db.Where("session_id = ?", sessionID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// GetResults возвращает результаты (новые первыми) с пагинацией и общим количеством
func (r *ResultRepo) GetResults(limit, offset int) ([]entity.Result, int64, error) {
	var results []entity.Result
	var total int64

	// Используем транзакцию для согласованности чтения данных и общего количества
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Result{}).Count(&total).Error; err != nil {
			return err
		}
		return tx.Order("completed_at DESC, id DESC").
			Limit(limit).
			Offset(offset).
			Find(&results).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// GetAllResults возвращает ВСЕ результаты (для экспорта)
func (r *ResultRepo) GetAllResults() ([]entity.Result, error) {
	var results []entity.Result
	// пустой слайс - валидный результат
	err := r.db.Order("completed_at DESC, id DESC").Find(&results).Error
	return results, err
}

// GetStats считает агрегаты одним запросом
func (r *ResultRepo) GetStats() (*repository.ResultStats, error) {
	var stats repository.ResultStats
	err := r.db.Model(&entity.Result{}).
		Select(`COUNT(*) AS sessions,
			COUNT(*) FILTER (WHERE status = ?) AS completed,
			COUNT(*) FILTER (WHERE status = ?) AS abandoned,
			COUNT(*) FILTER (WHERE is_perfect AND total > 0) AS perfect,
			COUNT(*) FILTER (WHERE is_passing) AS passing,
			COALESCE(AVG(ratio), 0) AS average_ratio`,
			entity.ResultStatusCompleted, entity.ResultStatusAbandoned).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
