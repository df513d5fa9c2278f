package service

import (
	"log"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/domain/repository"
)

// ResultService предоставляет методы для работы с результатами
type ResultService struct {
	resultRepo repository.ResultRepository
}

// NewResultService создает новый сервис результатов
func NewResultService(resultRepo repository.ResultRepository) *ResultService {
	return &ResultService{resultRepo: resultRepo}
}

// GetResults возвращает страницу результатов (новые первыми) и общее количество
func (s *ResultService) GetResults(page, pageSize int) ([]entity.Result, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize

	results, total, err := s.resultRepo.GetResults(pageSize, offset)
	if err != nil {
		log.Printf("[ResultService] Ошибка при получении результатов (page %d, size %d): %v", page, pageSize, err)
		return nil, 0, err
	}
	return results, total, nil
}

// GetBySessionID возвращает итог конкретной сессии
func (s *ResultService) GetBySessionID(sessionID string) (*entity.Result, error) {
	return s.resultRepo.GetBySessionID(sessionID)
}

// GetAllResults возвращает все результаты, используется для экспорта
func (s *ResultService) GetAllResults() ([]entity.Result, error) {
	return s.resultRepo.GetAllResults()
}

// GetStats возвращает агрегированную статистику
func (s *ResultService) GetStats() (*repository.ResultStats, error) {
	stats, err := s.resultRepo.GetStats()
	if err != nil {
		log.Printf("[ResultService] Ошибка при подсчете статистики: %v", err)
		return nil, err
	}
	return stats, nil
}
