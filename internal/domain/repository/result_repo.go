package repository

import (
	"github.com/yourusername/trivia-engine/internal/domain/entity"
)

// ResultStats - агрегаты по сохраненным результатам
type ResultStats struct {
	Sessions     int64   `json:"sessions"`
	Completed    int64   `json:"completed"`
	Abandoned    int64   `json:"abandoned"`
	Perfect      int64   `json:"perfect"`
	Passing      int64   `json:"passing"`
	AverageRatio float64 `json:"average_ratio"`
}

// ResultRepository определяет методы для работы с результатами
type ResultRepository interface {
	SaveResult(result *entity.Result) error
	GetBySessionID(sessionID string) (*entity.Result, error)
	GetResults(limit, offset int) ([]entity.Result, int64, error)
	GetAllResults() ([]entity.Result, error)
	GetStats() (*ResultStats, error)
}
