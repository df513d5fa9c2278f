package entity

import (
	"time"
)

// Статусы завершения сессии
const (
	ResultStatusCompleted = "completed"
	ResultStatusAbandoned = "abandoned"
)

// Result представляет сохраненный итог сыгранной сессии
type Result struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"size:36;not null;uniqueIndex" json:"session_id"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	Total       int       `gorm:"not null;default:0" json:"total"`
	Answered    int       `gorm:"not null;default:0" json:"answered"`
	Ratio       float64   `gorm:"not null;default:0" json:"ratio"`
	IsPerfect   bool      `gorm:"not null;default:false" json:"is_perfect"`
	IsPassing   bool      `gorm:"not null;default:false" json:"is_passing"`
	Status      string    `gorm:"size:20;not null;default:'completed';index" json:"status"`
	Category    string    `gorm:"size:100;not null;default:''" json:"category"`
	Difficulty  string    `gorm:"size:20;not null;default:''" json:"difficulty"`
	CompletedAt time.Time `gorm:"not null;index" json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Result) TableName() string {
	return "results"
}

// NewResult переносит итог и метаданные сессии в запись для хранения
func NewResult(sessionID string, outcome QuizOutcome, answered int, settings QuizSettings, status string, threshold float64, completedAt time.Time) *Result {
	return &Result{
		SessionID:   sessionID,
		Score:       outcome.Score(),
		Total:       outcome.Total(),
		Answered:    answered,
		Ratio:       outcome.Ratio(),
		IsPerfect:   outcome.IsPerfect(),
		IsPassing:   outcome.IsPassingAt(threshold),
		Status:      status,
		Category:    settings.Category,
		Difficulty:  settings.Difficulty,
		CompletedAt: completedAt,
	}
}

// IsAbandoned проверяет, была ли сессия прервана досрочно
func (r *Result) IsAbandoned() bool {
	return r.Status == ResultStatusAbandoned
}
