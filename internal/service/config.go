package service

import (
	"time"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
)

// QuizConfig содержит настройки раздачи и хранения сессий
type QuizConfig struct {
	DefaultQuestionCount int           // Сколько вопросов, если клиент не указал
	MaxQuestionCount     int           // Максимум вопросов в одной сессии
	PassThreshold        float64       // Доля правильных ответов для зачета
	SessionTTL           time.Duration // Время жизни незавершенной сессии
}

// DefaultQuizConfig возвращает конфигурацию по умолчанию
func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		DefaultQuestionCount: 10,
		MaxQuestionCount:     50,
		PassThreshold:        entity.DefaultPassThreshold,
		SessionTTL:           30 * time.Minute,
	}
}

// normalized подставляет значения по умолчанию вместо нулевых
func (c QuizConfig) normalized() QuizConfig {
	def := DefaultQuizConfig()
	if c.DefaultQuestionCount <= 0 {
		c.DefaultQuestionCount = def.DefaultQuestionCount
	}
	if c.MaxQuestionCount <= 0 {
		c.MaxQuestionCount = def.MaxQuestionCount
	}
	if c.PassThreshold <= 0 || c.PassThreshold > 1 {
		c.PassThreshold = def.PassThreshold
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = def.SessionTTL
	}
	return c
}
