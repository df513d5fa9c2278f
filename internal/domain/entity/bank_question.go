package entity

import (
	"time"
)

// BankQuestion - вопрос из собственного банка вопросов (PostgreSQL)
type BankQuestion struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Type       string      `gorm:"size:20;not null;default:'multiple'" json:"type"`
	Category   string      `gorm:"size:100;not null;default:'';index" json:"category"`
	Difficulty string      `gorm:"size:20;not null;default:'';index" json:"difficulty"`
	Text       string      `gorm:"size:500;not null" json:"text"`
	Correct    string      `gorm:"size:255;not null" json:"correct_answer"`
	Incorrect  StringArray `gorm:"type:jsonb;not null" json:"incorrect_answers"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (BankQuestion) TableName() string {
	return "bank_questions"
}

// ToRaw переводит запись банка в формат источника вопросов
func (b *BankQuestion) ToRaw() RawQuestion {
	incorrect := make([]string, len(b.Incorrect))
	copy(incorrect, b.Incorrect)
	return RawQuestion{
		Type:       b.Type,
		Category:   b.Category,
		Difficulty: b.Difficulty,
		Prompt:     b.Text,
		Correct:    b.Correct,
		Incorrect:  incorrect,
	}
}

// NewBankQuestion создает запись банка из сырого вопроса
func NewBankQuestion(raw RawQuestion) BankQuestion {
	qType := raw.Type
	if qType == "" {
		qType = QuestionTypeMultiple
	}
	incorrect := make(StringArray, len(raw.Incorrect))
	copy(incorrect, raw.Incorrect)
	return BankQuestion{
		Type:       qType,
		Category:   raw.Category,
		Difficulty: raw.Difficulty,
		Text:       raw.Prompt,
		Correct:    raw.Correct,
		Incorrect:  incorrect,
	}
}
