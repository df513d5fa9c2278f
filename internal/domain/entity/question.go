package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Словарь булевых вопросов
const (
	AnswerTrue  = "True"
	AnswerFalse = "False"
)

// Типы вопросов (метки источника, ядро их не интерпретирует)
const (
	QuestionTypeMultiple = "multiple"
	QuestionTypeBoolean  = "boolean"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// QuestionMeta - необязательные метки источника
type QuestionMeta struct {
	Type       string `json:"type,omitempty"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Question - текст вопроса и набор вариантов ответа
type Question struct {
	text    string
	answers AnswerSet
	meta    QuestionMeta
}

// NewQuestion создает вопрос, перемешивая варианты через rng
func NewQuestion(text, correct string, incorrects []string, rng Rand) Question {
	return Question{
		text:    text,
		answers: NewAnswerSet(correct, incorrects, rng),
	}
}

// NewTrueQuestion создает булев вопрос с правильным ответом "True"
func NewTrueQuestion(text string, rng Rand) Question {
	q := NewQuestion(text, AnswerTrue, []string{AnswerFalse}, rng)
	q.meta.Type = QuestionTypeBoolean
	return q
}

// NewFalseQuestion создает булев вопрос с правильным ответом "False"
func NewFalseQuestion(text string, rng Rand) Question {
	q := NewQuestion(text, AnswerFalse, []string{AnswerTrue}, rng)
	q.meta.Type = QuestionTypeBoolean
	return q
}

// WithMeta возвращает копию вопроса с метками источника
func (q Question) WithMeta(meta QuestionMeta) Question {
	q.meta = meta
	return q
}

// Text возвращает текст вопроса
func (q Question) Text() string { return q.text }

// Answers возвращает набор вариантов
func (q Question) Answers() AnswerSet { return q.answers }

// Meta возвращает метки источника
func (q Question) Meta() QuestionMeta { return q.meta }

// IsCorrect проверяет, является ли выбранный вариант правильным.
// Индекс - каноничный способ сравнения.
func (q Question) IsCorrect(index int) bool {
	return q.answers.IsValidIndex(index) && index == q.answers.correctIndex
}

// IsCorrectAnswer сравнивает текст с правильным ответом (с учетом регистра).
// При совпадающих по тексту вариантах результат неоднозначен, используйте IsCorrect.
func (q Question) IsCorrectAnswer(choice string) bool {
	return q.answers.Len() > 0 && choice == q.answers.Correct()
}

// IndexOf возвращает позицию первого варианта с таким текстом или -1
func (q Question) IndexOf(choice string) int {
	for i, opt := range q.answers.options {
		if opt == choice {
			return i
		}
	}
	return -1
}

// IsTrue сообщает, что правильный ответ булева вопроса - "True"
func (q Question) IsTrue() bool {
	return q.answers.Correct() == AnswerTrue
}

// IsFalse сообщает, что правильный ответ булева вопроса - "False"
func (q Question) IsFalse() bool {
	return q.answers.Correct() == AnswerFalse
}
