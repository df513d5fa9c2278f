package entity

import "fmt"

// Метки сложности, которые понимают известные источники вопросов
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// QuizSettings - параметры раздачи вопросов.
// Category и Difficulty - непрозрачные метки, пустая строка означает "любая".
type QuizSettings struct {
	QuestionCount int    `json:"question_count"`
	Category      string `json:"category,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
}

// NewQuizSettings проверяет количество вопросов и собирает настройки
func NewQuizSettings(questionCount int, category, difficulty string) (QuizSettings, error) {
	if questionCount <= 0 {
		return QuizSettings{}, fmt.Errorf("%w: got %d", ErrInvalidQuestionCount, questionCount)
	}
	return QuizSettings{
		QuestionCount: questionCount,
		Category:      category,
		Difficulty:    difficulty,
	}, nil
}

// RawQuestion - данные вопроса в том виде, в каком их отдает источник
type RawQuestion struct {
	Type       string   `json:"type"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Prompt     string   `json:"question"`
	Correct    string   `json:"correct_answer"`
	Incorrect  []string `json:"incorrect_answers"`
}

// ToQuestion строит вопрос ядра. Булевы вопросы собираются через True/False конструкторы.
func (r RawQuestion) ToQuestion(rng Rand) Question {
	var q Question
	switch {
	case r.Type == QuestionTypeBoolean && r.Correct == AnswerTrue && isSingle(r.Incorrect, AnswerFalse):
		q = NewTrueQuestion(r.Prompt, rng)
	case r.Type == QuestionTypeBoolean && r.Correct == AnswerFalse && isSingle(r.Incorrect, AnswerTrue):
		q = NewFalseQuestion(r.Prompt, rng)
	default:
		q = NewQuestion(r.Prompt, r.Correct, r.Incorrect, rng)
	}
	return q.WithMeta(QuestionMeta{
		Type:       r.Type,
		Category:   r.Category,
		Difficulty: r.Difficulty,
	})
}

func isSingle(values []string, want string) bool {
	return len(values) == 1 && values[0] == want
}

// BuildQuestions превращает сырые вопросы в вопросы ядра, сохраняя порядок
func BuildQuestions(raw []RawQuestion, rng Rand) []Question {
	questions := make([]Question, 0, len(raw))
	for _, r := range raw {
		questions = append(questions, r.ToQuestion(rng))
	}
	return questions
}
