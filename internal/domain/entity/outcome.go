package entity

import "fmt"

// DefaultPassThreshold - доля правильных ответов, с которой викторина считается пройденной
const DefaultPassThreshold = 0.7

// QuizOutcome - итог викторины: сколько правильных из скольких
type QuizOutcome struct {
	score int
	total int
}

// NewQuizOutcome создает итог с проверкой: total >= 1, 0 <= score <= total
func NewQuizOutcome(score, total int) (QuizOutcome, error) {
	if total < 1 {
		return QuizOutcome{}, fmt.Errorf("%w: total must be at least 1, got %d", ErrInvalidOutcome, total)
	}
	if score < 0 {
		return QuizOutcome{}, fmt.Errorf("%w: negative score %d", ErrInvalidOutcome, score)
	}
	if score > total {
		return QuizOutcome{}, fmt.Errorf("%w: score %d exceeds total %d", ErrInvalidOutcome, score, total)
	}
	return QuizOutcome{score: score, total: total}, nil
}

// EmptyOutcome - итог викторины без вопросов (0 из 0).
// Строгая фабрика такой итог отвергает.
func EmptyOutcome() QuizOutcome {
	return QuizOutcome{}
}

// newSessionOutcome собирает итог из счетчиков сессии, которые уже удовлетворяют инвариантам
func newSessionOutcome(score, total int) QuizOutcome {
	if total == 0 {
		return EmptyOutcome()
	}
	return QuizOutcome{score: score, total: total}
}

// Score возвращает число правильных ответов
func (o QuizOutcome) Score() int { return o.score }

// Total возвращает число вопросов
func (o QuizOutcome) Total() int { return o.total }

// Ratio возвращает долю правильных ответов; 0 для пустой викторины
func (o QuizOutcome) Ratio() float64 {
	if o.total == 0 {
		return 0
	}
	return float64(o.score) / float64(o.total)
}

// IsPerfect - все ответы правильные
func (o QuizOutcome) IsPerfect() bool {
	return o.score == o.total
}

// IsPassing проверяет порог DefaultPassThreshold
func (o QuizOutcome) IsPassing() bool {
	return o.IsPassingAt(DefaultPassThreshold)
}

// IsPassingAt проверяет произвольный порог
func (o QuizOutcome) IsPassingAt(threshold float64) bool {
	return o.Ratio() >= threshold
}

// String нужен для логов
func (o QuizOutcome) String() string {
	return fmt.Sprintf("%d/%d", o.score, o.total)
}
