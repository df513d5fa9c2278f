package entity

import (
	"math/rand/v2"
)

// Rand - источник случайности для перемешивания вариантов ответа.
// *rand.Rand из math/rand/v2 удовлетворяет этому интерфейсу.
type Rand interface {
	IntN(n int) int
}

// globalRand использует общий генератор math/rand/v2 (безопасен для конкурентного вызова)
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand используется, когда источник не передан явно
var DefaultRand Rand = globalRand{}

// NewSeededRand возвращает детерминированный генератор (для тестов и воспроизводимых раздач)
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AnswerSet - перемешанный список вариантов ответа и позиция правильного
type AnswerSet struct {
	options      StringArray
	correctIndex int
}

// NewAnswerSet строит набор вариантов из правильного ответа и списка неправильных.
// Позиция правильного ответа отслеживается через перестановку, а не ищется по значению:
// неправильный вариант может совпадать с правильным по тексту.
func NewAnswerSet(correct string, incorrects []string, rng Rand) AnswerSet {
	if rng == nil {
		rng = DefaultRand
	}

	combined := make([]string, 0, len(incorrects)+1)
	combined = append(combined, correct)
	combined = append(combined, incorrects...)

	// perm[k] - исходный слот, попавший на позицию k
	perm := make([]int, len(combined))
	for i := range perm {
		perm[i] = i
	}
	// Fisher–Yates
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	options := make(StringArray, len(combined))
	correctIndex := 0
	for k, slot := range perm {
		options[k] = combined[slot]
		if slot == 0 {
			correctIndex = k
		}
	}

	return AnswerSet{options: options, correctIndex: correctIndex}
}

// Options возвращает копию вариантов в порядке показа
func (a AnswerSet) Options() []string {
	out := make([]string, len(a.options))
	copy(out, a.options)
	return out
}

// Option возвращает вариант по индексу
func (a AnswerSet) Option(index int) (string, bool) {
	if !a.IsValidIndex(index) {
		return "", false
	}
	return a.options[index], true
}

// CorrectIndex возвращает позицию правильного ответа
func (a AnswerSet) CorrectIndex() int {
	return a.correctIndex
}

// Correct возвращает текст правильного ответа
func (a AnswerSet) Correct() string {
	if len(a.options) == 0 {
		return ""
	}
	return a.options[a.correctIndex]
}

// Len возвращает количество вариантов
func (a AnswerSet) Len() int {
	return len(a.options)
}

// IsValidIndex проверяет, что индекс указывает на существующий вариант
func (a AnswerSet) IsValidIndex(index int) bool {
	return index >= 0 && index < len(a.options)
}
