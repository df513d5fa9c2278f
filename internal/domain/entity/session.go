package entity

import "fmt"

// QuizSession - неизменяемое состояние прохождения викторины.
// Каждый ответ возвращает новое значение; вопросы не копируются и не меняются.
type QuizSession struct {
	questions []Question
	step      int // 1-based номер текущего вопроса
	score     int
	settings  QuizSettings
}

// NewQuizSession создает сессию на первом вопросе с нулевым счетом.
// Пустой список вопросов допустим: первая же попытка ответа завершает сессию итогом 0/0.
func NewQuizSession(questions []Question, settings QuizSettings) QuizSession {
	owned := make([]Question, len(questions))
	copy(owned, questions)
	return QuizSession{
		questions: owned,
		step:      1,
		score:     0,
		settings:  settings,
	}
}

// withProgress - явная пересборка значения с новыми step/score
func (s QuizSession) withProgress(step, score int) QuizSession {
	return QuizSession{
		questions: s.questions,
		step:      step,
		score:     score,
		settings:  s.settings,
	}
}

// Step возвращает номер текущего вопроса (с единицы)
func (s QuizSession) Step() int {
	if s.step == 0 {
		return 1 // нулевое значение QuizSession ведет себя как пустая сессия
	}
	return s.step
}

// Score возвращает число правильных ответов на данный момент
func (s QuizSession) Score() int { return s.score }

// Total возвращает общее число вопросов
func (s QuizSession) Total() int { return len(s.questions) }

// Remaining возвращает число вопросов, включая текущий, на которые еще не ответили
func (s QuizSession) Remaining() int {
	return len(s.questions) - (s.Step() - 1)
}

// Settings возвращает настройки, с которыми создавалась сессия
func (s QuizSession) Settings() QuizSettings { return s.settings }

// Questions возвращает копию списка вопросов
func (s QuizSession) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// HasCurrent сообщает, есть ли вопрос, ожидающий ответа
func (s QuizSession) HasCurrent() bool {
	return s.Step() <= len(s.questions)
}

// Current возвращает вопрос, ожидающий ответа
func (s QuizSession) Current() (Question, error) {
	if !s.HasCurrent() {
		return Question{}, fmt.Errorf("%w: step %d of %d", ErrNoCurrentQuestion, s.Step(), len(s.questions))
	}
	return s.questions[s.Step()-1], nil
}

// Guess принимает индекс выбранного варианта текущего вопроса.
// Ответ на последний вопрос сразу возвращает итог, а не сессию.
func (s QuizSession) Guess(choice int) GuessResult {
	return s.advance(func(q Question) bool { return q.IsCorrect(choice) })
}

// GuessAnswer принимает текст варианта. Сравнение идет с текстом правильного ответа,
// поэтому при совпадающих вариантах предпочтителен Guess.
func (s QuizSession) GuessAnswer(choice string) GuessResult {
	return s.advance(func(q Question) bool { return q.IsCorrectAnswer(choice) })
}

func (s QuizSession) advance(isCorrect func(Question) bool) GuessResult {
	if len(s.questions) == 0 {
		return Finished(EmptyOutcome())
	}

	current, err := s.Current()
	if err != nil {
		// Сессия создается только через NewQuizSession/RestoreQuizSession и Guess,
		// завершенная сессия наружу не выходит
		panic(err)
	}

	correct := isCorrect(current)
	nextStep := s.Step() + 1
	nextScore := s.score
	if correct {
		nextScore++
	}

	var result GuessResult
	if nextStep > len(s.questions) {
		result = Finished(newSessionOutcome(nextScore, len(s.questions)))
	} else {
		result = Continuing(s.withProgress(nextStep, nextScore))
	}
	result.answered = true
	result.correct = correct
	result.correctIndex = current.Answers().CorrectIndex()
	return result
}

// ToOutcome досрочно подводит итог. Total - полное число вопросов викторины,
// а не число заданных.
func (s QuizSession) ToOutcome() QuizOutcome {
	return newSessionOutcome(s.score, len(s.questions))
}

// GuessResult - результат ответа: либо продолжение сессии, либо итог
type GuessResult struct {
	finished bool
	session  QuizSession
	outcome  QuizOutcome

	answered     bool
	correct      bool
	correctIndex int
}

// Continuing оборачивает сессию, в которой еще есть вопросы
func Continuing(session QuizSession) GuessResult {
	return GuessResult{session: session, correctIndex: -1}
}

// Finished оборачивает итог завершенной викторины
func Finished(outcome QuizOutcome) GuessResult {
	return GuessResult{finished: true, outcome: outcome, correctIndex: -1}
}

// Finished сообщает, закончилась ли викторина этим ответом
func (r GuessResult) Finished() bool { return r.finished }

// Session возвращает продолжение; ok == false, если викторина закончилась
func (r GuessResult) Session() (QuizSession, bool) {
	if r.finished {
		return QuizSession{}, false
	}
	return r.session, true
}

// Outcome возвращает итог; ok == false, если викторина продолжается
func (r GuessResult) Outcome() (QuizOutcome, bool) {
	if !r.finished {
		return QuizOutcome{}, false
	}
	return r.outcome, true
}

// Correct сообщает, был ли ответ правильным
func (r GuessResult) Correct() bool { return r.correct }

// Answered - false только для пустой сессии, где отвечать было не на что
func (r GuessResult) Answered() bool { return r.answered }

// CorrectIndex - позиция правильного варианта в вопросе, на который ответили; -1 если вопроса не было
func (r GuessResult) CorrectIndex() int { return r.correctIndex }
