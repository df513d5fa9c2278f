package entity

import "fmt"

// QuestionSnapshot - сериализуемое представление вопроса с уже зафиксированным порядком вариантов
type QuestionSnapshot struct {
	Text         string       `json:"text"`
	Options      StringArray  `json:"options"`
	CorrectIndex int          `json:"correct_index"`
	Meta         QuestionMeta `json:"meta"`
}

// SessionSnapshot - сериализуемое состояние сессии для внешних хранилищ (Redis)
type SessionSnapshot struct {
	Questions []QuestionSnapshot `json:"questions"`
	Step      int                `json:"step"`
	Score     int                `json:"score"`
	Settings  QuizSettings       `json:"settings"`
}

// Snapshot фиксирует состояние сессии
func (s QuizSession) Snapshot() SessionSnapshot {
	questions := make([]QuestionSnapshot, len(s.questions))
	for i, q := range s.questions {
		questions[i] = QuestionSnapshot{
			Text:         q.text,
			Options:      StringArray(q.answers.Options()),
			CorrectIndex: q.answers.correctIndex,
			Meta:         q.meta,
		}
	}
	return SessionSnapshot{
		Questions: questions,
		Step:      s.Step(),
		Score:     s.score,
		Settings:  s.settings,
	}
}

// RestoreQuizSession восстанавливает сессию из снимка.
// Хранится только незавершенная сессия, поэтому требуется 1 <= step <= len(questions).
func RestoreQuizSession(snap SessionSnapshot) (QuizSession, error) {
	n := len(snap.Questions)
	if snap.Step < 1 || snap.Step > n {
		return QuizSession{}, fmt.Errorf("%w: step %d out of range for %d questions", ErrInvalidSnapshot, snap.Step, n)
	}
	if snap.Score < 0 || snap.Score > snap.Step-1 {
		return QuizSession{}, fmt.Errorf("%w: score %d at step %d", ErrInvalidSnapshot, snap.Score, snap.Step)
	}

	questions := make([]Question, n)
	for i, qs := range snap.Questions {
		if len(qs.Options) == 0 || qs.CorrectIndex < 0 || qs.CorrectIndex >= len(qs.Options) {
			return QuizSession{}, fmt.Errorf("%w: question #%d has invalid correct index", ErrInvalidSnapshot, i+1)
		}
		options := make(StringArray, len(qs.Options))
		copy(options, qs.Options)
		questions[i] = Question{
			text:    qs.Text,
			answers: AnswerSet{options: options, correctIndex: qs.CorrectIndex},
			meta:    qs.Meta,
		}
	}

	return QuizSession{
		questions: questions,
		step:      snap.Step,
		score:     snap.Score,
		settings:  snap.Settings,
	}, nil
}
