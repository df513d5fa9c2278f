package dto

import (
	"time"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/handler/helper"
	"github.com/yourusername/trivia-engine/internal/service"
)

// StartSessionRequest - параметры новой сессии; нулевые поля означают значения по умолчанию
type StartSessionRequest struct {
	QuestionCount int    `json:"question_count" binding:"omitempty,min=1"`
	Category      string `json:"category" binding:"omitempty,max=50"`
	Difficulty    string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// Settings переводит запрос в настройки викторины
func (r StartSessionRequest) Settings() entity.QuizSettings {
	return entity.QuizSettings{
		QuestionCount: r.QuestionCount,
		Category:      r.Category,
		Difficulty:    r.Difficulty,
	}
}

// GuessRequest - ответ на текущий вопрос (индекс варианта)
type GuessRequest struct {
	Choice *int `json:"choice" binding:"required,min=0"`
}

// QuestionResponse представляет вопрос без правильного ответа
type QuestionResponse struct {
	Step       int                     `json:"step"`
	Total      int                     `json:"total"`
	Text       string                  `json:"text"`
	Type       string                  `json:"type,omitempty"`
	Category   string                  `json:"category,omitempty"`
	Difficulty string                  `json:"difficulty,omitempty"`
	Options    []helper.QuestionOption `json:"options"`
}

// SessionResponse - состояние незавершенной сессии
type SessionResponse struct {
	ID        string              `json:"id"`
	Step      int                 `json:"step"`
	Total     int                 `json:"total"`
	Score     int                 `json:"score"`
	Remaining int                 `json:"remaining"`
	Settings  entity.QuizSettings `json:"settings"`
	Question  *QuestionResponse   `json:"question,omitempty"`
}

// StartSessionResponse - созданная сессия и тикет для дальнейших запросов
type StartSessionResponse struct {
	SessionResponse
	Ticket    string    `json:"ticket"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OutcomeResponse - итог викторины
type OutcomeResponse struct {
	SessionID string  `json:"session_id"`
	Score     int     `json:"score"`
	Total     int     `json:"total"`
	Answered  int     `json:"answered"`
	Ratio     float64 `json:"ratio"`
	IsPerfect bool    `json:"is_perfect"`
	IsPassing bool    `json:"is_passing"`
	Status    string  `json:"status"`
}

// GuessResponse - результат ответа: либо следующее состояние, либо итог
type GuessResponse struct {
	Correct      bool             `json:"correct"`
	CorrectIndex int              `json:"correct_index"`
	Finished     bool             `json:"finished"`
	Session      *SessionResponse `json:"session,omitempty"`
	Outcome      *OutcomeResponse `json:"outcome,omitempty"`
}

// ResultResponse представляет сохраненный результат
type ResultResponse struct {
	ID          uint      `json:"id"`
	SessionID   string    `json:"session_id"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Answered    int       `json:"answered"`
	Ratio       float64   `json:"ratio"`
	IsPerfect   bool      `json:"is_perfect"`
	IsPassing   bool      `json:"is_passing"`
	Status      string    `json:"status"`
	Category    string    `json:"category,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// PaginatedResultResponse представляет пагинированный список результатов
type PaginatedResultResponse struct {
	Results []*ResultResponse `json:"results"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// NewQuestionResponse создает DTO для текущего вопроса сессии; nil, если вопросов не осталось
func NewQuestionResponse(session entity.QuizSession) *QuestionResponse {
	q, err := session.Current()
	if err != nil {
		return nil
	}
	meta := q.Meta()
	return &QuestionResponse{
		Step:       session.Step(),
		Total:      session.Total(),
		Text:       q.Text(),
		Type:       meta.Type,
		Category:   meta.Category,
		Difficulty: meta.Difficulty,
		Options:    helper.ConvertOptionsToObjects(q.Answers().Options()),
	}
}

// NewSessionResponse создает DTO сессии
func NewSessionResponse(id string, session entity.QuizSession) *SessionResponse {
	return &SessionResponse{
		ID:        id,
		Step:      session.Step(),
		Total:     session.Total(),
		Score:     session.Score(),
		Remaining: session.Remaining(),
		Settings:  session.Settings(),
		Question:  NewQuestionResponse(session),
	}
}

// NewStartSessionResponse создает DTO для только что созданной сессии
func NewStartSessionResponse(active *service.ActiveSession) *StartSessionResponse {
	return &StartSessionResponse{
		SessionResponse: *NewSessionResponse(active.ID, active.Session),
		Ticket:          active.Ticket,
		ExpiresAt:       active.ExpiresAt,
	}
}

// NewOutcomeResponse создает DTO итога из сохраненного результата
func NewOutcomeResponse(result *entity.Result) *OutcomeResponse {
	return &OutcomeResponse{
		SessionID: result.SessionID,
		Score:     result.Score,
		Total:     result.Total,
		Answered:  result.Answered,
		Ratio:     result.Ratio,
		IsPerfect: result.IsPerfect,
		IsPassing: result.IsPassing,
		Status:    result.Status,
	}
}

// NewGuessResponse создает DTO результата ответа
func NewGuessResponse(report *service.GuessReport) *GuessResponse {
	resp := &GuessResponse{
		Correct:      report.Correct,
		CorrectIndex: report.CorrectIndex,
		Finished:     report.Finished,
	}
	if report.Finished {
		if report.Result != nil {
			resp.Outcome = NewOutcomeResponse(report.Result)
		}
		return resp
	}
	resp.Session = NewSessionResponse(report.SessionID, report.Session)
	return resp
}

// NewResultResponse создает DTO для результата
func NewResultResponse(result *entity.Result) *ResultResponse {
	return &ResultResponse{
		ID:          result.ID,
		SessionID:   result.SessionID,
		Score:       result.Score,
		Total:       result.Total,
		Answered:    result.Answered,
		Ratio:       result.Ratio,
		IsPerfect:   result.IsPerfect,
		IsPassing:   result.IsPassing,
		Status:      result.Status,
		Category:    result.Category,
		Difficulty:  result.Difficulty,
		CompletedAt: result.CompletedAt,
	}
}

// NewListResultResponse создает список DTO результатов
func NewListResultResponse(results []entity.Result) []*ResultResponse {
	out := make([]*ResultResponse, len(results))
	for i := range results {
		out[i] = NewResultResponse(&results[i])
	}
	return out
}

// NewPaginatedResultResponse создает пагинированный ответ
func NewPaginatedResultResponse(results []entity.Result, total int64, page, perPage int) *PaginatedResultResponse {
	return &PaginatedResultResponse{
		Results: NewListResultResponse(results),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
}
