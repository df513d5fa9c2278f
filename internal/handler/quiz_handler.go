package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/trivia-engine/internal/handler/dto"
	"github.com/yourusername/trivia-engine/internal/service"
)

// SessionIDKey - ключ контекста, под которым ExtractUUIDParam сохраняет id сессии
const SessionIDKey = "sessionID"

// QuizHandler обрабатывает запросы игровых сессий
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик сессий
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// StartSession создает сессию и возвращает первый вопрос вместе с тикетом
func (h *QuizHandler) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	// Пустое тело допустимо: все параметры по умолчанию
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error(), "error_type": "bad_request"})
			return
		}
	}

	active, err := h.quizService.StartSession(c.Request.Context(), req.Settings())
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewStartSessionResponse(active))
}

// GetSession возвращает текущее состояние сессии
func (h *QuizHandler) GetSession(c *gin.Context) {
	id := c.GetString(SessionIDKey)

	session, err := h.quizService.GetSession(c.Request.Context(), id)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionResponse(id, session))
}

// Guess принимает ответ на текущий вопрос
func (h *QuizHandler) Guess(c *gin.Context) {
	id := c.GetString(SessionIDKey)

	var req dto.GuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error(), "error_type": "bad_request"})
		return
	}

	report, err := h.quizService.Guess(c.Request.Context(), id, *req.Choice)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGuessResponse(report))
}

// Quit досрочно завершает сессию
func (h *QuizHandler) Quit(c *gin.Context) {
	id := c.GetString(SessionIDKey)

	result, err := h.quizService.Quit(c.Request.Context(), id)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOutcomeResponse(result))
}
