package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/trivia-engine/internal/handler/dto"
	"github.com/yourusername/trivia-engine/internal/service"
)

// BankHandler обрабатывает запросы к банку вопросов
type BankHandler struct {
	bankService *service.BankService
}

// NewBankHandler создает обработчик банка вопросов
func NewBankHandler(bankService *service.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// GetStats возвращает количество вопросов в банке
func (h *BankHandler) GetStats(c *gin.Context) {
	stats, err := h.bankService.Stats()
	if err != nil {
		handleError(c, "BankHandler", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Import загружает вопросы из внешнего источника в банк
func (h *BankHandler) Import(c *gin.Context) {
	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data: " + err.Error(), "error_type": "bad_request"})
		return
	}

	imported, err := h.bankService.Import(c.Request.Context(), req.Settings())
	if err != nil {
		handleError(c, "BankHandler", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imported": imported})
}

// questionID читает числовой ID вопроса из URL
func questionID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("question_id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question_id", "error_type": "invalid_id"})
		return 0, false
	}
	return uint(id), true
}

// GetQuestion возвращает вопрос банка вместе с правильным ответом
func (h *BankHandler) GetQuestion(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}
	question, err := h.bankService.GetQuestion(id)
	if err != nil {
		handleError(c, "BankHandler", err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion удаляет вопрос из банка
func (h *BankHandler) DeleteQuestion(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}
	if err := h.bankService.DeleteQuestion(id); err != nil {
		handleError(c, "BankHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}
