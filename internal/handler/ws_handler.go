package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/yourusername/trivia-engine/internal/handler/dto"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
	"github.com/yourusername/trivia-engine/internal/service"
	"github.com/yourusername/trivia-engine/internal/websocket"
)

// wsRequestTimeout ограничивает обработку одного сообщения клиента
const wsRequestTimeout = 10 * time.Second

// WSHandler обслуживает игру по WebSocket: вопрос -> ответ -> следующий вопрос -> итог
type WSHandler struct {
	quizService  *service.QuizService
	upgrader     *gorillaws.Upgrader
	clientConfig websocket.ClientConfig
	metrics      *websocket.Metrics
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(quizService *service.QuizService, upgrader *gorillaws.Upgrader) *WSHandler {
	metrics := websocket.NewMetrics()
	clientConfig := websocket.DefaultClientConfig()
	clientConfig.Metrics = metrics
	return &WSHandler{
		quizService:  quizService,
		upgrader:     upgrader,
		clientConfig: clientConfig,
		metrics:      metrics,
	}
}

// GetStats возвращает счетчики WebSocket соединений
func (h *WSHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// HandleConnection поднимает соединение для сессии. Тикет уже проверен middleware.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	sessionID := c.GetString(SessionIDKey)

	// Проверяем сессию до upgrade, чтобы вернуть обычный HTTP статус
	session, err := h.quizService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		handleError(c, "WSHandler", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка upgrade для сессии %s: %v", sessionID, err)
		return
	}

	client := websocket.NewClient(conn, sessionID, h.clientConfig)
	log.Printf("[WSHandler] Подключение к сессии %s (conn=%s)", sessionID, client.ConnectionID)

	if err := client.Send(websocket.QUESTION_START, dto.NewQuestionResponse(session)); err != nil {
		log.Printf("[WSHandler] Не удалось отправить вопрос сессии %s: %v", sessionID, err)
	}

	client.Run(h.handleMessage)
}

func (h *WSHandler) handleMessage(message websocket.Message, client *websocket.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), wsRequestTimeout)
	defer cancel()

	switch message.Type {
	case websocket.GUESS:
		var data websocket.GuessData
		if err := json.Unmarshal(message.Data, &data); err != nil || data.Choice == nil {
			return client.Send(websocket.ERROR, websocket.ErrorData{Error: "choice is required", ErrorType: "bad_request"})
		}
		report, err := h.quizService.Guess(ctx, client.SessionID, *data.Choice)
		if err != nil {
			return h.sendError(client, err)
		}
		return h.sendGuessReport(client, report)

	case websocket.QUIT:
		result, err := h.quizService.Quit(ctx, client.SessionID)
		if err != nil {
			return h.sendError(client, err)
		}
		if err := client.Send(websocket.QUIZ_END, dto.NewOutcomeResponse(result)); err != nil {
			return err
		}
		client.Close()
		return nil

	default:
		return client.Send(websocket.ERROR, websocket.ErrorData{Error: "unknown message type: " + message.Type, ErrorType: "bad_request"})
	}
}

func (h *WSHandler) sendGuessReport(client *websocket.Client, report *service.GuessReport) error {
	if err := client.Send(websocket.ANSWER_RESULT, gin.H{
		"correct":       report.Correct,
		"correct_index": report.CorrectIndex,
		"finished":      report.Finished,
	}); err != nil {
		return err
	}

	if report.Finished {
		if report.Result != nil {
			if err := client.Send(websocket.QUIZ_END, dto.NewOutcomeResponse(report.Result)); err != nil {
				return err
			}
		}
		client.Close()
		return nil
	}
	return client.Send(websocket.QUESTION_START, dto.NewQuestionResponse(report.Session))
}

// sendError отправляет ERROR; если сессии больше нет, соединение закрывается
func (h *WSHandler) sendError(client *websocket.Client, err error) error {
	status, errType := errorStatus(err)
	msg := err.Error()
	if status >= 500 && !errors.Is(err, apperrors.ErrUnavailable) {
		log.Printf("ERROR: Internal server error in WSHandler: %v", err)
		msg = "Internal server error"
	}
	if sendErr := client.Send(websocket.ERROR, websocket.ErrorData{Error: msg, ErrorType: errType}); sendErr != nil {
		return sendErr
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		client.Close()
	}
	return nil
}
