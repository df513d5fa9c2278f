package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/domain/repository"
	"github.com/yourusername/trivia-engine/internal/event"
	"github.com/yourusername/trivia-engine/internal/middleware"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
	"github.com/yourusername/trivia-engine/internal/repository/memory"
	"github.com/yourusername/trivia-engine/internal/service"
	"github.com/yourusername/trivia-engine/internal/websocket"
	"github.com/yourusername/trivia-engine/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testAdminKey = "admin-key"

// noShuffle оставляет правильный ответ на позиции 0
type noShuffle struct{}

func (noShuffle) IntN(n int) int { return n - 1 }

// stubSource отдает одинаковые вопросы с правильным ответом "right"
type stubSource struct {
	err error
}

func (s stubSource) FetchQuestions(_ context.Context, settings entity.QuizSettings) ([]entity.RawQuestion, error) {
	if s.err != nil {
		return nil, s.err
	}
	raw := make([]entity.RawQuestion, settings.QuestionCount)
	for i := range raw {
		raw[i] = entity.RawQuestion{
			Type:       entity.QuestionTypeMultiple,
			Category:   "Science",
			Difficulty: settings.Difficulty,
			Prompt:     "=2+2?",
			Correct:    "right",
			Incorrect:  []string{"w1", "w2", "w3"},
		}
	}
	return raw, nil
}

// memoryResults - ResultRepository в памяти
type memoryResults struct {
	mu      sync.Mutex
	results []entity.Result
}

func (m *memoryResults) SaveResult(result *entity.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	result.ID = uint(len(m.results) + 1)
	m.results = append(m.results, *result)
	return nil
}

func (m *memoryResults) GetBySessionID(sessionID string) (*entity.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.results {
		if m.results[i].SessionID == sessionID {
			r := m.results[i]
			return &r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryResults) GetResults(limit, offset int) ([]entity.Result, int64, error) {
	all, _ := m.GetAllResults()
	total := int64(len(all))
	if offset >= len(all) {
		return []entity.Result{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memoryResults) GetAllResults() ([]entity.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Result, len(m.results))
	copy(out, m.results)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryResults) GetStats() (*repository.ResultStats, error) {
	all, _ := m.GetAllResults()
	stats := &repository.ResultStats{Sessions: int64(len(all))}
	var sum float64
	for _, r := range all {
		if r.IsAbandoned() {
			stats.Abandoned++
		} else {
			stats.Completed++
		}
		if r.IsPerfect {
			stats.Perfect++
		}
		if r.IsPassing {
			stats.Passing++
		}
		sum += r.Ratio
	}
	if len(all) > 0 {
		stats.AverageRatio = sum / float64(len(all))
	}
	return stats, nil
}

type testAPI struct {
	router  *gin.Engine
	results *memoryResults
	quiz    *service.QuizService
}

func newTestAPI(t *testing.T, source repository.QuestionSource, bank *BankHandler) *testAPI {
	t.Helper()
	tickets, err := auth.NewTicketService("test-secret", time.Hour)
	require.NoError(t, err)

	results := &memoryResults{}
	quizService := service.NewQuizService(
		source,
		memory.NewSessionStore(),
		results,
		tickets,
		event.LogPublisher{},
		service.QuizConfig{DefaultQuestionCount: 2, MaxQuestionCount: 5, PassThreshold: 0.5, SessionTTL: time.Hour},
	).WithRand(noShuffle{})

	router := gin.New()
	RegisterRoutes(router, Routes{
		Quiz:    NewQuizHandler(quizService),
		Results: NewResultHandler(service.NewResultService(results)),
		Bank:    bank,
		WS:      NewWSHandler(quizService, websocket.NewUpgrader([]string{"*"})),
		Auth:    middleware.NewAuthMiddleware(tickets, testAdminKey),
	})
	return &testAPI{router: router, results: results, quiz: quizService}
}

// do выполняет запрос; headers - пары ключ/значение
func (a *testAPI) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// startSession создает сессию и возвращает ее id и тикет
func (a *testAPI) startSession(t *testing.T, count int) (string, string) {
	t.Helper()
	return a.startSessionIn(t, count, "")
}

// startSessionIn создает сессию в заданной категории
func (a *testAPI) startSessionIn(t *testing.T, count int, category string) (string, string) {
	t.Helper()
	body := map[string]interface{}{"question_count": count}
	if category != "" {
		body["category"] = category
	}
	w := a.do(t, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := parseJSONResponse(t, w)
	return resp["id"].(string), resp["ticket"].(string)
}
