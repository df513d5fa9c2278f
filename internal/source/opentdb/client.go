// Package opentdb - клиент Open Trivia Database (https://opentdb.com) как источник вопросов.
package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

const (
	DefaultBaseURL = "https://opentdb.com"
	DefaultTimeout = 10 * time.Second

	// MaxAmount - больше вопросов за один запрос OpenTDB не отдает
	MaxAmount = 50

	// RetryAfter - OpenTDB разрешает один запрос в 5 секунд с одного IP
	RetryAfter = 5 * time.Second
)

// Коды ответа OpenTDB
const (
	codeSuccess          = 0
	codeNoResults        = 1
	codeInvalidParameter = 2
	codeTokenNotFound    = 3
	codeTokenEmpty       = 4
	codeRateLimit        = 5
)

var (
	ErrNoResults        = fmt.Errorf("%w: opentdb has not enough questions for the query", apperrors.ErrNotFound)
	ErrInvalidParameter = fmt.Errorf("%w: opentdb rejected query parameters", apperrors.ErrValidation)
	ErrTokenNotFound    = fmt.Errorf("%w: opentdb session token not found", apperrors.ErrUnavailable)
	ErrTokenEmpty       = fmt.Errorf("%w: opentdb session token exhausted", apperrors.ErrUnavailable)
	ErrRateLimited      = fmt.Errorf("%w: opentdb rate limit exceeded", apperrors.ErrUnavailable)
	ErrUnexpectedStatus = fmt.Errorf("%w: opentdb returned unexpected status", apperrors.ErrUnavailable)
)

// Config - параметры клиента
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client реализует repository.QuestionSource поверх HTTP API OpenTDB
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает клиент; пустые поля конфигурации заменяются значениями по умолчанию
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	ResponseCode int                  `json:"response_code"`
	Results      []entity.RawQuestion `json:"results"`
}

// FetchQuestions запрашивает settings.QuestionCount вопросов.
// Текст вопросов возвращается как есть, без раскодирования HTML-сущностей.
func (c *Client) FetchQuestions(ctx context.Context, settings entity.QuizSettings) ([]entity.RawQuestion, error) {
	requestURL, err := c.buildURL(settings)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create opentdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: opentdb request failed: %v", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to parse opentdb response: %v", apperrors.ErrUnavailable, err)
	}

	if err := codeError(payload.ResponseCode); err != nil {
		log.Printf("[OpenTDB] Запрос %s завершился кодом %d", requestURL, payload.ResponseCode)
		return nil, err
	}

	log.Printf("[OpenTDB] Получено %d вопросов (category=%q, difficulty=%q)",
		len(payload.Results), settings.Category, settings.Difficulty)
	return payload.Results, nil
}

func (c *Client) buildURL(settings entity.QuizSettings) (string, error) {
	if settings.QuestionCount <= 0 {
		return "", fmt.Errorf("%w: got %d", entity.ErrInvalidQuestionCount, settings.QuestionCount)
	}
	if settings.QuestionCount > MaxAmount {
		return "", fmt.Errorf("%w: amount %d exceeds %d", ErrInvalidParameter, settings.QuestionCount, MaxAmount)
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(settings.QuestionCount))

	category, err := ParseCategory(settings.Category)
	if err != nil {
		return "", err
	}
	if category != 0 {
		params.Set("category", strconv.Itoa(int(category)))
	}

	switch settings.Difficulty {
	case "":
	case entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard:
		params.Set("difficulty", settings.Difficulty)
	default:
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidParameter, settings.Difficulty)
	}

	return c.baseURL + "/api.php?" + params.Encode(), nil
}

func codeError(code int) error {
	switch code {
	case codeSuccess:
		return nil
	case codeNoResults:
		return ErrNoResults
	case codeInvalidParameter:
		return ErrInvalidParameter
	case codeTokenNotFound:
		return ErrTokenNotFound
	case codeTokenEmpty:
		return ErrTokenEmpty
	case codeRateLimit:
		return ErrRateLimited
	default:
		return fmt.Errorf("%w: unknown response_code %d", apperrors.ErrUnavailable, code)
	}
}

// IsRetryable сообщает, имеет ли смысл повторить запрос позже
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnexpectedStatus)
}
