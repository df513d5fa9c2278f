package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/event"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
	"github.com/yourusername/trivia-engine/internal/repository/memory"
)

type quizServiceDeps struct {
	source    *MockQuestionSource
	results   *MockResultRepository
	tickets   *MockTicketIssuer
	publisher *MockPublisher
	store     *memory.SessionStore
}

func newTestQuizService(t *testing.T) (*QuizService, quizServiceDeps) {
	t.Helper()
	deps := quizServiceDeps{
		source:    new(MockQuestionSource),
		results:   new(MockResultRepository),
		tickets:   new(MockTicketIssuer),
		publisher: new(MockPublisher),
		store:     memory.NewSessionStore(),
	}
	cfg := QuizConfig{DefaultQuestionCount: 3, MaxQuestionCount: 5, PassThreshold: 0.5, SessionTTL: time.Minute}
	svc := NewQuizService(deps.source, deps.store, deps.results, deps.tickets, deps.publisher, cfg).
		WithRand(entity.NewSeededRand(11))
	return svc, deps
}

func rawQuestions(n int) []entity.RawQuestion {
	raw := make([]entity.RawQuestion, n)
	for i := range raw {
		raw[i] = entity.RawQuestion{
			Type:      entity.QuestionTypeMultiple,
			Category:  "Art",
			Prompt:    "Q",
			Correct:   "right",
			Incorrect: []string{"w1", "w2", "w3"},
		}
	}
	return raw
}

// startSession создает сессию из n вопросов через сервис
func startSession(t *testing.T, svc *QuizService, deps quizServiceDeps, n int) *ActiveSession {
	t.Helper()
	deps.source.On("FetchQuestions", mock.Anything).Return(rawQuestions(n), nil).Once()
	deps.tickets.On("GenerateTicket", mock.AnythingOfType("string")).Return("ticket", nil).Once()
	active, err := svc.StartSession(context.Background(), entity.QuizSettings{QuestionCount: n, Category: "Art"})
	require.NoError(t, err)
	return active
}

func currentCorrect(t *testing.T, svc *QuizService, id string) int {
	t.Helper()
	session, err := svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	q, err := session.Current()
	require.NoError(t, err)
	return q.Answers().CorrectIndex()
}

func TestQuizService_StartSession(t *testing.T) {
	// Arrange
	svc, deps := newTestQuizService(t)
	deps.source.On("FetchQuestions", entity.QuizSettings{QuestionCount: 3}).Return(rawQuestions(3), nil)
	deps.tickets.On("GenerateTicket", mock.AnythingOfType("string")).Return("signed-ticket", nil)

	// Act: количество не указано, берется значение по умолчанию
	active, err := svc.StartSession(context.Background(), entity.QuizSettings{})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, active.ID)
	assert.Equal(t, "signed-ticket", active.Ticket)
	assert.Equal(t, 3, active.Session.Total())
	assert.Equal(t, 1, active.Session.Step())

	stored, err := deps.store.Get(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Total())
	deps.source.AssertExpectations(t)
	deps.tickets.AssertCalled(t, "GenerateTicket", active.ID)
}

func TestQuizService_StartSession_Validation(t *testing.T) {
	svc, deps := newTestQuizService(t)

	_, err := svc.StartSession(context.Background(), entity.QuizSettings{QuestionCount: 6})
	assert.ErrorIs(t, err, ErrTooManyQuestions)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.StartSession(context.Background(), entity.QuizSettings{QuestionCount: -1})
	assert.ErrorIs(t, err, entity.ErrInvalidQuestionCount)

	deps.source.AssertNotCalled(t, "FetchQuestions", mock.Anything)
}

func TestQuizService_StartSession_SourceErrors(t *testing.T) {
	t.Run("ошибка источника", func(t *testing.T) {
		svc, deps := newTestQuizService(t)
		deps.source.On("FetchQuestions", mock.Anything).Return(nil, apperrors.ErrUnavailable)

		_, err := svc.StartSession(context.Background(), entity.QuizSettings{QuestionCount: 2})

		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})

	t.Run("пустой ответ", func(t *testing.T) {
		svc, deps := newTestQuizService(t)
		deps.source.On("FetchQuestions", mock.Anything).Return([]entity.RawQuestion{}, nil)

		_, err := svc.StartSession(context.Background(), entity.QuizSettings{QuestionCount: 2})

		assert.ErrorIs(t, err, ErrNoQuestions)
	})

	t.Run("ошибка тикета удаляет сессию", func(t *testing.T) {
		svc, deps := newTestQuizService(t)
		deps.source.On("FetchQuestions", mock.Anything).Return(rawQuestions(1), nil)
		var createdID string
		deps.tickets.On("GenerateTicket", mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { createdID = args.String(0) }).
			Return("", errors.New("sign failed"))

		_, err := svc.StartSession(context.Background(), entity.QuizSettings{QuestionCount: 1})

		require.Error(t, err)
		_, err = deps.store.Get(context.Background(), createdID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestQuizService_GuessUntilFinished(t *testing.T) {
	// Arrange
	svc, deps := newTestQuizService(t)
	active := startSession(t, svc, deps, 2)
	deps.results.On("SaveResult", mock.AnythingOfType("*entity.Result")).Return(nil)
	deps.publisher.On("Publish", event.TypeQuizFinished, mock.AnythingOfType("event.QuizOutcomePayload")).Return(nil)
	ctx := context.Background()

	// Act: правильный ответ на первый вопрос
	correct := currentCorrect(t, svc, active.ID)
	first, err := svc.Guess(ctx, active.ID, correct)
	require.NoError(t, err)

	// Assert
	assert.True(t, first.Correct)
	assert.Equal(t, correct, first.CorrectIndex)
	assert.False(t, first.Finished)
	assert.Equal(t, 2, first.Session.Step())
	assert.Equal(t, 1, first.Session.Score())

	// Act: неправильный ответ на последний вопрос
	wrong := (currentCorrect(t, svc, active.ID) + 1) % 4
	last, err := svc.Guess(ctx, active.ID, wrong)
	require.NoError(t, err)

	// Assert
	assert.True(t, last.Finished)
	assert.False(t, last.Correct)
	assert.Equal(t, 1, last.Outcome.Score())
	assert.Equal(t, 2, last.Outcome.Total())
	require.NotNil(t, last.Result)
	assert.Equal(t, entity.ResultStatusCompleted, last.Result.Status)
	assert.Equal(t, 2, last.Result.Answered)
	assert.True(t, last.Result.IsPassing, "0.5 >= порога 0.5")
	assert.Equal(t, "Art", last.Result.Category)

	_, err = svc.GetSession(ctx, active.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "Завершенная сессия удаляется")
	deps.results.AssertNumberOfCalls(t, "SaveResult", 1)
	deps.publisher.AssertExpectations(t)
}

func TestQuizService_Guess_InvalidChoice(t *testing.T) {
	svc, deps := newTestQuizService(t)
	active := startSession(t, svc, deps, 1)

	_, err := svc.Guess(context.Background(), active.ID, 4)

	assert.ErrorIs(t, err, ErrInvalidChoice)
	session, err := svc.GetSession(context.Background(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Step(), "Невалидный индекс не расходует вопрос")
}

func TestQuizService_Guess_UnknownSession(t *testing.T) {
	svc, _ := newTestQuizService(t)

	_, err := svc.Guess(context.Background(), "missing", 0)

	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuizService_Guess_Locked(t *testing.T) {
	svc, deps := newTestQuizService(t)
	active := startSession(t, svc, deps, 1)

	unlock, err := deps.store.Lock(context.Background(), active.ID)
	require.NoError(t, err)
	defer unlock()

	_, err = svc.Guess(context.Background(), active.ID, 0)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestQuizService_Guess_SaveResultFailsKeepsSession(t *testing.T) {
	svc, deps := newTestQuizService(t)
	active := startSession(t, svc, deps, 1)
	deps.results.On("SaveResult", mock.Anything).Return(errors.New("db down"))

	_, err := svc.Guess(context.Background(), active.ID, 0)

	require.Error(t, err)
	session, err := svc.GetSession(context.Background(), active.ID)
	require.NoError(t, err, "Сессия остается, запрос можно повторить")
	assert.Equal(t, 1, session.Step())
	deps.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestQuizService_Quit(t *testing.T) {
	// Arrange
	svc, deps := newTestQuizService(t)
	active := startSession(t, svc, deps, 3)
	deps.results.On("SaveResult", mock.AnythingOfType("*entity.Result")).Return(nil)
	deps.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	ctx := context.Background()

	_, err := svc.Guess(ctx, active.ID, currentCorrect(t, svc, active.ID))
	require.NoError(t, err)

	// Act
	result, err := svc.Quit(ctx, active.ID)

	// Assert: ошибка публикации не мешает завершению
	require.NoError(t, err)
	assert.Equal(t, entity.ResultStatusAbandoned, result.Status)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 3, result.Total, "Итог досрочного выхода считается от полного числа вопросов")
	assert.Equal(t, 1, result.Answered)
	deps.publisher.AssertCalled(t, "Publish", event.TypeQuizAbandoned, mock.Anything)

	_, err = svc.Quit(ctx, active.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuizService_Metrics(t *testing.T) {
	// Arrange
	svc, deps := newTestQuizService(t)
	deps.results.On("SaveResult", mock.AnythingOfType("*entity.Result")).Return(nil)
	deps.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	started := testutil.ToFloat64(sessionsStarted)
	correct := testutil.ToFloat64(guesses.WithLabelValues("correct"))
	abandoned := testutil.ToFloat64(sessionsFinished.WithLabelValues(entity.ResultStatusAbandoned))

	// Act
	active := startSession(t, svc, deps, 2)
	_, err := svc.Guess(ctx, active.ID, currentCorrect(t, svc, active.ID))
	require.NoError(t, err)
	_, err = svc.Quit(ctx, active.ID)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, started+1, testutil.ToFloat64(sessionsStarted))
	assert.Equal(t, correct+1, testutil.ToFloat64(guesses.WithLabelValues("correct")))
	assert.Equal(t, abandoned+1, testutil.ToFloat64(sessionsFinished.WithLabelValues(entity.ResultStatusAbandoned)))
}

func TestQuizConfig_Normalized(t *testing.T) {
	cfg := QuizConfig{PassThreshold: 1.5}.normalized()

	assert.Equal(t, DefaultQuizConfig(), cfg)
}
