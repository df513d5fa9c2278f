package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/trivia-engine/internal/domain/entity"
	"github.com/yourusername/trivia-engine/internal/domain/repository"
	"github.com/yourusername/trivia-engine/internal/event"
	apperrors "github.com/yourusername/trivia-engine/internal/pkg/errors"
)

// TicketIssuer выдает тикет, с которым клиент обращается к своей сессии
type TicketIssuer interface {
	GenerateTicket(sessionID string) (string, error)
}

// ActiveSession - только что созданная сессия вместе с тикетом доступа
type ActiveSession struct {
	ID        string
	Session   entity.QuizSession
	Ticket    string
	ExpiresAt time.Time
}

// GuessReport описывает результат одного ответа
type GuessReport struct {
	SessionID    string
	Correct      bool
	CorrectIndex int
	Finished     bool
	Session      entity.QuizSession // следующее состояние, если Finished == false
	Outcome      entity.QuizOutcome // итог, если Finished == true
	Result       *entity.Result
}

// QuizService управляет жизненным циклом игровых сессий
type QuizService struct {
	source     repository.QuestionSource
	store      repository.SessionStore
	resultRepo repository.ResultRepository
	tickets    TicketIssuer
	publisher  event.Publisher
	config     QuizConfig
	rng        entity.Rand
	now        func() time.Time
}

// NewQuizService создает сервис сессий
func NewQuizService(
	source repository.QuestionSource,
	store repository.SessionStore,
	resultRepo repository.ResultRepository,
	tickets TicketIssuer,
	publisher event.Publisher,
	config QuizConfig,
) *QuizService {
	if publisher == nil {
		publisher = event.LogPublisher{}
	}
	return &QuizService{
		source:     source,
		store:      store,
		resultRepo: resultRepo,
		tickets:    tickets,
		publisher:  publisher,
		config:     config.normalized(),
		rng:        entity.DefaultRand,
		now:        time.Now,
	}
}

// WithRand задает источник случайности для перемешивания вариантов (для тестов)
func (s *QuizService) WithRand(rng entity.Rand) *QuizService {
	s.rng = rng
	return s
}

// Config возвращает действующие настройки
func (s *QuizService) Config() QuizConfig { return s.config }

// StartSession загружает вопросы, создает сессию и выдает тикет
func (s *QuizService) StartSession(ctx context.Context, settings entity.QuizSettings) (*ActiveSession, error) {
	if settings.QuestionCount == 0 {
		settings.QuestionCount = s.config.DefaultQuestionCount
	}
	settings, err := entity.NewQuizSettings(settings.QuestionCount, settings.Category, settings.Difficulty)
	if err != nil {
		return nil, err
	}
	if settings.QuestionCount > s.config.MaxQuestionCount {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyQuestions, settings.QuestionCount, s.config.MaxQuestionCount)
	}

	started := time.Now()
	raw, err := s.source.FetchQuestions(ctx, settings)
	observeFetch(started, err)
	if err != nil {
		log.Printf("[QuizService] Ошибка загрузки вопросов (%+v): %v", settings, err)
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoQuestions
	}

	session := entity.NewQuizSession(entity.BuildQuestions(raw, s.rng), settings)
	id := uuid.NewString()

	if err := s.store.Save(ctx, id, session, s.config.SessionTTL); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GenerateTicket(id)
	if err != nil {
		_ = s.store.Delete(ctx, id)
		return nil, fmt.Errorf("failed to issue ticket: %w", err)
	}

	sessionsStarted.Inc()
	log.Printf("[QuizService] Создана сессия %s: %d вопросов, category=%q, difficulty=%q",
		id, session.Total(), settings.Category, settings.Difficulty)

	return &ActiveSession{
		ID:        id,
		Session:   session,
		Ticket:    ticket,
		ExpiresAt: s.now().Add(s.config.SessionTTL),
	}, nil
}

// GetSession возвращает текущее состояние незавершенной сессии
func (s *QuizService) GetSession(ctx context.Context, id string) (entity.QuizSession, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return entity.QuizSession{}, s.mapStoreError(id, err)
	}
	return session, nil
}

// Guess принимает ответ на текущий вопрос.
// Пока ответ обрабатывается, сессия заблокирована; параллельный ответ получит ErrConflict.
func (s *QuizService) Guess(ctx context.Context, id string, choice int) (*GuessReport, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(id, err)
	}

	current, err := session.Current()
	if err != nil {
		return nil, err
	}
	if !current.Answers().IsValidIndex(choice) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidChoice, choice, current.Answers().Len())
	}

	result := session.Guess(choice)
	guesses.WithLabelValues(guessLabel(result.Correct())).Inc()
	report := &GuessReport{
		SessionID:    id,
		Correct:      result.Correct(),
		CorrectIndex: result.CorrectIndex(),
		Finished:     result.Finished(),
	}

	if next, ok := result.Session(); ok {
		if err := s.store.Save(ctx, id, next, s.config.SessionTTL); err != nil {
			return nil, err
		}
		report.Session = next
		return report, nil
	}

	outcome, _ := result.Outcome()
	saved, err := s.finish(ctx, id, outcome, outcome.Total(), session.Settings(), entity.ResultStatusCompleted)
	if err != nil {
		return nil, err
	}
	report.Outcome = outcome
	report.Result = saved
	return report, nil
}

// Quit досрочно завершает сессию; итог учитывает полное число вопросов
func (s *QuizService) Quit(ctx context.Context, id string) (*entity.Result, error) {
	unlock, err := s.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(id, err)
	}

	answered := session.Step() - 1
	return s.finish(ctx, id, session.ToOutcome(), answered, session.Settings(), entity.ResultStatusAbandoned)
}

// finish сохраняет результат, удаляет сессию и публикует событие.
// Сессия удаляется только после успешной записи результата, чтобы запрос можно было повторить.
func (s *QuizService) finish(ctx context.Context, id string, outcome entity.QuizOutcome, answered int, settings entity.QuizSettings, status string) (*entity.Result, error) {
	result := entity.NewResult(id, outcome, answered, settings, status, s.config.PassThreshold, s.now())
	if err := s.resultRepo.SaveResult(result); err != nil {
		log.Printf("[QuizService] Ошибка сохранения результата сессии %s: %v", id, err)
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		log.Printf("[QuizService] WARNING: Не удалось удалить сессию %s: %v", id, err)
	}

	eventType := event.TypeQuizFinished
	if status == entity.ResultStatusAbandoned {
		eventType = event.TypeQuizAbandoned
	}
	payload := event.QuizOutcomePayload{
		SessionID:  id,
		Score:      result.Score,
		Total:      result.Total,
		Answered:   result.Answered,
		Ratio:      result.Ratio,
		IsPerfect:  result.IsPerfect,
		IsPassing:  result.IsPassing,
		Category:   result.Category,
		Difficulty: result.Difficulty,
	}
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("[QuizService] WARNING: Не удалось опубликовать %s для сессии %s: %v", eventType, id, err)
	}

	sessionsFinished.WithLabelValues(status).Inc()
	log.Printf("[QuizService] Сессия %s завершена (%s): %s", id, status, outcome)
	return result, nil
}

func (s *QuizService) mapStoreError(id string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return err
}
