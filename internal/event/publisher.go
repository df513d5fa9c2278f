// Package event публикует события завершения викторин во внешнюю шину (RabbitMQ).
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Типы событий (они же routing key в topic exchange)
const (
	TypeQuizFinished  = "quiz.finished"
	TypeQuizAbandoned = "quiz.abandoned"
)

// Publisher отправляет события
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close()
}

// Envelope - формат сообщения в шине
type Envelope struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// QuizOutcomePayload - полезная нагрузка событий quiz.finished / quiz.abandoned
type QuizOutcomePayload struct {
	SessionID  string  `json:"session_id"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Answered   int     `json:"answered"`
	Ratio      float64 `json:"ratio"`
	IsPerfect  bool    `json:"is_perfect"`
	IsPassing  bool    `json:"is_passing"`
	Category   string  `json:"category,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
}

func encode(eventType string, payload interface{}, now time.Time) ([]byte, error) {
	body, err := json.Marshal(Envelope{Type: eventType, Payload: payload, OccurredAt: now.UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", eventType, err)
	}
	return body, nil
}

// AMQPPublisher публикует в topic exchange RabbitMQ
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher подключается к брокеру и объявляет durable topic exchange
func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	log.Printf("[Event] Подключено к AMQP, exchange=%s", exchange)
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish отправляет событие; тип события используется как routing key
func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(eventType, payload, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Close закрывает канал и соединение
func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// LogPublisher только пишет события в лог. Используется, когда events.amqp_url не задан.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	body, err := encode(eventType, payload, time.Now())
	if err != nil {
		return err
	}
	log.Printf("[Event] %s", body)
	return nil
}

func (LogPublisher) Close() {}
