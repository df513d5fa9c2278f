package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 60 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения
	maxMessageSize = 512

	// Размер буфера по умолчанию для канала отправки
	defaultClientBufferSize = 16
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}

	// ErrClientClosed возвращается при отправке в закрытое соединение
	ErrClientClosed = errors.New("websocket client is closed")
	// ErrBufferFull - клиент не успевает читать сообщения
	ErrBufferFull = errors.New("websocket client send buffer is full")
)

// ClientConfig содержит настройки для клиента
type ClientConfig struct {
	// BufferSize определяет размер буфера канала отправки сообщений
	BufferSize int

	// PingInterval определяет интервал между ping-сообщениями
	PingInterval time.Duration

	// PongWait определяет время ожидания pong-ответа
	PongWait time.Duration

	// WriteWait определяет тайм-аут для записи сообщений
	WriteWait time.Duration

	// MaxMessageSize - максимальный размер входящего сообщения
	MaxMessageSize int64

	// Metrics может быть nil
	Metrics *Metrics
}

// DefaultClientConfig возвращает настройки по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BufferSize:     defaultClientBufferSize,
		PingInterval:   pingPeriod,
		PongWait:       pongWait,
		WriteWait:      writeWait,
		MaxMessageSize: maxMessageSize,
	}
}

// MessageHandler обрабатывает сообщение клиента. Ошибка считается фатальной для соединения.
type MessageHandler func(message Message, client *Client) error

// Client - одно WebSocket соединение, привязанное к игровой сессии
type Client struct {
	SessionID    string
	ConnectionID string

	conn   *websocket.Conn
	config ClientConfig

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient создает клиента для соединения
func NewClient(conn *websocket.Conn, sessionID string, config ClientConfig) *Client {
	if config.BufferSize <= 0 {
		config.BufferSize = defaultClientBufferSize
	}
	return &Client{
		SessionID:    sessionID,
		ConnectionID: uuid.NewString(),
		conn:         conn,
		config:       config,
		send:         make(chan []byte, config.BufferSize),
	}
}

// Send ставит сообщение в очередь отправки
func (c *Client) Send(eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", eventType, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- payload:
		c.config.Metrics.MessageSent(eventType)
		return nil
	default:
		return ErrBufferFull
	}
}

// Close закрывает очередь отправки; writePump отправит close frame после оставшихся сообщений
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Run запускает writePump и читает сообщения до разрыва соединения. Блокирует вызывающего.
func (c *Client) Run(handler MessageHandler) {
	c.config.Metrics.ConnectionOpened()
	defer c.config.Metrics.ConnectionClosed()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump(handler)
	c.Close()
	<-done
}

func (c *Client) readPump(handler MessageHandler) {
	defer func() {
		log.Printf("[WS] Read pump остановлен: session=%s conn=%s", c.SessionID, c.ConnectionID)
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WS] Ошибка чтения (session=%s conn=%s): %v", c.SessionID, c.ConnectionID, err)
			}
			return
		}

		raw = bytes.TrimSpace(bytes.Replace(raw, newline, space, -1))
		var message Message
		if err := json.Unmarshal(raw, &message); err != nil {
			c.config.Metrics.InvalidMessage()
			_ = c.Send(ERROR, ErrorData{Error: "Invalid message format", ErrorType: "invalid_message"})
			continue
		}

		c.config.Metrics.MessageReceived(message.Type)
		if err := safeHandleMessage(message, c, handler); err != nil {
			log.Printf("[WS] Ошибка обработчика (session=%s conn=%s): %v. Закрываем соединение.", c.SessionID, c.ConnectionID, err)
			return
		}
	}
}

// safeHandleMessage - обертка для вызова обработчика с recover
func safeHandleMessage(message Message, client *Client, handler MessageHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in message handler for session %s: %v\nStack trace:\n%s",
				client.SessionID, r, string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	if handler == nil {
		return nil
	}
	return handler(message, client)
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				return
			}
			if !ok {
				// Очередь закрыта: завершаем соединение штатно
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Ошибка записи (session=%s conn=%s): %v", c.SessionID, c.ConnectionID, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
