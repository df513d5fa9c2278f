package websocket

import (
	"sync"
	"time"
)

// Metrics - счетчики игровых WebSocket соединений процесса
type Metrics struct {
	totalConnections  int64
	activeConnections int64
	messagesSent      int64
	messagesReceived  int64
	invalidMessages   int64
	startTime         time.Time

	sentByType     map[string]int64
	receivedByType map[string]int64

	mu sync.RWMutex
}

// NewMetrics создает пустые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		startTime:      time.Now(),
		sentByType:     make(map[string]int64),
		receivedByType: make(map[string]int64),
	}
}

// ConnectionOpened учитывает новое соединение
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConnections++
}

// ConnectionClosed уменьшает счетчик активных соединений
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConnections > 0 {
		m.activeConnections--
	}
}

// MessageSent учитывает сообщение сервера
func (m *Metrics) MessageSent(messageType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesSent++
	m.sentByType[messageType]++
}

// MessageReceived учитывает разобранное сообщение клиента
func (m *Metrics) MessageReceived(messageType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesReceived++
	m.receivedByType[messageType]++
}

// InvalidMessage учитывает сообщение, которое не удалось разобрать
func (m *Metrics) InvalidMessage() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidMessages++
}

// Snapshot возвращает метрики в формате карты для JSON-ответа
func (m *Metrics) Snapshot() map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	sent := make(map[string]int64, len(m.sentByType))
	for t, n := range m.sentByType {
		sent[t] = n
	}
	received := make(map[string]int64, len(m.receivedByType))
	for t, n := range m.receivedByType {
		received[t] = n
	}

	return map[string]interface{}{
		"total_connections":  m.totalConnections,
		"active_connections": m.activeConnections,
		"messages_sent":      m.messagesSent,
		"messages_received":  m.messagesReceived,
		"invalid_messages":   m.invalidMessages,
		"sent_by_type":       sent,
		"received_by_type":   received,
		"uptime_seconds":     time.Since(m.startTime).Seconds(),
		"start_time":         m.startTime.Format(time.RFC3339),
	}
}
