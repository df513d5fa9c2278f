package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.MessageSent(QUESTION_START)
	m.MessageSent(QUESTION_START)
	m.MessageReceived(GUESS)
	m.InvalidMessage()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap["total_connections"])
	assert.Equal(t, int64(1), snap["active_connections"])
	assert.Equal(t, int64(2), snap["messages_sent"])
	assert.Equal(t, int64(1), snap["messages_received"])
	assert.Equal(t, int64(1), snap["invalid_messages"])
	assert.Equal(t, map[string]int64{QUESTION_START: 2}, snap["sent_by_type"])
	assert.Equal(t, map[string]int64{GUESS: 1}, snap["received_by_type"])
}

func TestMetrics_ActiveNeverNegative(t *testing.T) {
	m := NewMetrics()
	m.ConnectionClosed()
	assert.Equal(t, int64(0), m.Snapshot()["active_connections"])
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ConnectionOpened()
		m.MessageSent(ERROR)
		m.MessageReceived(QUIT)
		m.InvalidMessage()
		m.ConnectionClosed()
	})
	assert.Empty(t, m.Snapshot())
}
