package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func TestSendDropsStalledClientWithoutPanic(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	go hub.Run()

	sessionID := uuid.New()
	healthy := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 4)}
	stalled := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte)}

	hub.register <- healthy
	hub.register <- stalled
	require.Eventually(t, func() bool {
		return hub.clientCount(sessionID) == 2
	}, time.Second, 5*time.Millisecond)

	// The stalled client has an unwritable channel, so this Send drops it.
	hub.Send(sessionID, "question_status", map[string]string{"status": "ANSWERED"})

	require.Eventually(t, func() bool {
		return hub.clientCount(sessionID) == 1
	}, time.Second, 5*time.Millisecond)

	// Its channel is closed exactly once, by the Run loop.
	select {
	case _, ok := <-stalled.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stalled client channel was never closed")
	}

	// A second Send must neither panic nor disturb the survivor.
	hub.Send(sessionID, "question_status", map[string]string{"status": "EXPIRED"})

	require.Len(t, healthy.Send, 2)
	assert.Equal(t, 1, hub.clientCount(sessionID))
}

func TestUnregisterUnknownClientIsNoOp(t *testing.T) {
	hub := NewHub(nil, noopLogger{})
	go hub.Run()

	sessionID := uuid.New()
	member := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 1)}
	hub.register <- member
	require.Eventually(t, func() bool {
		return hub.clientCount(sessionID) == 1
	}, time.Second, 5*time.Millisecond)

	stranger := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 1)}
	hub.unregister <- stranger

	hub.Send(sessionID, "question_status", map[string]string{"status": "MONITORING"})
	require.Eventually(t, func() bool {
		return len(member.Send) == 1
	}, time.Second, 5*time.Millisecond)
}
