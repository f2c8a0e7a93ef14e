package notify

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks one websocket connection per payment session. The browser opens
// the socket right after starting a payment and receives the single terminal
// event for that session.
type Hub struct {
	connections map[int64]*websocket.Conn
	mutex       sync.RWMutex
	loggerf     func(format string, args ...interface{})
}

func NewHub(loggerf func(format string, args ...interface{})) *Hub {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Hub{
		connections: make(map[int64]*websocket.Conn),
		loggerf:     loggerf,
	}
}

func (h *Hub) Register(sessionID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[sessionID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[sessionID] = conn
}

func (h *Hub) Unregister(sessionID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[sessionID]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, sessionID)
	}
}

func (h *Hub) send(sessionID int64, message interface{}) bool {
	h.mutex.RLock()
	conn, exists := h.connections[sessionID]
	h.mutex.RUnlock()

	if !exists || conn == nil {
		return false
	}

	if err := conn.WriteJSON(message); err != nil {
		h.Unregister(sessionID)
		return false
	}

	return true
}

// PaymentSucceeded and PaymentFailed deliver the terminal payment event. A
// session with no connected watcher drops the event; the browser falls back
// to polling the session endpoint.

func (h *Hub) PaymentSucceeded(sessionID int64, receipt string) {
	delivered := h.send(sessionID, PaymentEvent{
		Type:      EventPaymentSucceeded,
		SessionID: sessionID,
		Receipt:   receipt,
	})
	if !delivered {
		h.loggerf("level=info msg=no watcher for payment event session_id=%d event=%s", sessionID, EventPaymentSucceeded)
	}
}

func (h *Hub) PaymentFailed(sessionID int64, reason string) {
	delivered := h.send(sessionID, PaymentEvent{
		Type:      EventPaymentFailed,
		SessionID: sessionID,
		Reason:    reason,
	})
	if !delivered {
		h.loggerf("level=info msg=no watcher for payment event session_id=%d event=%s", sessionID, EventPaymentFailed)
	}
}

func (h *Hub) WatcherCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for sessionID, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, sessionID)
	}
}
