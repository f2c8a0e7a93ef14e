package notify

import (
	"net/http"
	"strconv"

	"fundis/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	loggerf  func(format string, args ...interface{})
}

func NewHandler(hub *Hub, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients come from a different origin than the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		loggerf: loggerf,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/mpesa/:id/events", h.Watch)
}

// Watch upgrades the request and parks the connection until the payment
// reaches a terminal state or the client goes away.
func (h *Handler) Watch(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "session id must be an integer")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.loggerf("level=error msg=websocket upgrade failed session_id=%d err=%v", sessionID, err)
		return
	}

	h.hub.Register(sessionID, conn)
	h.loggerf("level=info msg=payment watcher connected session_id=%d", sessionID)

	go func() {
		defer h.hub.Unregister(sessionID)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
