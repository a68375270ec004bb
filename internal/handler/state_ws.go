package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/silasdani/bandaid/internal/hub"
)

// StateWSHandler streams state snapshots to the UI over /ws/state.
type StateWSHandler struct {
	hub *hub.Hub
	log *zap.Logger
}

// NewStateWSHandler creates the state WebSocket handler.
func NewStateWSHandler(h *hub.Hub, log *zap.Logger) *StateWSHandler {
	return &StateWSHandler{hub: h, log: log}
}

// ServeWS upgrades the request to WebSocket and pushes snapshots until the
// UI disconnects. The connection is one-way; inbound messages are drained
// only to detect the close.
func (h *StateWSHandler) ServeWS(c *gin.Context) {
	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	peer, cleanup := h.hub.Register(conn)
	defer cleanup()

	go h.writePump(peer)
	h.readPump(peer)
}

func (h *StateWSHandler) readPump(p *hub.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for {
		if _, _, err := p.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("read error", zap.Error(err))
			}
			break
		}
	}
}

func (h *StateWSHandler) writePump(p *hub.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for data := range p.Send {
		if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
}
