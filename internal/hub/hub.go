package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/silasdani/bandaid/internal/model"
)

// Peer represents a connected UI WebSocket.
type Peer struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans the agent's state snapshots out to UI WebSocket connections.
type Hub struct {
	mu       sync.RWMutex
	peers    map[*Peer]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
	last     []byte
}

// New creates a hub with the given socket buffer sizes.
func New(readBuf, writeBuf int, log *zap.Logger) *Hub {
	return &Hub{
		peers: make(map[*Peer]struct{}),
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			// Local UI only; in prod set CheckOrigin.
		},
	}
}

// Register adds a connection and returns the peer and a cleanup function.
// The current snapshot, if any, is queued immediately so a fresh UI
// renders without waiting for the next state change.
func (h *Hub) Register(conn *websocket.Conn) (*Peer, func()) {
	p := &Peer{
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	h.mu.Lock()
	h.peers[p] = struct{}{}
	if h.last != nil {
		p.Send <- h.last
	}
	h.mu.Unlock()

	h.log.Info("ui connected", zap.String("remote", conn.RemoteAddr().String()))

	cleanup := func() {
		h.unregister(p)
	}
	return p, cleanup
}

func (h *Hub) unregister(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; !ok {
		return
	}
	delete(h.peers, p)
	close(p.Send)
	h.log.Info("ui disconnected", zap.String("remote", p.Conn.RemoteAddr().String()))
}

// Broadcast marshals the snapshot once and queues it on every peer.
// Slow peers are skipped; they will catch up on the next snapshot. Sends
// happen under the lock: they never block, and unregister closes Send under
// the same lock, so a disconnect can't close a channel mid-broadcast.
func (h *Hub) Broadcast(snap model.Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		h.log.Error("snapshot marshal failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = raw
	for p := range h.peers {
		select {
		case p.Send <- raw:
		default:
			h.log.Warn("ui send buffer full", zap.String("remote", p.Conn.RemoteAddr().String()))
		}
	}
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (h *Hub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}

// PeerCount returns the number of connected UIs.
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// CloseAll disconnects every peer, used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[*Peer]struct{})
	h.mu.Unlock()

	for p := range peers {
		close(p.Send)
		_ = p.Conn.Close()
	}
}
