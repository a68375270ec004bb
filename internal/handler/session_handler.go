package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/silasdani/bandaid/internal/model"
	"github.com/silasdani/bandaid/internal/session"
)

// SessionHandler exposes the session lifecycle over the local REST API.
type SessionHandler struct {
	ctl *session.Controller
	log *zap.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(ctl *session.Controller, log *zap.Logger) *SessionHandler {
	return &SessionHandler{ctl: ctl, log: log}
}

// Create godoc
// POST /session
func (h *SessionHandler) Create(c *gin.Context) {
	id, err := h.ctl.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.CreateSessionResponse{
		SessionID: id,
		Role:      string(model.RoleLead),
	})
}

// Join godoc
// POST /session/join
func (h *SessionHandler) Join(c *gin.Context) {
	var req model.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if err := h.ctl.Join(c.Request.Context(), req.SessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ctl.Snapshot())
}

// Leave godoc
// POST /session/leave
func (h *SessionHandler) Leave(c *gin.Context) {
	if err := h.ctl.Leave(c.Request.Context()); err != nil {
		// Local state is already cleared; report the remote failure.
		h.log.Warn("leave finished with store errors", zap.Error(err))
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// End godoc
// POST /session/end
func (h *SessionHandler) End(c *gin.Context) {
	if err := h.ctl.End(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Logout godoc
// POST /session/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.ctl.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// State godoc
// GET /state
func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.Snapshot())
}

// Tiles godoc
// GET /session/tiles
func (h *SessionHandler) Tiles(c *gin.Context) {
	tiles, err := h.ctl.SessionTiles()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.TilesResponse{Tiles: tiles})
}

// ActiveTiles godoc
// GET /session/tiles/active
func (h *SessionHandler) ActiveTiles(c *gin.Context) {
	tiles, err := h.ctl.SessionActiveTiles()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.TilesResponse{Tiles: tiles})
}

// AddTile godoc
// POST /session/tiles
func (h *SessionHandler) AddTile(c *gin.Context) {
	var req model.AddTileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	tile, err := h.ctl.AddSessionTile(c.Request.Context(), req.Tile())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tile)
}

// UpdateTile godoc
// PATCH /session/tiles/:id
func (h *SessionHandler) UpdateTile(c *gin.Context) {
	var update model.TileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if err := h.ctl.UpdateSessionTile(c.Request.Context(), c.Param("id"), update); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveTile godoc
// DELETE /session/tiles/:id
func (h *SessionHandler) RemoveTile(c *gin.Context) {
	if err := h.ctl.RemoveSessionTile(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
