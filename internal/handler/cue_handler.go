package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silasdani/bandaid/internal/model"
	"github.com/silasdani/bandaid/internal/session"
)

// CueHandler exposes cue and lead-action sending over the local REST API.
type CueHandler struct {
	ctl *session.Controller
}

// NewCueHandler creates a cue handler.
func NewCueHandler(ctl *session.Controller) *CueHandler {
	return &CueHandler{ctl: ctl}
}

// SendCue godoc
// POST /cue
func (h *CueHandler) SendCue(c *gin.Context) {
	var req model.SendCueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if err := h.ctl.SendCue(c.Request.Context(), req.Cue()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// ClearCue godoc
// POST /cue/clear
func (h *CueHandler) ClearCue(c *gin.Context) {
	h.ctl.ClearCue()
	c.Status(http.StatusNoContent)
}

// SendAction godoc
// POST /actions
func (h *CueHandler) SendAction(c *gin.Context) {
	var req model.SendActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if err := h.ctl.SendLeadAction(c.Request.Context(), req.Action()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
