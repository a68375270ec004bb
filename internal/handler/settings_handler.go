package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silasdani/bandaid/internal/model"
	"github.com/silasdani/bandaid/internal/settings"
)

// SettingsHandler exposes the device-local settings document.
type SettingsHandler struct {
	store *settings.Store
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Get godoc
// GET /settings
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Settings())
}

// Update godoc
// PUT /settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	cur := h.store.Settings()
	textSize := cur.GlobalTextSize
	fontWeight := cur.GlobalFontWeight
	theme := cur.Theme
	if req.GlobalTextSize != nil {
		textSize = *req.GlobalTextSize
	}
	if req.GlobalFontWeight != nil {
		fontWeight = *req.GlobalFontWeight
	}
	if req.Theme != nil {
		theme = *req.Theme
	}
	if err := h.store.UpdateGlobal(textSize, fontWeight, theme); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Settings())
}

// Reset godoc
// POST /settings/reset
func (h *SettingsHandler) Reset(c *gin.Context) {
	if err := h.store.ResetToDefaults(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Settings())
}

// Tiles godoc
// GET /settings/tiles
func (h *SettingsHandler) Tiles(c *gin.Context) {
	c.JSON(http.StatusOK, model.TilesResponse{Tiles: h.store.Settings().Tiles})
}

// ActiveTiles godoc
// GET /settings/tiles/active
func (h *SettingsHandler) ActiveTiles(c *gin.Context) {
	c.JSON(http.StatusOK, model.TilesResponse{Tiles: h.store.ActiveTiles()})
}

// AddTile godoc
// POST /settings/tiles
func (h *SettingsHandler) AddTile(c *gin.Context) {
	var req model.AddTileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	tile, err := h.store.AddTile(req.Tile())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tile)
}

// UpdateTile godoc
// PATCH /settings/tiles/:id
func (h *SettingsHandler) UpdateTile(c *gin.Context) {
	var update model.TileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if err := h.store.UpdateTile(c.Param("id"), update); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveTile godoc
// DELETE /settings/tiles/:id
func (h *SettingsHandler) RemoveTile(c *gin.Context) {
	if err := h.store.RemoveTile(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
