package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewTileID returns a creation-time-derived tile id with a random suffix to
// keep ids unique within a tile list even for back-to-back adds.
func NewTileID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()[:4]
}

// DefaultTiles returns the tile set every new session (and fresh device)
// starts with: a dash tile that stays up until replaced, four common
// performance cues, and three inactive slots for custom cues.
func DefaultTiles() []TileConfig {
	return []TileConfig{
		{ID: "1", Text: "—", Color: "#FFFFFF", Duration: 0, FontSize: 36, FontWeight: "900", IsActive: true},
		{ID: "2", Text: "Pauză Instrumental", Color: "#FFA500", Duration: 6000, FontSize: 20, FontWeight: "bold", IsActive: true},
		{ID: "3", Text: "X2 Ref", Color: "#FF0000", Duration: 6000, FontSize: 20, FontWeight: "bold", IsActive: true},
		{ID: "4", Text: "Încă 1 str", Color: "#007AFF", Duration: 6000, FontSize: 20, FontWeight: "bold", IsActive: true},
		{ID: "5", Text: "Finalul Rărit", Color: "#34C759", Duration: 6000, FontSize: 20, FontWeight: "bold", IsActive: true},
		{ID: "6", Text: "", Color: "#FFFFFF", Duration: 0, FontSize: 20, FontWeight: "bold", IsActive: false},
		{ID: "7", Text: "", Color: "#FFFFFF", Duration: 0, FontSize: 20, FontWeight: "bold", IsActive: false},
		{ID: "8", Text: "", Color: "#FFFFFF", Duration: 0, FontSize: 20, FontWeight: "bold", IsActive: false},
	}
}

// AppSettings is the device-local settings document: the default tile set
// used outside any session plus global presentation preferences.
type AppSettings struct {
	Tiles            []TileConfig `json:"tiles"`
	GlobalTextSize   int          `json:"globalTextSize"`
	GlobalFontWeight string       `json:"globalFontWeight"`
	Theme            string       `json:"theme"`
}

// DefaultAppSettings returns the settings a fresh install starts with.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Tiles:            DefaultTiles(),
		GlobalTextSize:   20,
		GlobalFontWeight: "bold",
		Theme:            "dark",
	}
}

// TileUpdate is a partial tile mutation; nil fields are left unchanged.
type TileUpdate struct {
	Text       *string `json:"text,omitempty"`
	Color      *string `json:"color,omitempty"`
	Duration   *int64  `json:"duration,omitempty"`
	FontSize   *int    `json:"fontSize,omitempty"`
	FontWeight *string `json:"fontWeight,omitempty"`
	IsActive   *bool   `json:"isActive,omitempty"`
}

// Apply copies the set fields onto t.
func (u TileUpdate) Apply(t *TileConfig) {
	if u.Text != nil {
		t.Text = *u.Text
	}
	if u.Color != nil {
		t.Color = *u.Color
	}
	if u.Duration != nil {
		t.Duration = *u.Duration
	}
	if u.FontSize != nil {
		t.FontSize = *u.FontSize
	}
	if u.FontWeight != nil {
		t.FontWeight = *u.FontWeight
	}
	if u.IsActive != nil {
		t.IsActive = *u.IsActive
	}
}
