package model

// CreateSessionResponse is the response for POST /session.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
}

// JoinSessionRequest is the request body for POST /session/join.
type JoinSessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// SendCueRequest is the request body for POST /cue. Timestamp is assigned
// by the agent at send time.
type SendCueRequest struct {
	Text       string `json:"text"`
	Color      string `json:"color,omitempty"`
	FontSize   int    `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	Duration   int64  `json:"duration,omitempty"`
}

// Cue converts the request into a Cue; the timestamp is left for the sender.
func (r SendCueRequest) Cue() Cue {
	return Cue{
		Text:       r.Text,
		Color:      r.Color,
		FontSize:   r.FontSize,
		FontWeight: r.FontWeight,
		Duration:   r.Duration,
	}
}

// SendActionRequest is the request body for POST /actions.
type SendActionRequest struct {
	Type  string  `json:"type"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Scale float64 `json:"scale,omitempty"`
	Color string  `json:"color,omitempty"`
	Text  string  `json:"text,omitempty"`
	Page  int     `json:"page,omitempty"`
}

// Action converts the request into a LeadAction without a timestamp.
func (r SendActionRequest) Action() LeadAction {
	return LeadAction{
		Type:  r.Type,
		X:     r.X,
		Y:     r.Y,
		Scale: r.Scale,
		Color: r.Color,
		Text:  r.Text,
		Page:  r.Page,
	}
}

// AddTileRequest is the request body for adding a tile; the id is assigned
// at creation time.
type AddTileRequest struct {
	Text       string `json:"text"`
	Color      string `json:"color"`
	Duration   int64  `json:"duration"`
	FontSize   int    `json:"fontSize"`
	FontWeight string `json:"fontWeight"`
	IsActive   bool   `json:"isActive"`
}

// Tile converts the request into a TileConfig without an id.
func (r AddTileRequest) Tile() TileConfig {
	return TileConfig{
		Text:       r.Text,
		Color:      r.Color,
		Duration:   r.Duration,
		FontSize:   r.FontSize,
		FontWeight: r.FontWeight,
		IsActive:   r.IsActive,
	}
}

// UpdateSettingsRequest is the request body for PUT /settings; nil fields
// are left unchanged.
type UpdateSettingsRequest struct {
	GlobalTextSize   *int    `json:"globalTextSize,omitempty"`
	GlobalFontWeight *string `json:"globalFontWeight,omitempty"`
	Theme            *string `json:"theme,omitempty"`
}

// TilesResponse lists tiles for GET /session/tiles and friends.
type TilesResponse struct {
	Tiles []TileConfig `json:"tiles"`
}
