package model

// Role of a device within a session.
type Role string

const (
	RoleNone Role = ""
	RoleLead Role = "lead"
	RoleBand Role = "band"
)

// Session is the session metadata record stored at sessions/{id}.
// Members, cue, lead actions and settings live under child paths and are
// written independently; MemberCount is a denormalized count maintained by
// separate writes, so it can transiently drift from the member map size
// under concurrent joins and leaves.
type Session struct {
	ID          string `json:"-"`
	RoleLead    string `json:"roleLead"`
	Active      bool   `json:"active"`
	CreatedAt   int64  `json:"createdAt"`
	EndedAt     int64  `json:"endedAt,omitempty"`
	MemberCount int    `json:"memberCount"`
}

// SessionMember is a device's participation record under
// sessions/{id}/members/{deviceId}.
type SessionMember struct {
	Role     Role  `json:"role"`
	JoinedAt int64 `json:"joinedAt"`
	LastSeen int64 `json:"lastSeen,omitempty"`
}

// Cue is the single current broadcast message at sessions/{id}/cue.
// Last write wins; an empty Text is the idiom for "clear the display".
// Duration is how long followers keep the cue visible, in milliseconds;
// zero or absent means the follower's configured default applies.
type Cue struct {
	Text       string `json:"text"`
	Color      string `json:"color,omitempty"`
	FontSize   int    `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	Duration   int64  `json:"duration,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// TileConfig is a reusable cue definition shown as a quick-send button.
type TileConfig struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Color      string `json:"color"`
	Duration   int64  `json:"duration"`
	FontSize   int    `json:"fontSize"`
	FontWeight string `json:"fontWeight"`
	IsActive   bool   `json:"isActive"`
}

// SessionSettings is the shared, lead-editable configuration stored at
// sessions/{id}/sessionSettings.
type SessionSettings struct {
	Tiles []TileConfig `json:"tiles"`
}

// LeadAction is an entry in the append-only sessions/{id}/leadActions log.
type LeadAction struct {
	Type      string  `json:"type"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Color     string  `json:"color,omitempty"`
	Text      string  `json:"text,omitempty"`
	Page      int     `json:"page,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// Lead action types.
const (
	ActionScroll     = "SCROLL"
	ActionTap        = "TAP"
	ActionZoom       = "ZOOM"
	ActionHighlight  = "HIGHLIGHT"
	ActionAnnotate   = "ANNOTATE"
	ActionPageChange = "PAGE_CHANGE"
	ActionPDFUpload  = "PDF_UPLOAD"
	ActionPDFSelect  = "PDF_SELECT"
)

// Snapshot is the device's reactive view of the current session, pushed to
// presentation clients on every state change.
type Snapshot struct {
	Role       Role                     `json:"role"`
	SessionID  string                   `json:"sessionId,omitempty"`
	Session    *Session                 `json:"session,omitempty"`
	Settings   *SessionSettings         `json:"sessionSettings,omitempty"`
	Cue        *Cue                     `json:"cue,omitempty"`
	Members    map[string]SessionMember `json:"members,omitempty"`
	LeadAction *LeadAction              `json:"leadAction,omitempty"`
	Connected  bool                     `json:"connected"`
}
