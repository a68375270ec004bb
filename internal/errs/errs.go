package errs

import "errors"

// Domain sentinel errors, mapped to HTTP status codes in handlers.
var (
	// ErrStoreUnavailable wraps any network or auth failure against the
	// remote store. Failed operations are surfaced, never retried here.
	ErrStoreUnavailable = errors.New("remote store unavailable")

	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionInactive     = errors.New("session inactive")
	ErrSessionCreateFailed = errors.New("session create failed")
	ErrAlreadyInSession    = errors.New("already in a session")
	ErrNoSession           = errors.New("no active session")
	ErrNotLead             = errors.New("operation requires lead role")
	ErrTileNotFound        = errors.New("tile not found")
)
