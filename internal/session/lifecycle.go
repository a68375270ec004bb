package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/silasdani/bandaid/internal/errs"
	"github.com/silasdani/bandaid/internal/model"
	"github.com/silasdani/bandaid/internal/store"
)

// Create generates a session code, writes the new session record with this
// device as its sole (lead) member plus the default tile set, and
// transitions the device to lead. On any write failure the device stays
// idle and partially written records are best-effort rolled back.
func (c *Controller) Create(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.sessionID != "" {
		c.mu.Unlock()
		return "", errs.ErrAlreadyInSession
	}
	deviceID := c.deviceID
	c.mu.Unlock()

	id, err := c.newSessionCode(ctx)
	if err != nil {
		return "", err
	}

	now := time.Now().UnixMilli()
	meta := model.Session{ID: id, RoleLead: deviceID, Active: true, CreatedAt: now, MemberCount: 1}
	member := model.SessionMember{Role: model.RoleLead, JoinedAt: now, LastSeen: now}
	settings := model.SessionSettings{Tiles: model.DefaultTiles()}

	if err := c.store.Write(ctx, store.SessionPath(id), meta); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrSessionCreateFailed, err)
	}
	if err := c.store.Write(ctx, store.MemberPath(id, deviceID), member); err != nil {
		_ = c.store.Write(ctx, store.SessionPath(id), nil)
		return "", fmt.Errorf("%w: %v", errs.ErrSessionCreateFailed, err)
	}
	if err := c.store.Write(ctx, store.SessionSettingsPath(id), settings); err != nil {
		_ = c.store.Write(ctx, store.MemberPath(id, deviceID), nil)
		_ = c.store.Write(ctx, store.SessionPath(id), nil)
		return "", fmt.Errorf("%w: %v", errs.ErrSessionCreateFailed, err)
	}

	if err := c.identity.SaveSession(id, model.RoleLead); err != nil {
		c.log.Warn("persist session keys failed", zap.Error(err))
	}
	c.log.Info("session created",
		zap.String("session_id", id),
		zap.String("device_id", deviceID))

	members := map[string]model.SessionMember{deviceID: member}
	c.attach(id, model.RoleLead, &meta, &settings, members, now)
	return id, nil
}

// Join registers this device as a band member of the session. A nonexistent
// code yields ErrSessionNotFound, a closed session ErrSessionInactive; in
// both cases the device's state is unchanged. Rejoining with the same
// device id overwrites the existing member entry.
func (c *Controller) Join(ctx context.Context, id string) error {
	id = strings.ToUpper(strings.TrimSpace(id))

	c.mu.Lock()
	if c.sessionID != "" {
		c.mu.Unlock()
		return errs.ErrAlreadyInSession
	}
	deviceID := c.deviceID
	c.mu.Unlock()

	raw, err := c.store.Read(ctx, store.SessionPath(id))
	if err != nil {
		return err
	}
	if raw == nil {
		return errs.ErrSessionNotFound
	}
	var meta model.Session
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("session %s: decode: %w", id, err)
	}
	if !meta.Active {
		return errs.ErrSessionInactive
	}
	meta.ID = id

	now := time.Now().UnixMilli()
	member := model.SessionMember{Role: model.RoleBand, JoinedAt: now, LastSeen: now}
	if err := c.store.Write(ctx, store.MemberPath(id, deviceID), member); err != nil {
		return err
	}
	// Denormalized count, separate write: drifts under concurrent joins and
	// leaves, resolved only by the next reconciling read.
	meta.MemberCount++
	if err := c.store.Write(ctx, store.SessionPath(id), meta); err != nil {
		return err
	}

	settings := c.fetchSettings(ctx, id)
	members := c.fetchMembers(ctx, id)
	members[deviceID] = member

	if err := c.identity.SaveSession(id, model.RoleBand); err != nil {
		c.log.Warn("persist session keys failed", zap.Error(err))
	}
	c.log.Info("session joined",
		zap.String("session_id", id),
		zap.String("device_id", deviceID),
		zap.Int("member_count", meta.MemberCount))

	c.attach(id, model.RoleBand, &meta, settings, members, now)
	return nil
}

// Leave removes this device's member entry and decrements the member count,
// ending the session when the count reaches zero, the only automatic
// termination path. Local state is cleared even when the remote writes
// fail; the first failure is returned.
func (c *Controller) Leave(ctx context.Context) error {
	c.mu.Lock()
	id := c.sessionID
	deviceID := c.deviceID
	c.mu.Unlock()
	if id == "" {
		return nil
	}

	// Listeners die before any state is cleared or written, otherwise a
	// late callback could repopulate the session we are leaving.
	c.detach(true)

	var firstErr error
	if err := c.store.Write(ctx, store.MemberPath(id, deviceID), nil); err != nil {
		firstErr = err
	}
	raw, err := c.store.Read(ctx, store.SessionPath(id))
	if err != nil && firstErr == nil {
		firstErr = err
	}
	if err == nil && raw != nil {
		var meta model.Session
		if err := json.Unmarshal(raw, &meta); err == nil {
			meta.ID = id
			meta.MemberCount--
			if meta.MemberCount < 0 {
				meta.MemberCount = 0
			}
			if meta.MemberCount == 0 {
				meta.Active = false
				meta.EndedAt = time.Now().UnixMilli()
			}
			if err := c.store.Write(ctx, store.SessionPath(id), meta); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	c.log.Info("session left", zap.String("session_id", id), zap.String("device_id", deviceID))
	return firstErr
}

// End closes the session for everyone, regardless of member count. Other
// devices observe the termination through their own session subscription.
// Lead only.
func (c *Controller) End(ctx context.Context) error {
	c.mu.Lock()
	id := c.sessionID
	role := c.role
	c.mu.Unlock()
	if id == "" {
		return errs.ErrNoSession
	}
	if role != model.RoleLead {
		return errs.ErrNotLead
	}

	raw, err := c.store.Read(ctx, store.SessionPath(id))
	if err != nil {
		return err
	}
	if raw == nil {
		c.detach(true)
		return errs.ErrSessionNotFound
	}
	var meta model.Session
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("session %s: decode: %w", id, err)
	}
	meta.ID = id
	meta.Active = false
	meta.EndedAt = time.Now().UnixMilli()
	if err := c.store.Write(ctx, store.SessionPath(id), meta); err != nil {
		return err
	}
	c.log.Info("session ended", zap.String("session_id", id))
	c.detach(true)
	return nil
}

// Logout wipes the persisted device identity and all in-memory state. The
// remote store is not notified; a fresh device id is issued immediately.
func (c *Controller) Logout(ctx context.Context) error {
	c.detach(false)
	if err := c.identity.Reset(); err != nil {
		return err
	}
	deviceID, err := c.identity.EnsureDeviceID()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.deviceID = deviceID
	c.mu.Unlock()
	c.log.Info("logged out", zap.String("device_id", deviceID))
	c.notify()
	return nil
}

// Resume re-attaches to the session persisted by a previous run. Missing
// keys mean no resumable session. A session that is gone or no longer
// active clears the persisted keys; a store failure keeps them for the next
// launch and leaves the device disconnected.
func (c *Controller) Resume(ctx context.Context) error {
	sessionID, role, err := c.identity.Session()
	if err != nil {
		return err
	}
	if sessionID == "" || role == model.RoleNone {
		return nil
	}

	raw, err := c.store.Read(ctx, store.SessionPath(sessionID))
	if err != nil {
		c.log.Warn("resume: session fetch failed",
			zap.String("session_id", sessionID), zap.Error(err))
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.notify()
		return err
	}
	if raw == nil {
		c.log.Info("resume: session gone", zap.String("session_id", sessionID))
		return c.identity.ClearSession()
	}
	var meta model.Session
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("session %s: decode: %w", sessionID, err)
	}
	if !meta.Active {
		c.log.Info("resume: session inactive", zap.String("session_id", sessionID))
		return c.identity.ClearSession()
	}
	meta.ID = sessionID

	settings := c.fetchSettings(ctx, sessionID)
	members := c.fetchMembers(ctx, sessionID)
	joinedAt := time.Now().UnixMilli()
	if m, ok := members[c.DeviceID()]; ok {
		joinedAt = m.JoinedAt
	}

	c.log.Info("session resumed",
		zap.String("session_id", sessionID),
		zap.String("role", string(role)))
	c.attach(sessionID, role, &meta, settings, members, joinedAt)
	return nil
}

func (c *Controller) fetchSettings(ctx context.Context, id string) *model.SessionSettings {
	raw, err := c.store.Read(ctx, store.SessionSettingsPath(id))
	if err != nil || raw == nil {
		return &model.SessionSettings{}
	}
	var settings model.SessionSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		c.log.Warn("decode session settings failed", zap.String("session_id", id), zap.Error(err))
		return &model.SessionSettings{}
	}
	return &settings
}

func (c *Controller) fetchMembers(ctx context.Context, id string) map[string]model.SessionMember {
	members := make(map[string]model.SessionMember)
	raw, err := c.store.Read(ctx, store.MembersPath(id))
	if err != nil || raw == nil {
		return members
	}
	if err := json.Unmarshal(raw, &members); err != nil {
		c.log.Warn("decode members failed", zap.String("session_id", id), zap.Error(err))
	}
	return members
}
