package session

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/silasdani/bandaid/internal/errs"
	"github.com/silasdani/bandaid/internal/model"
	"github.com/silasdani/bandaid/internal/store"
)

// SendCue broadcasts the cue to the session, stamping it with the send
// time. Last write wins; there is no queue. Lead only.
func (c *Controller) SendCue(ctx context.Context, cu model.Cue) error {
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
	cu.Timestamp = time.Now().UnixMilli()
	if err := c.store.Write(ctx, store.CuePath(id), cu); err != nil {
		return err
	}
	c.log.Debug("cue sent",
		zap.String("session_id", id),
		zap.String("text", cu.Text),
		zap.Int64("duration_ms", cu.Duration))
	return nil
}

// SendLeadAction appends an action to the session's action log. Lead only.
func (c *Controller) SendLeadAction(ctx context.Context, action model.LeadAction) error {
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
	if action.Type == "" {
		action.Type = model.ActionScroll
	}
	action.Timestamp = time.Now().UnixMilli()
	return c.store.Append(ctx, store.LeadActionsPath(id), action)
}

// ClearCue removes the locally visible cue. Display state only; nothing is
// written to the store.
func (c *Controller) ClearCue() {
	c.presenter.Clear()
}

// subscribeSession establishes the listeners for a (role, session) pair,
// exactly once per attach. Band devices additionally follow cues, lead
// actions and shared settings; both roles watch the session record (for
// remote termination) and the member map.
func (c *Controller) subscribeSession(id string, role model.Role, epoch uint64) {
	c.addSubscription(epoch, store.SessionPath(id), c.handleMeta(epoch, id))
	c.addSubscription(epoch, store.MembersPath(id), c.handleMembers(epoch))
	if role == model.RoleBand {
		c.addSubscription(epoch, store.CuePath(id), c.handleCue(epoch))
		c.addSubscription(epoch, store.LeadActionsPath(id), c.handleLeadActions(epoch))
		c.addSubscription(epoch, store.SessionSettingsPath(id), c.handleSettings(epoch))
	}
}

func (c *Controller) addSubscription(epoch uint64, path string, fn func(json.RawMessage)) {
	cancel, err := c.store.Subscribe(c.baseCtx, path, fn)
	if err != nil {
		c.log.Warn("subscribe failed", zap.String("path", path), zap.Error(err))
		return
	}
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		cancel()
		return
	}
	c.cancels = append(c.cancels, cancel)
	c.mu.Unlock()
}

// handleMeta mirrors the session record and detects remote termination:
// active=false on the subscription is how a device learns the session
// ended, whether by the lead's explicit end or by the last member leaving.
func (c *Controller) handleMeta(epoch uint64, id string) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		if raw == nil {
			return
		}
		var meta model.Session
		if err := json.Unmarshal(raw, &meta); err != nil {
			c.log.Warn("decode session failed", zap.String("session_id", id), zap.Error(err))
			return
		}
		meta.ID = id

		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return
		}
		c.session = &meta
		ended := !meta.Active
		c.mu.Unlock()

		if ended {
			c.log.Info("session ended remotely", zap.String("session_id", id))
			c.detach(true)
			return
		}
		c.notify()
	}
}

func (c *Controller) handleMembers(epoch uint64) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		members := make(map[string]model.SessionMember)
		if raw != nil {
			if err := json.Unmarshal(raw, &members); err != nil {
				c.log.Warn("decode members failed", zap.Error(err))
				return
			}
		}
		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return
		}
		c.members = members
		c.mu.Unlock()
		c.notify()
	}
}

func (c *Controller) handleCue(epoch uint64) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		if raw == nil {
			return
		}
		var cu model.Cue
		if err := json.Unmarshal(raw, &cu); err != nil {
			c.log.Warn("decode cue failed", zap.Error(err))
			return
		}
		c.mu.Lock()
		live := c.epoch == epoch
		c.mu.Unlock()
		if !live {
			return
		}
		c.presenter.Show(cu)
	}
}

// handleLeadActions receives the whole action log object and surfaces the
// entry with the greatest key; append keys are generated in increasing
// order, so that is the most recent action.
func (c *Controller) handleLeadActions(epoch uint64) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		if raw == nil {
			return
		}
		var log map[string]model.LeadAction
		if err := json.Unmarshal(raw, &log); err != nil {
			c.log.Warn("decode lead actions failed", zap.Error(err))
			return
		}
		if len(log) == 0 {
			return
		}
		keys := make([]string, 0, len(log))
		for k := range log {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		latest := log[keys[len(keys)-1]]

		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return
		}
		c.leadAction = &latest
		c.mu.Unlock()
		c.notify()
	}
}

func (c *Controller) handleSettings(epoch uint64) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		if raw == nil {
			return
		}
		var settings model.SessionSettings
		if err := json.Unmarshal(raw, &settings); err != nil {
			c.log.Warn("decode session settings failed", zap.Error(err))
			return
		}
		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return
		}
		c.settings = &settings
		c.mu.Unlock()
		c.notify()
	}
}

// startHeartbeat refreshes this member's lastSeen until the session is left
// or the controller closes.
func (c *Controller) startHeartbeat(id string, epoch uint64) {
	if c.opts.HeartbeatInterval <= 0 {
		return
	}
	stop := make(chan struct{})
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.stopHB = stop
	deviceID := c.deviceID
	role := c.role
	joinedAt := c.joinedAt
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(c.opts.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				member := model.SessionMember{
					Role:     role,
					JoinedAt: joinedAt,
					LastSeen: time.Now().UnixMilli(),
				}
				ctx, cancel := context.WithTimeout(c.baseCtx, 10*time.Second)
				if err := c.store.Write(ctx, store.MemberPath(id, deviceID), member); err != nil {
					c.log.Warn("heartbeat write failed",
						zap.String("session_id", id), zap.Error(err))
				}
				cancel()
			}
		}
	}()
}
