// Package session owns the device's session lifecycle: its role, the
// in-memory mirror of the remote session record, and the live subscriptions
// that keep that mirror current. The remote store is the source of truth;
// this controller is one device's view of it.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/silasdani/bandaid/internal/cue"
	"github.com/silasdani/bandaid/internal/identity"
	"github.com/silasdani/bandaid/internal/model"
	"github.com/silasdani/bandaid/internal/store"
)

// Options tunes controller behavior.
type Options struct {
	// DefaultCueDuration applies to received cues that carry no duration.
	DefaultCueDuration time.Duration
	// HeartbeatInterval is the lastSeen refresh period while in a session.
	// Zero disables the heartbeat (tests).
	HeartbeatInterval time.Duration
}

// Controller is the per-process session state machine. All mutating
// operations cross the network through the store; subscription callbacks
// arrive on store goroutines and are guarded by an epoch counter so a late
// callback can never resurrect state for a session the device has left.
type Controller struct {
	log      *zap.Logger
	store    store.Store
	identity *identity.Store
	opts     Options

	presenter *cue.Presenter

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu         sync.Mutex
	deviceID   string
	role       model.Role
	sessionID  string
	session    *model.Session
	settings   *model.SessionSettings
	members    map[string]model.SessionMember
	leadAction *model.LeadAction
	connected  bool
	joinedAt   int64
	epoch      uint64
	cancels    []func()
	stopHB     chan struct{}
	observers  map[int]func(model.Snapshot)
	nextObsID  int
}

// NewController builds the controller and ensures the device identity
// exists. It does not touch the remote store; call Resume for that.
func NewController(st store.Store, ident *identity.Store, opts Options, log *zap.Logger) (*Controller, error) {
	deviceID, err := ident.EnsureDeviceID()
	if err != nil {
		return nil, err
	}
	baseCtx, baseCancel := context.WithCancel(context.Background())
	c := &Controller{
		log:        log,
		store:      st,
		identity:   ident,
		opts:       opts,
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		deviceID:   deviceID,
		observers:  make(map[int]func(model.Snapshot)),
	}
	c.presenter = cue.NewPresenter(opts.DefaultCueDuration, c.onCueChange)
	return c, nil
}

// DeviceID returns this installation's identity.
func (c *Controller) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceID
}

// Snapshot returns a copy of the device's current reactive state.
func (c *Controller) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Observe registers fn to receive a snapshot after every state change and
// returns its unregister function.
func (c *Controller) Observe(fn func(model.Snapshot)) func() {
	c.mu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Close tears down subscriptions, the heartbeat and any pending cue timer.
// It does not leave the session: a stopped agent is an offline member, not
// a departed one.
func (c *Controller) Close() {
	c.mu.Lock()
	c.epoch++
	cancels := c.cancels
	c.cancels = nil
	stop := c.stopHB
	c.stopHB = nil
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if stop != nil {
		close(stop)
	}
	c.presenter.Stop()
	c.baseCancel()
}

func (c *Controller) snapshotLocked() model.Snapshot {
	snap := model.Snapshot{
		Role:      c.role,
		SessionID: c.sessionID,
		Connected: c.connected,
	}
	if c.session != nil {
		s := *c.session
		snap.Session = &s
	}
	if c.settings != nil {
		st := model.SessionSettings{Tiles: append([]model.TileConfig(nil), c.settings.Tiles...)}
		snap.Settings = &st
	}
	if len(c.members) > 0 {
		members := make(map[string]model.SessionMember, len(c.members))
		for k, v := range c.members {
			members[k] = v
		}
		snap.Members = members
	}
	if c.leadAction != nil {
		a := *c.leadAction
		snap.LeadAction = &a
	}
	snap.Cue = c.presenter.Current()
	return snap
}

func (c *Controller) notify() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	fns := make([]func(model.Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Controller) onCueChange(*model.Cue) {
	c.notify()
}

// attach installs the session state, starts the role's subscriptions and
// the heartbeat, and marks the device connected.
func (c *Controller) attach(id string, role model.Role, meta *model.Session,
	settings *model.SessionSettings, members map[string]model.SessionMember, joinedAt int64) {

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.role = role
	c.sessionID = id
	c.session = meta
	c.settings = settings
	c.members = members
	c.leadAction = nil
	c.connected = true
	c.joinedAt = joinedAt
	c.mu.Unlock()

	c.subscribeSession(id, role, epoch)
	c.startHeartbeat(id, epoch)
	c.notify()
}

// detach tears the session down: the epoch bump makes in-flight callbacks
// inert before local state is cleared, then the listeners are cancelled.
func (c *Controller) detach(clearPersisted bool) {
	c.mu.Lock()
	c.epoch++
	cancels := c.cancels
	c.cancels = nil
	stop := c.stopHB
	c.stopHB = nil
	c.role = model.RoleNone
	c.sessionID = ""
	c.session = nil
	c.settings = nil
	c.members = nil
	c.leadAction = nil
	c.connected = false
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if stop != nil {
		close(stop)
	}
	c.presenter.Clear()
	if clearPersisted {
		if err := c.identity.ClearSession(); err != nil {
			c.log.Warn("clear persisted session failed", zap.Error(err))
		}
	}
	c.notify()
}
