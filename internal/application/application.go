package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/silasdani/bandaid/internal/config"
	"github.com/silasdani/bandaid/internal/database"
	"github.com/silasdani/bandaid/internal/handler"
	"github.com/silasdani/bandaid/internal/hub"
	"github.com/silasdani/bandaid/internal/identity"
	"github.com/silasdani/bandaid/internal/router"
	"github.com/silasdani/bandaid/internal/session"
	"github.com/silasdani/bandaid/internal/settings"
	"github.com/silasdani/bandaid/internal/store"
)

// Agent is the device agent application: session state machine, remote
// store connection, and the local HTTP + WebSocket API the UI talks to.
type Agent struct {
	cfg   *config.Config
	log   *zap.Logger
	srv   *http.Server
	db    *gorm.DB
	store *store.ValkeyStore
	ctl   *session.Controller
	hub   *hub.Hub

	unobserve func()
}

// New creates the agent: validates config, runs migrations, opens the
// local database, connects to the store, and builds the router.
func New(cfg *config.Config) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	ident := identity.NewStore(db)
	local, err := settings.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := store.NewValkey(connectCtx, cfg.Valkey.Addr, cfg.Valkey.Password, cfg.Valkey.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	ctl, err := session.NewController(st, ident, session.Options{
		DefaultCueDuration: cfg.CueDefaultDuration,
		HeartbeatInterval:  cfg.MemberHeartbeat,
	}, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("session: %w", err)
	}

	h := hub.New(cfg.WSReadBufferSize, cfg.WSWriteBufferSize, logger)
	unobserve := ctl.Observe(h.Broadcast)

	sessionHandler := handler.NewSessionHandler(ctl, logger)
	cueHandler := handler.NewCueHandler(ctl)
	settingsHandler := handler.NewSettingsHandler(local)
	stateWS := handler.NewStateWSHandler(h, logger)
	health := handler.NewHealthHandler()

	r := router.New(sessionHandler, cueHandler, settingsHandler, stateWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Agent{
		cfg:       cfg,
		log:       logger,
		srv:       srv,
		db:        db,
		store:     st,
		ctl:       ctl,
		hub:       h,
		unobserve: unobserve,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled; then shuts
// down gracefully. A previously persisted session is resumed before the
// server accepts requests.
func (a *Agent) Run(ctx context.Context) error {
	defer a.log.Sync()

	if err := a.ctl.Resume(ctx); err != nil {
		// Resume keeps the persisted session for the next attempt when the
		// store is unreachable; the agent still serves the UI.
		a.log.Warn("session resume failed", zap.Error(err))
	}

	a.log.Info("agent listening",
		zap.String("addr", a.srv.Addr),
		zap.String("device_id", a.ctl.DeviceID()),
		zap.String("ws", "ws://"+a.srv.Addr+"/ws/state"))

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	a.unobserve()
	a.ctl.Close()
	a.hub.CloseAll()
	a.store.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
