package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds bandaid agent configuration.
type Config struct {
	AppEnv   string // APP_ENV
	AppHost  string // APP_HOST
	HTTPPort string // APP_PORT or HTTP_PORT
	LogLevel string // LOG_LEVEL

	// Valkey (the remote real-time store)
	Valkey struct {
		Addr     string
		Password string // shared static session secret
		DB       int
	}

	// Device-local sqlite store (identity, default tiles)
	DBPath string

	// How long a received cue stays visible when the cue itself carries no
	// duration. The canonical default is 6s; deployments override it.
	CueDefaultDuration time.Duration

	// Interval between lastSeen refreshes while in a session.
	MemberHeartbeat time.Duration

	// Local presentation WebSocket
	WSReadBufferSize  int
	WSWriteBufferSize int
}

// Load loads config from environment (.env if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	valkeyDB, _ := strconv.Atoi(getEnv("VALKEY_DB", "0"))
	cueDefault, _ := strconv.ParseInt(getEnv("CUE_DEFAULT_DURATION_MS", "6000"), 10, 64)
	heartbeat, _ := strconv.ParseInt(getEnv("MEMBER_HEARTBEAT_MS", "30000"), 10, 64)
	readBuf, _ := strconv.Atoi(getEnv("WS_READ_BUFFER_SIZE", "1024"))
	writeBuf, _ := strconv.Atoi(getEnv("WS_WRITE_BUFFER_SIZE", "4096"))

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		AppHost:            getEnv("APP_HOST", "127.0.0.1"),
		HTTPPort:           firstEnv("APP_PORT", "HTTP_PORT", "8787"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBPath:             getEnv("DB_PATH", "./bandaid.db"),
		CueDefaultDuration: time.Duration(cueDefault) * time.Millisecond,
		MemberHeartbeat:    time.Duration(heartbeat) * time.Millisecond,
		WSReadBufferSize:   readBuf,
		WSWriteBufferSize:  writeBuf,
	}
	cfg.Valkey.Addr = getEnv("VALKEY_ADDR", "localhost:6379")
	cfg.Valkey.Password = getEnv("VALKEY_PASSWORD", "")
	cfg.Valkey.DB = valkeyDB
	return cfg, nil
}

// Validate checks required fields and production safety.
func (c *Config) Validate() error {
	if c.Valkey.Addr == "" {
		return errors.New("config: VALKEY_ADDR is required")
	}
	if c.DBPath == "" {
		return errors.New("config: DB_PATH is required")
	}
	if c.CueDefaultDuration <= 0 {
		return errors.New("config: CUE_DEFAULT_DURATION_MS must be positive")
	}
	if c.MemberHeartbeat <= 0 {
		return errors.New("config: MEMBER_HEARTBEAT_MS must be positive")
	}
	if c.AppEnv == "production" && c.Valkey.Password == "" {
		return errors.New("config: in production VALKEY_PASSWORD is required")
	}
	return nil
}

// Addr returns the listen address for the local HTTP server.
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	keys := keysAndDef[:len(keysAndDef)-1]
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
