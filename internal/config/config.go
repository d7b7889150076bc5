package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config keeps runtime settings for the server. It is resolved once at
// startup and passed explicitly to whoever needs it.
type Config struct {
	DatabaseURL   string
	Port          int
	Demo          bool
	DemoDBPath    string
	ResetInterval time.Duration
	LogLevel      string
}

// Config keys. Each maps to an environment variable and a command-line flag.
const (
	KeyDatabaseURL   = "database_url"
	KeyPort          = "port"
	KeyDemo          = "demo"
	KeyDemoDB        = "demo_db"
	KeyResetInterval = "reset_interval"
	KeyLogLevel      = "log_level"
	KeyDebug         = "debug"
)

var envNames = map[string]string{
	KeyDatabaseURL:   "DATABASE_URL",
	KeyPort:          "PORT",
	KeyDemo:          "GL_DEMO",
	KeyDemoDB:        "GL_DEMO_DB",
	KeyResetInterval: "GL_RESET_INTERVAL",
	KeyLogLevel:      "LOG_LEVEL",
	KeyDebug:         "DEBUG",
}

// flagNames maps config keys to the flag names registered by RegisterFlags.
var flagNames = map[string]string{
	KeyDatabaseURL:   "database-url",
	KeyPort:          "port",
	KeyDemo:          "demo",
	KeyDemoDB:        "demo-db",
	KeyResetInterval: "reset-interval",
	KeyLogLevel:      "log-level",
	KeyDebug:         "debug",
}

// Defaults.
const (
	DefaultDatabaseURL   = "sqlite:grocery.db"
	DefaultPort          = 3001
	DefaultDemoDB        = "grocery_demo.db"
	DefaultResetInterval = 15 * time.Minute
	DefaultLogLevel      = "info"
)

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagNames[KeyDatabaseURL], DefaultDatabaseURL, "database connection string")
	fs.Int(flagNames[KeyPort], DefaultPort, "HTTP listen port")
	fs.Bool(flagNames[KeyDemo], false, "run in demo mode (periodic database reset)")
	fs.String(flagNames[KeyDemoDB], DefaultDemoDB, "snapshot database used by demo resets")
	fs.Duration(flagNames[KeyResetInterval], DefaultResetInterval, "interval between demo resets")
	fs.String(flagNames[KeyLogLevel], DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.Bool(flagNames[KeyDebug], false, "shorthand for --log-level=debug")
}

// Load reads configuration from .env, environment variables and flags, in
// increasing precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyDatabaseURL, DefaultDatabaseURL)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyDemo, false)
	v.SetDefault(KeyDemoDB, DefaultDemoDB)
	v.SetDefault(KeyResetInterval, DefaultResetInterval)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyDebug, false)

	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if fs != nil {
		for key, name := range flagNames {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind --%s: %w", name, err)
				}
			}
		}
	}

	cfg := Config{
		DatabaseURL:   strings.TrimSpace(v.GetString(KeyDatabaseURL)),
		Port:          v.GetInt(KeyPort),
		Demo:          v.GetBool(KeyDemo),
		DemoDBPath:    strings.TrimSpace(v.GetString(KeyDemoDB)),
		ResetInterval: v.GetDuration(KeyResetInterval),
		LogLevel:      strings.TrimSpace(v.GetString(KeyLogLevel)),
	}

	if v.GetBool(KeyDebug) {
		cfg.LogLevel = "debug"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.ResetInterval <= 0 {
		return cfg, fmt.Errorf("reset interval must be positive, got %s", cfg.ResetInterval)
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
