package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Backend kinds.
const (
	BackendStatic = "static"
	BackendHTTP   = "http"
	BackendSQLite = "sqlite"
)

// ErrInvalid is wrapped by every validation failure from Load.
var ErrInvalid = errors.New("invalid configuration")

// LayoutConfig tunes the graph view.
type LayoutConfig struct {
	Width         float64       `mapstructure:"width"`
	Height        float64       `mapstructure:"height"`
	Debounce      time.Duration `mapstructure:"debounce"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	Seed          uint64        `mapstructure:"seed"`
}

// ServerConfig holds settings for the API server.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	SecureCookie   bool          `mapstructure:"secure_cookie"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
}

// Config holds all runtime configuration.
// Values are populated from .syllabus.yaml, SYLLABUS_* env vars, and CLI flags.
type Config struct {
	Catalog   string       `mapstructure:"catalog"`
	StateDir  string       `mapstructure:"state_dir"`
	Backend   string       `mapstructure:"backend"`
	APIURL    string       `mapstructure:"api_url"`
	Database  string       `mapstructure:"database"`
	Watch     bool         `mapstructure:"watch"`
	LogMode   string       `mapstructure:"log_mode"`
	LogFile   string       `mapstructure:"log_file"`
	Telemetry string       `mapstructure:"telemetry"`
	Verbose   bool         `mapstructure:"verbose"`
	Layout    LayoutConfig `mapstructure:"layout"`
	Server    ServerConfig `mapstructure:"server"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("catalog", "course_structure.json")
	viper.SetDefault("state_dir", ".syllabus")
	viper.SetDefault("backend", BackendStatic)
	viper.SetDefault("api_url", "http://localhost:8080")
	viper.SetDefault("database", "course.db")
	viper.SetDefault("watch", true)
	viper.SetDefault("log_mode", "development")
	viper.SetDefault("log_file", "")
	viper.SetDefault("telemetry", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("layout.width", 960.0)
	viper.SetDefault("layout.height", 640.0)
	viper.SetDefault("layout.debounce", 250*time.Millisecond)
	viper.SetDefault("layout.frame_interval", 33*time.Millisecond)
	viper.SetDefault("layout.seed", 1)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.secret", "")
	viper.SetDefault("server.allowed_origins", []string{})
	viper.SetDefault("server.secure_cookie", false)
	viper.SetDefault("server.session_ttl", 7*24*time.Hour)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendStatic, BackendHTTP, BackendSQLite:
	default:
		return fmt.Errorf("%w: backend %q (want %s, %s or %s)", ErrInvalid, c.Backend, BackendStatic, BackendHTTP, BackendSQLite)
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		return fmt.Errorf("%w: layout size %gx%g", ErrInvalid, c.Layout.Width, c.Layout.Height)
	}
	if c.Layout.Debounce < 0 || c.Layout.FrameInterval <= 0 {
		return fmt.Errorf("%w: layout timings", ErrInvalid)
	}
	return nil
}
