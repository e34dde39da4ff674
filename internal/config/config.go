// Package config provides YAML (or TOML) configuration loading for the
// relay, with embedded defaults and environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Config is the complete relay configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Coordinator CoordinatorConfig `yaml:"coordinator" toml:"coordinator"`
	Log         LogConfig         `yaml:"log" toml:"log"`
	Archive     ArchiveConfig     `yaml:"archive" toml:"archive"`
}

// ServerConfig defines the HTTP listener and websocket transport.
type ServerConfig struct {
	Address        string        `yaml:"address" toml:"address"`
	WebsocketPath  string        `yaml:"websocket_path" toml:"websocket_path"`
	HealthPath     string        `yaml:"health_path" toml:"health_path"`
	AllowedOrigins []string      `yaml:"allowed_origins" toml:"allowed_origins"` // Empty allows any origin
	ReadLimit      int64         `yaml:"read_limit" toml:"read_limit"`           // Max inbound frame size in bytes
	WriteWait      time.Duration `yaml:"write_wait" toml:"write_wait"`
	PongWait       time.Duration `yaml:"pong_wait" toml:"pong_wait"`
	SendBuffer     int           `yaml:"send_buffer" toml:"send_buffer"` // Outbound messages queued per transport
}

// PingPeriod returns how often pings are sent. Must be less than PongWait.
func (s ServerConfig) PingPeriod() time.Duration {
	return (s.PongWait * 9) / 10
}

// CoordinatorConfig defines the event loop.
type CoordinatorConfig struct {
	QueueSize int `yaml:"queue_size" toml:"queue_size"`
}

// LogConfig defines logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" toml:"format"` // "auto", "text" or "json"
}

// ArchiveConfig defines the optional finished-game archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	DBPath  string `yaml:"db_path" toml:"db_path"`
}

// Log formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server.Address) == "":
		return fmt.Errorf("%w: server.address is empty", ErrInvalid)
	case !strings.HasPrefix(c.Server.WebsocketPath, "/"):
		return fmt.Errorf("%w: server.websocket_path %q must start with /", ErrInvalid, c.Server.WebsocketPath)
	case !strings.HasPrefix(c.Server.HealthPath, "/"):
		return fmt.Errorf("%w: server.health_path %q must start with /", ErrInvalid, c.Server.HealthPath)
	case c.Server.ReadLimit <= 0:
		return fmt.Errorf("%w: server.read_limit must be positive", ErrInvalid)
	case c.Server.WriteWait <= 0:
		return fmt.Errorf("%w: server.write_wait must be positive", ErrInvalid)
	case c.Server.PongWait <= 0:
		return fmt.Errorf("%w: server.pong_wait must be positive", ErrInvalid)
	case c.Server.SendBuffer <= 0:
		return fmt.Errorf("%w: server.send_buffer must be positive", ErrInvalid)
	case c.Coordinator.QueueSize <= 0:
		return fmt.Errorf("%w: coordinator.queue_size must be positive", ErrInvalid)
	case c.Archive.Enabled && strings.TrimSpace(c.Archive.DBPath) == "":
		return fmt.Errorf("%w: archive.db_path is empty", ErrInvalid)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case FormatAuto, FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
