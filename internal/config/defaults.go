package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/relay.yaml
var defaultRelayYAML []byte

// Default returns the hardcoded default configuration. It matches the
// embedded defaults/relay.yaml.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:       ":8765",
			WebsocketPath: "/",
			HealthPath:    "/",
			ReadLimit:     4096,
			WriteWait:     10 * time.Second,
			PongWait:      60 * time.Second,
			SendBuffer:    64,
		},
		Coordinator: CoordinatorConfig{
			QueueSize: 256,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatAuto,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			DBPath:  "~/.chess-relay/games.db",
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultRelayYAML
}
