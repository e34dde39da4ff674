// relay is a websocket chess relay: it pairs players, relays validated
// moves between them, and lets a player reconnect to a queue or game.
//
// Usage:
//
//	relay serve              - Start the websocket relay
//	relay history [player]   - Show archived games
//	relay config             - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config file (.yaml or .toml)
//	--log-level <level> - Override log.level
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chess-relay/internal/config"
)

var (
	// Global flags
	flagConfigPath string
	flagLogLevel   string
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Chess relay - pair players and relay moves over websockets",
	Long: `Chess relay is a small websocket server that pairs players into games,
validates and relays their moves, and lets a player pick up a queue spot
or a game from a new connection.

Available commands:
  serve    - Start the websocket relay
  history  - Show archived games
  config   - Print the effective configuration

Examples:
  relay serve
  relay serve --addr :9000 --db ~/.chess-relay/games.db
  relay history alice
  relay config --config ./relay.toml`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return cfg, err
	}

	if flagLogLevel != "" {
		cfg.Log.Level = strings.ToLower(flagLogLevel)
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
