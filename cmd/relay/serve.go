package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chess-relay/internal/logging"
	"github.com/vovakirdan/chess-relay/internal/server"
)

var (
	flagAddr   string
	flagDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the websocket relay",
	Long: `Start the relay. Clients connect over websockets, identify with a
username, and are paired in arrival order.

Finished games are archived to SQLite when archive.enabled is set or
--db is given.

Examples:
  relay serve                         # Listen on :8765
  relay serve --addr 127.0.0.1:9000   # Listen on a specific address
  relay serve --db ./games.db         # Archive finished games`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (host:port), overrides server.address")
	serveCmd.Flags().StringVar(&flagDBPath, "db", "", "Archive finished games to this database")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if flagAddr != "" {
		cfg.Server.Address = flagAddr
	}
	if flagDBPath != "" {
		cfg.Archive.Enabled = true
		cfg.Archive.DBPath = flagDBPath
	}

	logger := logging.New(cfg.Log, os.Stderr)

	srv, err := server.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
