// Package server exposes the relay over HTTP: websocket upgrades on the
// configured path, a liveness probe, and 403 for anything else.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/chess-relay/internal/config"
	"github.com/vovakirdan/chess-relay/internal/multiplayer"
	"github.com/vovakirdan/chess-relay/internal/rules"
	"github.com/vovakirdan/chess-relay/internal/storage"
)

// Server wires the websocket endpoint to a single coordinator.
type Server struct {
	config      config.Config
	logger      *log.Logger
	coordinator *multiplayer.Coordinator
	store       *storage.Store // nil when archiving is off or unavailable
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	mu    sync.Mutex
	conns map[*Conn]struct{}

	shutdownOnce sync.Once
}

// New creates a server and starts its coordinator. Call Shutdown to stop it.
func New(cfg config.Config, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	srv := &Server{
		config: cfg,
		logger: logger,
		conns:  make(map[*Conn]struct{}),
	}

	srv.coordinator = multiplayer.NewCoordinator(
		multiplayer.CoordinatorConfig{QueueSize: cfg.Coordinator.QueueSize},
		rules.NewChess,
		logger.With("component", "coordinator"),
	)

	if cfg.Archive.Enabled {
		store, err := storage.Open(cfg.Archive.DBPath)
		if err != nil {
			logger.Warn("could not open game archive", "error", err)
			// Continue without archive
		} else {
			srv.store = store
			srv.coordinator.SetResultSaver(store)
		}
	}

	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     srv.checkOrigin,
	}

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv.coordinator.Start()
	return srv, nil
}

// ServeHTTP routes websocket upgrades and health probes. Any non-upgrade
// request to the health path succeeds; everything else is forbidden.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == s.config.Server.WebsocketPath && websocket.IsWebSocketUpgrade(r):
		s.serveWS(w, r)
	case r.URL.Path == s.config.Server.HealthPath:
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusForbidden)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		s.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := newConn(ws, s.config.Server, s.logger)
	s.track(conn)
	s.logger.Debug("websocket connected", "transport", conn.ID(), "remote", r.RemoteAddr)

	// Opened must reach the coordinator before any envelope from this conn.
	s.coordinator.Send(multiplayer.TransportOpenedMsg{Transport: conn})

	go conn.writePump()
	go func() {
		conn.readPump(s.coordinator)
		s.untrack(conn)
	}()
}

// checkOrigin allows any origin unless allowed_origins is set.
func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.config.Server.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients
		return true
	}
	return slices.Contains(allowed, origin)
}

func (s *Server) track(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c] = struct{}{}
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

// ListenAndServe starts the server and blocks until SIGINT or SIGTERM.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Server.Address)
	if err != nil {
		s.Shutdown()
		return err
	}
	s.logger.Info("starting relay",
		"address", ln.Addr().String(),
		"websocket_path", s.config.Server.WebsocketPath,
		"archive", s.store != nil,
	)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case <-done:
		s.logger.Info("shutting down...")
		return s.Shutdown()
	case err := <-serveErr:
		s.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting connections, closes live websockets, stops the
// coordinator and closes the archive.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err = s.httpServer.Shutdown(ctx)

		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()

		s.coordinator.Stop()

		if s.store != nil {
			s.store.Close()
		}
	})
	return err
}
