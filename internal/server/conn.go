package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/chess-relay/internal/config"
	"github.com/vovakirdan/chess-relay/internal/multiplayer"
	"github.com/vovakirdan/chess-relay/internal/protocol"
)

// Conn is a multiplayer.Transport over one websocket. Each envelope travels
// in its own text frame.
type Conn struct {
	id     string
	ws     *websocket.Conn
	cfg    config.ServerConfig
	logger *log.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

var _ multiplayer.Transport = (*Conn)(nil)

func newConn(ws *websocket.Conn, cfg config.ServerConfig, logger *log.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:     id,
		ws:     ws,
		cfg:    cfg,
		logger: logger.With("transport", id),
		send:   make(chan []byte, cfg.SendBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the transport's unique ID.
func (c *Conn) ID() string {
	return c.id
}

// Send encodes msg and queues it without blocking. A peer too slow to drain
// its buffer is disconnected.
func (c *Conn) Send(msg protocol.Message) {
	data, err := protocol.Encode(msg)
	if err != nil {
		c.logger.Error("cannot encode outbound message", "error", err)
		return
	}

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, closing transport")
		c.Close()
	}
}

// Close stops the write pump, which closes the socket. Safe to call
// multiple times.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump posts every inbound text frame to the coordinator in arrival
// order. When the socket fails it reports the transport closed.
func (c *Conn) readPump(coordinator *multiplayer.Coordinator) {
	defer func() {
		coordinator.Send(multiplayer.TransportClosedMsg{TransportID: c.id})
		c.Close()
		c.ws.Close()
	}()

	c.ws.SetReadLimit(c.cfg.ReadLimit)
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			c.logger.Debug("ignoring non-text frame", "type", kind)
			continue
		}
		coordinator.Send(multiplayer.EnvelopeMsg{TransportID: c.id, Raw: data})
	}
}

// writePump drains the send buffer and keeps the socket alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("write failed", "error", err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}

		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
