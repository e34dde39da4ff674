package multiplayer

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/chess-relay/internal/protocol"
	"github.com/vovakirdan/chess-relay/internal/rules"
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	QueueSize int // Inbound message buffer shared by all transports
}

// DefaultCoordinatorConfig returns sensible defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		QueueSize: 256,
	}
}

// GameResultSaver is an interface for archiving finished games.
// This allows the coordinator to save results without depending on the storage package.
type GameResultSaver interface {
	SaveGameResult(result GameResultData) error
}

// GameResultData contains a finished game for persistence.
type GameResultData struct {
	GameID        string
	White         string
	Black         string
	Result        string // "1-0", "0-1" or "1/2-1/2"
	EndReason     string // "resignation" or the engine's method, e.g. "Checkmate"
	FinalPosition string
	Moves         int
	DurationSecs  int
}

type connPhase int

const (
	phaseUnidentified connPhase = iota
	phaseHandshaken
)

// connState is the per-transport dispatcher state.
type connState struct {
	transport Transport
	phase     connPhase
	handle    *SessionHandle
}

// Coordinator owns the registries and processes every inbound event on one
// goroutine. Each handler runs to completion before the next starts, so the
// registries need no locking.
type Coordinator struct {
	config      CoordinatorConfig
	logger      *log.Logger
	resultSaver GameResultSaver // Optional, can be nil

	conns   map[string]*connState // transport ID -> state
	handles *ConnectionRegistry
	pool    *WaitingPool
	games   *GameSessionRegistry

	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a coordinator whose games use engines from factory.
func NewCoordinator(cfg CoordinatorConfig, factory rules.Factory, logger *log.Logger) *Coordinator {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultCoordinatorConfig().QueueSize
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	games := NewGameSessionRegistry(factory)
	pool := NewWaitingPool(games, FairCoin)

	return &Coordinator{
		config:  cfg,
		logger:  logger,
		conns:   make(map[string]*connState),
		handles: NewConnectionRegistry(pool, games),
		pool:    pool,
		games:   games,
		msgChan: make(chan CoordinatorMessage, cfg.QueueSize),
		done:    make(chan struct{}),
	}
}

// SetResultSaver sets the optional game archive.
func (c *Coordinator) SetResultSaver(saver GameResultSaver) {
	c.resultSaver = saver
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
}

// Stop shuts down the coordinator. Safe to call multiple times.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// Send queues a message for processing. It blocks while the queue is full
// and returns immediately once the coordinator has stopped.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case TransportOpenedMsg:
		c.handleTransportOpened(m)
	case EnvelopeMsg:
		c.handleEnvelope(m)
	case TransportClosedMsg:
		c.handleTransportClosed(m)
	}
}

func (c *Coordinator) handleTransportOpened(msg TransportOpenedMsg) {
	t := msg.Transport
	c.conns[t.ID()] = &connState{transport: t}
	c.logger.Debug("transport opened", "transport", t.ID())

	t.Send(protocol.HandshakeRequest{})
}

// handleTransportClosed forgets the dispatcher state only. The identity's
// handle, queue entry and game stay until a reconnect migrates them.
func (c *Coordinator) handleTransportClosed(msg TransportClosedMsg) {
	st, ok := c.conns[msg.TransportID]
	if !ok {
		return
	}
	delete(c.conns, msg.TransportID)

	if st.handle != nil {
		c.logger.Info("transport closed", "transport", msg.TransportID, "identity", st.handle.Identity())
		return
	}
	c.logger.Debug("transport closed before handshake", "transport", msg.TransportID)
}

func (c *Coordinator) handleEnvelope(msg EnvelopeMsg) {
	st, ok := c.conns[msg.TransportID]
	if !ok {
		// Closed or superseded by a reconnect.
		return
	}

	decoded, err := protocol.Decode(msg.Raw)
	if err != nil {
		c.logger.Warn("malformed envelope", "transport", msg.TransportID, "error", err)
		st.transport.Send(protocol.Error{Text: protocol.TextInvalidFormat})
		return
	}

	if hs, ok := decoded.(protocol.Handshake); ok {
		c.handleHandshake(st, hs)
		return
	}

	if st.phase != phaseHandshaken {
		c.logger.Debug("envelope before handshake, requesting again",
			"transport", msg.TransportID,
			"kind", decoded.Kind(),
		)
		st.transport.Send(protocol.HandshakeRequest{})
		return
	}

	c.dispatch(st, decoded)
}

func (c *Coordinator) handleHandshake(st *connState, hs protocol.Handshake) {
	if st.phase == phaseHandshaken {
		c.logger.Warn("rejected handshake",
			"transport", st.transport.ID(),
			"identity", st.handle.Identity(),
			"error", protocol.ErrDuplicateHandshake,
		)
		st.transport.Send(protocol.Error{Text: protocol.TextAlreadyIdentified})
		return
	}

	candidate := NewSessionHandle(Identity(hs.Username), st.transport)
	handle, status, superseded := c.handles.Resolve(candidate)

	st.phase = phaseHandshaken
	st.handle = handle

	if superseded != nil {
		// Late frames from the old transport must not act for the identity.
		delete(c.conns, superseded.ID())
		superseded.Close()
		c.logger.Info("identity reconnected",
			"identity", handle.Identity(),
			"transport", st.transport.ID(),
			"superseded", superseded.ID(),
			"state", status.State,
		)
	} else {
		c.logger.Info("identity connected", "identity", handle.Identity(), "transport", st.transport.ID())
	}

	handle.Send(status.Message())
}

func (c *Coordinator) dispatch(st *connState, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Echo:
		st.transport.Send(protocol.Echo{Text: m.Text})
	case protocol.Error:
		c.logger.Info("client reported error", "identity", st.handle.Identity(), "message", m.Text)
	case protocol.RequestGame:
		c.handleRequestGame(st.handle)
	case protocol.Move:
		c.handleMove(st.handle, m)
	case protocol.Resign:
		c.handleResign(st.handle)
	default:
		c.logger.Debug("dropped unhandled envelope", "identity", st.handle.Identity(), "kind", msg.Kind())
	}
}

func (c *Coordinator) handleRequestGame(h *SessionHandle) {
	session, err := c.pool.Enqueue(h)
	if err != nil {
		c.logger.Info("join rejected", "identity", h.Identity(), "reason", err)
		return
	}

	if session == nil {
		c.logger.Info("identity queued", "identity", h.Identity(), "waiting", c.pool.Len())
		return
	}

	c.logger.Info("game started",
		"game", session.ID(),
		"white", session.White(),
		"black", session.Black(),
	)
}

// handleMove applies a move and relays it to the opponent's current
// transport. An illegal move is answered, to the mover only, with the
// unchanged position and the mover's color.
func (c *Coordinator) handleMove(h *SessionHandle, m protocol.Move) {
	id := h.Identity()
	session, ok := c.games.FindByParticipant(id)
	if !ok {
		c.logger.Debug("move without a game", "identity", id)
		return
	}

	move := rules.Move{From: m.From, To: m.To, Promotion: m.Promotion}
	if err := session.ApplyMove(id, move); err != nil {
		color, _ := session.ColorOf(id)
		c.logger.Info("move rejected", "game", session.ID(), "identity", id, "move", move.UCI(), "error", err)
		h.Send(protocol.ReconnectedInGame(session.Position(), color.String()))
		return
	}

	opponent, _ := session.OpponentOf(id)
	if oh, ok := c.handles.Lookup(opponent); ok {
		oh.Send(m)
	}

	if session.IsTerminal() {
		c.endGame(session, GameEndReasonTerminal, "")
	}
}

func (c *Coordinator) handleResign(h *SessionHandle) {
	id := h.Identity()
	session, ok := c.games.FindByParticipant(id)
	if !ok {
		c.logger.Debug("resign without a game", "identity", id)
		return
	}

	opponent, _ := session.OpponentOf(id)
	if oh, ok := c.handles.Lookup(opponent); ok {
		oh.Send(protocol.Resign{})
	}

	c.endGame(session, GameEndReasonResigned, id)
}

// endGame removes a finished game and archives it. No extra envelope is
// sent; clients learn of a terminal position from the final relayed move.
func (c *Coordinator) endGame(session *GameSession, reason GameEndReason, resigner Identity) {
	c.games.Remove(session)

	result := GameResultData{
		GameID:        string(session.ID()),
		White:         string(session.White()),
		Black:         string(session.Black()),
		FinalPosition: session.Position(),
		Moves:         session.MoveCount(),
		DurationSecs:  int(time.Since(session.StartedAt()).Seconds()),
	}

	switch reason {
	case GameEndReasonResigned:
		result.EndReason = reason.String()
		result.Result = "1-0"
		if resigner == session.White() {
			result.Result = "0-1"
		}
	default:
		outcome := session.Outcome()
		result.Result = outcome.Result
		result.EndReason = outcome.Method
	}

	c.logger.Info("game ended",
		"game", result.GameID,
		"result", result.Result,
		"reason", result.EndReason,
		"moves", result.Moves,
	)

	if c.resultSaver != nil {
		saver := c.resultSaver
		// Best effort save, don't block the event loop
		go func() {
			if err := saver.SaveGameResult(result); err != nil {
				c.logger.Warn("could not archive game", "game", result.GameID, "error", err)
			}
		}()
	}
}
