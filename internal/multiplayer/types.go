// Package multiplayer is the relay core: stable player identities bound to
// replaceable transports, the FIFO waiting pool, live game sessions, and the
// coordinator that drives all of them from a single goroutine.
package multiplayer

import (
	"github.com/vovakirdan/chess-relay/internal/protocol"
	"github.com/vovakirdan/chess-relay/internal/rules"
)

// Identity is the client-supplied player name from the handshake.
// It is trusted as-is and lives for the lifetime of the process.
type Identity string

// GameID uniquely identifies a game session.
type GameID string

// ReconnectionState classifies where a resolved identity currently is.
type ReconnectionState int

const (
	// ReconnectNone means a fresh identity, or a known one that is neither
	// queued nor playing.
	ReconnectNone ReconnectionState = iota
	ReconnectInPool
	ReconnectInGame
)

// String returns a human-readable name for the state.
func (s ReconnectionState) String() string {
	switch s {
	case ReconnectNone:
		return "none"
	case ReconnectInPool:
		return "in pool"
	case ReconnectInGame:
		return "in game"
	default:
		return "unknown"
	}
}

// ReconnectionStatus is computed at handshake time from registry membership.
// Position and Color are only meaningful for ReconnectInGame.
type ReconnectionStatus struct {
	State    ReconnectionState
	Position string
	Color    rules.Color
}

// Message returns the handshake reply for this status.
func (s ReconnectionStatus) Message() protocol.Message {
	switch s.State {
	case ReconnectInPool:
		return protocol.ReconnectedInPool()
	case ReconnectInGame:
		return protocol.ReconnectedInGame(s.Position, s.Color.String())
	default:
		return protocol.Ready{}
	}
}
