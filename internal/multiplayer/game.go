package multiplayer

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/chess-relay/internal/rules"
)

var (
	// ErrNotParticipant is returned when a move comes from outside the game.
	ErrNotParticipant = errors.New("multiplayer: identity is not in this game")

	// ErrNotYourTurn is returned when the mover is not the side to move.
	ErrNotYourTurn = fmt.Errorf("multiplayer: not your turn: %w", rules.ErrIllegalMove)
)

// GameSession is the authoritative record of one game between two
// identities. It owns the rules engine; nothing outside the session mutates
// the position.
type GameSession struct {
	id        GameID
	playerA   Identity
	playerB   Identity
	aIsWhite  bool
	engine    rules.Engine
	startedAt time.Time
	moves     int
}

func newGameSession(id GameID, a, b Identity, aIsWhite bool, engine rules.Engine) *GameSession {
	return &GameSession{
		id:        id,
		playerA:   a,
		playerB:   b,
		aIsWhite:  aIsWhite,
		engine:    engine,
		startedAt: time.Now(),
	}
}

// ID returns the game identifier.
func (g *GameSession) ID() GameID {
	return g.id
}

// Participants returns both identities in pairing order.
func (g *GameSession) Participants() (Identity, Identity) {
	return g.playerA, g.playerB
}

// White returns the identity playing white.
func (g *GameSession) White() Identity {
	if g.aIsWhite {
		return g.playerA
	}
	return g.playerB
}

// Black returns the identity playing black.
func (g *GameSession) Black() Identity {
	if g.aIsWhite {
		return g.playerB
	}
	return g.playerA
}

// OpponentOf returns the other participant.
func (g *GameSession) OpponentOf(id Identity) (Identity, bool) {
	switch id {
	case g.playerA:
		return g.playerB, true
	case g.playerB:
		return g.playerA, true
	default:
		return "", false
	}
}

// ColorOf returns the side id plays.
func (g *GameSession) ColorOf(id Identity) (rules.Color, bool) {
	colorA := rules.Black
	if g.aIsWhite {
		colorA = rules.White
	}

	switch id {
	case g.playerA:
		return colorA, true
	case g.playerB:
		return colorA.Opposite(), true
	default:
		return rules.White, false
	}
}

// ApplyMove plays a move for mover. The position is unchanged on error.
func (g *GameSession) ApplyMove(mover Identity, m rules.Move) error {
	color, ok := g.ColorOf(mover)
	if !ok {
		return ErrNotParticipant
	}
	if g.engine.Turn() != color {
		return ErrNotYourTurn
	}
	if err := g.engine.Apply(m); err != nil {
		return err
	}
	g.moves++
	return nil
}

// IsTerminal reports checkmate or a draw.
func (g *GameSession) IsTerminal() bool {
	return g.engine.IsTerminal()
}

// Position returns the canonical position string.
func (g *GameSession) Position() string {
	return g.engine.Position()
}

// Outcome returns the engine's view of the result.
func (g *GameSession) Outcome() rules.Outcome {
	return g.engine.Outcome()
}

// MoveCount returns the number of moves applied so far.
func (g *GameSession) MoveCount() int {
	return g.moves
}

// StartedAt returns when the pairing happened.
func (g *GameSession) StartedAt() time.Time {
	return g.startedAt
}
