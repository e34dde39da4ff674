// Package rules is the boundary between the relay and the board-game rules
// engine. The relay only ever applies moves, asks whether the game is over,
// and reads a canonical position string; legality is entirely the engine's
// business.
package rules

import (
	"errors"
	"strings"
)

// ErrIllegalMove is returned by Engine.Apply when the engine rejects a move.
var ErrIllegalMove = errors.New("rules: illegal move")

// Color is a side of the board.
type Color int

const (
	White Color = iota
	Black
)

// String returns the wire code: "w" or "b".
func (c Color) String() string {
	if c == Black {
		return "b"
	}
	return "w"
}

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Move is a from/to pair in algebraic square names, with an optional
// promotion piece letter.
type Move struct {
	From      string
	To        string
	Promotion string
}

// UCI renders the move in long algebraic (UCI) form, e.g. "e7e8q".
func (m Move) UCI() string {
	return strings.ToLower(strings.TrimSpace(m.From) + strings.TrimSpace(m.To) + strings.TrimSpace(m.Promotion))
}

// Outcome describes how a game stands.
type Outcome struct {
	Result string // "1-0", "0-1", "1/2-1/2" or "*" while in progress
	Method string // e.g. "Checkmate", "Stalemate"; "NoMethod" while in progress
}

// Engine is one game's rules state. Apply must leave the position untouched
// when it fails.
type Engine interface {
	Apply(m Move) error
	IsTerminal() bool
	Position() string
	Turn() Color
	Outcome() Outcome
}

// Factory creates an engine at the initial position.
type Factory func() Engine
