package rules

import (
	"fmt"

	"github.com/corentings/chess/v2"
)

// ChessEngine adapts corentings/chess to Engine.
type ChessEngine struct {
	game *chess.Game
}

// NewChess returns a chess engine at the standard starting position.
// It satisfies Factory.
func NewChess() Engine {
	return &ChessEngine{game: chess.NewGame()}
}

// NewChessFromFEN returns a chess engine at an arbitrary position.
func NewChessFromFEN(fen string) (*ChessEngine, error) {
	option, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("rules: invalid FEN %q: %w", fen, err)
	}
	e := &ChessEngine{game: chess.NewGame(option)}
	e.claimDraw()
	return e, nil
}

// Apply plays the move if it is legal in the current position.
func (e *ChessEngine) Apply(m Move) error {
	uci := m.UCI()
	if err := e.game.PushNotationMove(uci, chess.UCINotation{}, nil); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIllegalMove, uci, err)
	}
	e.claimDraw()
	return nil
}

// claimDraw ends the game as soon as threefold repetition or the fifty-move
// rule applies. The library alone only stops at fivefold and seventy-five.
func (e *ChessEngine) claimDraw() {
	if e.game.Outcome() != chess.NoOutcome {
		return
	}
	for _, method := range e.game.EligibleDraws() {
		if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
			if err := e.game.Draw(method); err == nil {
				return
			}
		}
	}
}

// IsTerminal reports checkmate or any draw: stalemate, insufficient
// material, threefold repetition or the fifty-move rule.
func (e *ChessEngine) IsTerminal() bool {
	return e.game.Outcome() != chess.NoOutcome
}

// Position returns the FEN of the current position.
func (e *ChessEngine) Position() string {
	return e.game.FEN()
}

// Turn returns the side to move.
func (e *ChessEngine) Turn() Color {
	if e.game.Position().Turn() == chess.Black {
		return Black
	}
	return White
}

// Outcome returns the result and how it was reached.
func (e *ChessEngine) Outcome() Outcome {
	return Outcome{
		Result: string(e.game.Outcome()),
		Method: e.game.Method().String(),
	}
}
