package multiplayer

import (
	"errors"
	"testing"

	"github.com/vovakirdan/chess-relay/internal/rules"
)

func TestGameRegistryCreate(t *testing.T) {
	r := NewGameSessionRegistry(rules.NewChess)

	session := r.Create("alice", "bob", false)
	if session.ID() == "" {
		t.Fatal("game should get an ID")
	}
	if session.White() != "bob" || session.Black() != "alice" {
		t.Errorf("white=%q black=%q", session.White(), session.Black())
	}
	if session.Position() != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" {
		t.Errorf("unexpected start position %q", session.Position())
	}

	for _, id := range []Identity{"alice", "bob"} {
		got, ok := r.FindByParticipant(id)
		if !ok || got != session {
			t.Errorf("FindByParticipant(%q) = %v, %v", id, got, ok)
		}
	}
	if _, ok := r.FindByParticipant("carol"); ok {
		t.Error("carol is not playing")
	}
}

func TestGameRegistryRemove(t *testing.T) {
	r := NewGameSessionRegistry(rules.NewChess)
	first := r.Create("alice", "bob", true)
	second := r.Create("carol", "dave", true)

	r.Remove(first)
	r.Remove(first)

	if r.Len() != 1 {
		t.Errorf("Len = %d, expected 1", r.Len())
	}
	if _, ok := r.FindByParticipant("alice"); ok {
		t.Error("alice should be free")
	}
	if got, _ := r.FindByParticipant("carol"); got != second {
		t.Error("removing one game disturbed another")
	}
}

func TestGameSessionOpponentAndColor(t *testing.T) {
	r := NewGameSessionRegistry(rules.NewChess)
	s := r.Create("alice", "bob", true)

	if o, ok := s.OpponentOf("alice"); !ok || o != "bob" {
		t.Errorf("OpponentOf(alice) = %q, %v", o, ok)
	}
	if o, ok := s.OpponentOf("bob"); !ok || o != "alice" {
		t.Errorf("OpponentOf(bob) = %q, %v", o, ok)
	}
	if _, ok := s.OpponentOf("carol"); ok {
		t.Error("carol has no opponent here")
	}
	if c, _ := s.ColorOf("bob"); c != rules.Black {
		t.Errorf("bob color = %v", c)
	}
	if _, ok := s.ColorOf("carol"); ok {
		t.Error("carol has no color here")
	}
}

func TestGameSessionApplyMove(t *testing.T) {
	r := NewGameSessionRegistry(rules.NewChess)
	s := r.Create("alice", "bob", true)
	start := s.Position()

	if err := s.ApplyMove("carol", rules.Move{From: "e2", To: "e4"}); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}

	err := s.ApplyMove("bob", rules.Move{From: "e7", To: "e5"})
	if !errors.Is(err, ErrNotYourTurn) || !errors.Is(err, rules.ErrIllegalMove) {
		t.Errorf("expected out-of-turn illegal move, got %v", err)
	}

	if err := s.ApplyMove("alice", rules.Move{From: "e2", To: "e5"}); !errors.Is(err, rules.ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove, got %v", err)
	}
	if s.Position() != start || s.MoveCount() != 0 {
		t.Fatal("rejected moves changed the game")
	}

	if err := s.ApplyMove("alice", rules.Move{From: "e2", To: "e4"}); err != nil {
		t.Fatalf("legal move rejected: %v", err)
	}
	if err := s.ApplyMove("bob", rules.Move{From: "e7", To: "e5"}); err != nil {
		t.Fatalf("legal reply rejected: %v", err)
	}
	if s.MoveCount() != 2 || s.IsTerminal() {
		t.Errorf("moves=%d terminal=%v", s.MoveCount(), s.IsTerminal())
	}
}
