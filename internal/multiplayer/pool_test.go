package multiplayer

import (
	"errors"
	"testing"

	"github.com/vovakirdan/chess-relay/internal/protocol"
	"github.com/vovakirdan/chess-relay/internal/rules"
)

func newTestPool(heads bool) (*WaitingPool, *GameSessionRegistry) {
	games := NewGameSessionRegistry(rules.NewChess)
	pool := NewWaitingPool(games, func() bool { return heads })
	return pool, games
}

func TestPoolSingleEntryWaits(t *testing.T) {
	pool, games := newTestPool(true)
	tr := newFakeTransport("t1")

	session, err := pool.Enqueue(NewSessionHandle("alice", tr))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if session != nil {
		t.Fatal("a lone entry must not start a game")
	}
	if !pool.Contains("alice") || pool.Len() != 1 {
		t.Errorf("alice should be waiting, len=%d", pool.Len())
	}
	if games.Len() != 0 {
		t.Errorf("no game expected, have %d", games.Len())
	}
	expectNone(t, tr)
}

func TestPoolPairsInArrivalOrder(t *testing.T) {
	tests := []struct {
		name       string
		heads      bool
		firstColor string
	}{
		{"heads", true, "w"},
		{"tails", false, "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, games := newTestPool(tt.heads)
			a, b, c := newFakeTransport("a"), newFakeTransport("b"), newFakeTransport("c")

			pool.Enqueue(NewSessionHandle("alice", a))
			pool.Enqueue(NewSessionHandle("bob", b))
			session, err := pool.Enqueue(NewSessionHandle("carol", c))
			if err != nil || session != nil {
				t.Fatalf("third entry should wait, got %v %v", session, err)
			}

			if games.Len() != 1 {
				t.Fatalf("games = %d, expected 1", games.Len())
			}
			if _, ok := games.FindByParticipant("carol"); ok {
				t.Error("carol should still be waiting")
			}
			if !pool.Contains("carol") || pool.Len() != 1 {
				t.Error("carol should be the only waiting entry")
			}

			first := expectOne(t, a).(protocol.StartGame)
			second := expectOne(t, b).(protocol.StartGame)
			if first.Color != tt.firstColor {
				t.Errorf("first arrival color = %q, expected %q", first.Color, tt.firstColor)
			}
			if first.Color == second.Color {
				t.Errorf("both players got %q", first.Color)
			}
			expectNone(t, c)
		})
	}
}

func TestPoolRejections(t *testing.T) {
	pool, _ := newTestPool(true)

	if _, err := pool.Enqueue(NewSessionHandle("", newFakeTransport("anon"))); !errors.Is(err, ErrUnidentified) {
		t.Errorf("expected ErrUnidentified, got %v", err)
	}

	alice := NewSessionHandle("alice", newFakeTransport("a"))
	pool.Enqueue(alice)
	if _, err := pool.Enqueue(alice); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("expected ErrAlreadyQueued, got %v", err)
	}
	if pool.Len() != 1 {
		t.Errorf("rejected enqueue changed the pool: len=%d", pool.Len())
	}

	pool.Enqueue(NewSessionHandle("bob", newFakeTransport("b")))
	if _, err := pool.Enqueue(alice); !errors.Is(err, ErrAlreadyInGame) {
		t.Errorf("expected ErrAlreadyInGame, got %v", err)
	}
	if pool.Len() != 0 {
		t.Errorf("playing identity entered the pool: len=%d", pool.Len())
	}
}

func TestFairCoinProducesBothSides(t *testing.T) {
	var heads, tails int
	for i := 0; i < 200; i++ {
		if FairCoin() {
			heads++
		} else {
			tails++
		}
	}
	if heads == 0 || tails == 0 {
		t.Errorf("coin is stuck: heads=%d tails=%d", heads, tails)
	}
}
