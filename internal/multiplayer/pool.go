package multiplayer

import (
	"crypto/rand"
	"errors"
	"math/big"
	"slices"
	"time"

	"github.com/vovakirdan/chess-relay/internal/protocol"
)

var (
	ErrUnidentified  = errors.New("multiplayer: identity not set")
	ErrAlreadyQueued = errors.New("multiplayer: already in the waiting pool")
	ErrAlreadyInGame = errors.New("multiplayer: already in a game")
)

// CoinFlip returns true for heads. Used once per pairing to decide whether
// the earlier arrival plays white.
type CoinFlip func() bool

// FairCoin flips an unbiased coin from crypto/rand.
func FairCoin() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		// Fallback to timestamp-based
		return time.Now().UnixNano()&1 == 0
	}
	return n.Int64() == 0
}

// WaitingPool is the FIFO queue of identities looking for an opponent.
// It pairs strictly two at a time in arrival order.
type WaitingPool struct {
	queue []*SessionHandle
	games *GameSessionRegistry
	coin  CoinFlip
}

// NewWaitingPool creates a pool that starts its games in games.
func NewWaitingPool(games *GameSessionRegistry, coin CoinFlip) *WaitingPool {
	if coin == nil {
		coin = FairCoin
	}
	return &WaitingPool{
		games: games,
		coin:  coin,
	}
}

// Enqueue adds a handle to the back of the queue. An identity that is unset,
// already queued, or already playing is rejected and nothing changes.
//
// When the enqueue leaves two handles waiting they are popped, a game is
// created, and both receive START_GAME with their color. The new game is
// returned; it is nil when the handle is left waiting.
func (p *WaitingPool) Enqueue(h *SessionHandle) (*GameSession, error) {
	id := h.Identity()
	if id == "" {
		return nil, ErrUnidentified
	}
	if p.Contains(id) {
		return nil, ErrAlreadyQueued
	}
	if _, playing := p.games.FindByParticipant(id); playing {
		return nil, ErrAlreadyInGame
	}

	p.queue = append(p.queue, h)
	if len(p.queue) < 2 {
		return nil, nil
	}

	first, second := p.queue[0], p.queue[1]
	p.queue = slices.Delete(p.queue, 0, 2)

	session := p.games.Create(first.Identity(), second.Identity(), p.coin())

	for _, player := range []*SessionHandle{first, second} {
		color, _ := session.ColorOf(player.Identity())
		player.Send(protocol.StartGame{Color: color.String()})
	}

	return session, nil
}

// Contains reports whether id is waiting.
func (p *WaitingPool) Contains(id Identity) bool {
	return slices.ContainsFunc(p.queue, func(h *SessionHandle) bool {
		return h.Identity() == id
	})
}

// Len returns the number of waiting handles.
func (p *WaitingPool) Len() int {
	return len(p.queue)
}
