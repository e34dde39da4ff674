package multiplayer

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/chess-relay/internal/rules"
)

// GameSessionRegistry owns every ongoing game. Sessions are indexed by
// participant so lookups do not scan.
type GameSessionRegistry struct {
	newEngine rules.Factory
	sessions  map[GameID]*GameSession
	byPlayer  map[Identity]*GameSession
}

// NewGameSessionRegistry creates an empty registry whose games use engines
// from factory.
func NewGameSessionRegistry(factory rules.Factory) *GameSessionRegistry {
	return &GameSessionRegistry{
		newEngine: factory,
		sessions:  make(map[GameID]*GameSession),
		byPlayer:  make(map[Identity]*GameSession),
	}
}

// Create starts a game between a and b at the initial position.
func (r *GameSessionRegistry) Create(a, b Identity, aIsWhite bool) *GameSession {
	session := newGameSession(GameID(uuid.NewString()), a, b, aIsWhite, r.newEngine())

	r.sessions[session.ID()] = session
	r.byPlayer[a] = session
	r.byPlayer[b] = session
	return session
}

// FindByParticipant returns the game id is playing in.
func (r *GameSessionRegistry) FindByParticipant(id Identity) (*GameSession, bool) {
	s, ok := r.byPlayer[id]
	return s, ok
}

// Remove forgets a game. Removing an unknown game is a no-op.
func (r *GameSessionRegistry) Remove(session *GameSession) {
	if _, ok := r.sessions[session.ID()]; !ok {
		return
	}
	delete(r.sessions, session.ID())

	a, b := session.Participants()
	for _, id := range []Identity{a, b} {
		if r.byPlayer[id] == session {
			delete(r.byPlayer, id)
		}
	}
}

// Len returns the number of ongoing games.
func (r *GameSessionRegistry) Len() int {
	return len(r.sessions)
}
