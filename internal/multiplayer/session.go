package multiplayer

import "github.com/vovakirdan/chess-relay/internal/protocol"

// Transport is the connection-neutral view of one duplex message stream.
// The coordinator never depends on websockets directly.
type Transport interface {
	// ID returns an identifier unique among live transports.
	ID() string

	// Send queues a message for delivery.
	// Must be non-blocking; a closed transport silently drops it.
	Send(msg protocol.Message)

	// Close shuts the transport down. Safe to call multiple times.
	Close()
}

// SessionHandle binds a stable identity to whichever transport currently
// carries it. The pool and the coordinator hold handles, never transports,
// so a reconnect takes effect everywhere at once.
type SessionHandle struct {
	identity  Identity
	transport Transport
}

// NewSessionHandle creates a handle for an identity on a transport.
func NewSessionHandle(identity Identity, transport Transport) *SessionHandle {
	return &SessionHandle{
		identity:  identity,
		transport: transport,
	}
}

// Identity returns the player identity.
func (h *SessionHandle) Identity() Identity {
	return h.identity
}

// Transport returns the current transport.
func (h *SessionHandle) Transport() Transport {
	return h.transport
}

// Send delivers a message through the current transport.
func (h *SessionHandle) Send(msg protocol.Message) {
	if h.transport == nil {
		return
	}
	h.transport.Send(msg)
}

// Redirect points the handle at a new transport and returns the one it
// replaced.
func (h *SessionHandle) Redirect(t Transport) Transport {
	old := h.transport
	h.transport = t
	return old
}

// ConnectionRegistry owns the identity -> handle mapping. Handles are never
// removed: a dropped connection lingers until the same identity handshakes
// again and migrates it.
type ConnectionRegistry struct {
	handles map[Identity]*SessionHandle
	pool    *WaitingPool
	games   *GameSessionRegistry
}

// NewConnectionRegistry creates a registry that reports reconnection status
// against the given pool and game registry.
func NewConnectionRegistry(pool *WaitingPool, games *GameSessionRegistry) *ConnectionRegistry {
	return &ConnectionRegistry{
		handles: make(map[Identity]*SessionHandle),
		pool:    pool,
		games:   games,
	}
}

// Resolve settles a freshly handshaken candidate against known handles.
//
// If the identity already has a handle on a different transport, that
// handle is redirected to the candidate's transport, the candidate is
// discarded, and the superseded transport is returned for the caller to
// close. Otherwise the candidate becomes the identity's handle. The returned
// handle is the one the caller must use from now on.
func (r *ConnectionRegistry) Resolve(candidate *SessionHandle) (*SessionHandle, ReconnectionStatus, Transport) {
	id := candidate.Identity()

	existing, ok := r.handles[id]
	if !ok {
		r.handles[id] = candidate
		return candidate, ReconnectionStatus{State: ReconnectNone}, nil
	}

	if sameTransport(existing.Transport(), candidate.Transport()) {
		return existing, ReconnectionStatus{State: ReconnectNone}, nil
	}

	superseded := existing.Redirect(candidate.Transport())
	return existing, r.statusOf(id), superseded
}

// Lookup returns the handle for an identity.
func (r *ConnectionRegistry) Lookup(id Identity) (*SessionHandle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// Count returns the number of known identities.
func (r *ConnectionRegistry) Count() int {
	return len(r.handles)
}

// statusOf checks the pool first, then live games.
func (r *ConnectionRegistry) statusOf(id Identity) ReconnectionStatus {
	if r.pool.Contains(id) {
		return ReconnectionStatus{State: ReconnectInPool}
	}

	if session, ok := r.games.FindByParticipant(id); ok {
		color, _ := session.ColorOf(id)
		return ReconnectionStatus{
			State:    ReconnectInGame,
			Position: session.Position(),
			Color:    color,
		}
	}

	return ReconnectionStatus{State: ReconnectNone}
}

func sameTransport(a, b Transport) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID() == b.ID()
}
