package protocol

// Message is one decoded envelope. The set of implementations is closed.
type Message interface {
	Kind() Kind
	message()
}

// ReconnectionState tells a reconnecting client where it was.
type ReconnectionState string

const (
	StateInPool ReconnectionState = "IN_POOL"
	StateInGame ReconnectionState = "IN_GAME"
)

// Error texts sent to clients.
const (
	TextInvalidFormat     = "Invalid message format"
	TextAlreadyIdentified = "Client has already identified itself"
)

// HandshakeRequest asks the client to identify itself.
type HandshakeRequest struct{}

func (HandshakeRequest) Kind() Kind { return KindHandshakeRequest }
func (HandshakeRequest) message()   {}

// Handshake carries the client-chosen identity.
type Handshake struct {
	Username string `json:"username"`
}

func (Handshake) Kind() Kind { return KindHandshake }
func (Handshake) message()   {}

// Ready acknowledges a handshake for an identity with nothing to resume.
type Ready struct{}

func (Ready) Kind() Kind { return KindReady }
func (Ready) message()   {}

// Reconnected reports the state a migrated identity resumed into.
// It doubles as the correction sent after an illegal move.
type Reconnected struct {
	State ReconnectionState `json:"state"`
	FEN   string            `json:"fen,omitempty"`
	Color string            `json:"color,omitempty"`
}

func (Reconnected) Kind() Kind { return KindReconnected }
func (Reconnected) message()   {}

// ReconnectedInPool builds the IN_POOL variant.
func ReconnectedInPool() Reconnected {
	return Reconnected{State: StateInPool}
}

// ReconnectedInGame builds the IN_GAME variant.
func ReconnectedInGame(fen, color string) Reconnected {
	return Reconnected{State: StateInGame, FEN: fen, Color: color}
}

// Echo is reflected back to its sender.
type Echo struct {
	Text string
}

func (Echo) Kind() Kind { return KindEcho }
func (Echo) message()   {}

// Error carries a human-readable problem description.
type Error struct {
	Text string
}

func (Error) Kind() Kind { return KindError }
func (Error) message()   {}

// RequestGame asks to join the waiting pool.
type RequestGame struct{}

func (RequestGame) Kind() Kind { return KindRequestGame }
func (RequestGame) message()   {}

// StartGame announces a pairing and the recipient's color ("w" or "b").
type StartGame struct {
	Color string `json:"color"`
}

func (StartGame) Kind() Kind { return KindStartGame }
func (StartGame) message()   {}

// Move is a from/to square pair with an optional promotion piece.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

func (Move) Kind() Kind { return KindMove }
func (Move) message()   {}

// OfferDraw is part of the vocabulary but not handled by the server.
type OfferDraw struct{}

func (OfferDraw) Kind() Kind { return KindOfferDraw }
func (OfferDraw) message()   {}

// AcceptDraw is part of the vocabulary but not handled by the server.
type AcceptDraw struct{}

func (AcceptDraw) Kind() Kind { return KindAcceptDraw }
func (AcceptDraw) message()   {}

// DeclineDraw is part of the vocabulary but not handled by the server.
type DeclineDraw struct{}

func (DeclineDraw) Kind() Kind { return KindDeclineDraw }
func (DeclineDraw) message()   {}

// Resign concedes the current game.
type Resign struct{}

func (Resign) Kind() Kind { return KindResign }
func (Resign) message()   {}
