package multiplayer

// CoordinatorMessage is an input to the coordinator's event loop.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// TransportOpenedMsg announces a new, unidentified transport.
type TransportOpenedMsg struct {
	Transport Transport
}

func (TransportOpenedMsg) coordinatorMessage() {}

// EnvelopeMsg carries one raw inbound envelope from a transport.
type EnvelopeMsg struct {
	TransportID string
	Raw         []byte
}

func (EnvelopeMsg) coordinatorMessage() {}

// TransportClosedMsg is sent when a transport's read side ends.
type TransportClosedMsg struct {
	TransportID string
}

func (TransportClosedMsg) coordinatorMessage() {}

// GameEndReason describes why a game left the registry.
type GameEndReason int

const (
	GameEndReasonTerminal GameEndReason = iota // Checkmate or draw
	GameEndReasonResigned                      // A player resigned
)

func (r GameEndReason) String() string {
	switch r {
	case GameEndReasonTerminal:
		return "terminal"
	case GameEndReasonResigned:
		return "resignation"
	default:
		return "unknown"
	}
}
