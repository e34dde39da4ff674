package multiplayer

import (
	"sync"
	"testing"

	"github.com/vovakirdan/chess-relay/internal/protocol"
	"github.com/vovakirdan/chess-relay/internal/rules"
)

// fakeTransport records everything sent to it.
type fakeTransport struct {
	id string

	mu     sync.Mutex
	sent   []protocol.Message
	closed bool
}

func newFakeTransport(id string) *fakeTransport {
	return &fakeTransport{id: id}
}

func (f *fakeTransport) ID() string { return f.id }

func (f *fakeTransport) Send(msg protocol.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.sent = append(f.sent, msg)
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// drain returns and clears the recorded messages.
func (f *fakeTransport) drain() []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sent
	f.sent = nil
	return out
}

// expectOne drains the transport and requires exactly one message.
func expectOne(t *testing.T, f *fakeTransport) protocol.Message {
	t.Helper()
	msgs := f.drain()
	if len(msgs) != 1 {
		t.Fatalf("transport %s: expected exactly 1 message, got %d: %#v", f.id, len(msgs), msgs)
	}
	return msgs[0]
}

// expectNone drains the transport and requires it to be empty.
func expectNone(t *testing.T, f *fakeTransport) {
	t.Helper()
	if msgs := f.drain(); len(msgs) != 0 {
		t.Fatalf("transport %s: expected no messages, got %#v", f.id, msgs)
	}
}

// recordingSaver hands archived games to a channel.
type recordingSaver struct {
	results chan GameResultData
}

func newRecordingSaver() *recordingSaver {
	return &recordingSaver{results: make(chan GameResultData, 8)}
}

func (s *recordingSaver) SaveGameResult(result GameResultData) error {
	s.results <- result
	return nil
}

// newTestCoordinator returns a coordinator whose first arrival always plays
// white. Tests drive it through handleMessage without starting the loop.
func newTestCoordinator() *Coordinator {
	return newTestCoordinatorWith(rules.NewChess)
}

// newTestCoordinatorWith is newTestCoordinator with games built by factory.
func newTestCoordinatorWith(factory rules.Factory) *Coordinator {
	c := NewCoordinator(DefaultCoordinatorConfig(), factory, nil)
	c.pool.coin = func() bool { return true }
	return c
}

// fromFEN returns a factory whose games start at fen.
func fromFEN(t *testing.T, fen string) rules.Factory {
	t.Helper()
	if _, err := rules.NewChessFromFEN(fen); err != nil {
		t.Fatalf("bad test position %q: %v", fen, err)
	}
	return func() rules.Engine {
		e, _ := rules.NewChessFromFEN(fen)
		return e
	}
}

func openTransport(c *Coordinator, id string) *fakeTransport {
	tr := newFakeTransport(id)
	c.handleMessage(TransportOpenedMsg{Transport: tr})
	return tr
}

func deliver(c *Coordinator, tr *fakeTransport, raw string) {
	c.handleMessage(EnvelopeMsg{TransportID: tr.ID(), Raw: []byte(raw)})
}

// connect opens a transport and handshakes it, discarding the greeting and
// the handshake reply.
func connect(t *testing.T, c *Coordinator, transportID, username string) *fakeTransport {
	t.Helper()
	tr := openTransport(c, transportID)
	deliver(c, tr, `{"type":"HANDSHAKE","data":{"username":"`+username+`"}}`)
	if msgs := tr.drain(); len(msgs) != 2 {
		t.Fatalf("connect %s: expected 2 messages, got %#v", username, msgs)
	}
	return tr
}

// pair connects alice then bob and queues them in that order, so alice
// plays white. START_GAME messages are drained.
func pair(t *testing.T, c *Coordinator) (alice, bob *fakeTransport) {
	t.Helper()
	alice = connect(t, c, "t-alice", "alice")
	bob = connect(t, c, "t-bob", "bob")
	deliver(c, alice, `{"type":"REQUEST_GAME","data":{}}`)
	deliver(c, bob, `{"type":"REQUEST_GAME","data":{}}`)
	expectOne(t, alice)
	expectOne(t, bob)
	return alice, bob
}
