// Package protocol defines the relay's wire contract: a JSON envelope
// {"type": <kind>, "data": <payload>} carrying one of a closed set of
// message kinds. Decoding inspects the tag first and only then interprets
// the payload, so an unknown tag never reaches the coordinator.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the envelope tag.
type Kind string

const (
	KindHandshakeRequest Kind = "HANDSHAKE_REQUEST"
	KindHandshake        Kind = "HANDSHAKE"
	KindReady            Kind = "READY"
	KindReconnected      Kind = "RECONNECTED"
	KindEcho             Kind = "ECHO"
	KindError            Kind = "ERROR"
	KindRequestGame      Kind = "REQUEST_GAME"
	KindStartGame        Kind = "START_GAME"
	KindMove             Kind = "MOVE"
	KindOfferDraw        Kind = "OFFER_DRAW"
	KindAcceptDraw       Kind = "ACCEPT_DRAW"
	KindDeclineDraw      Kind = "DECLINE_DRAW"
	KindResign           Kind = "RESIGN"
)

// Envelope is the serialized form of every message in both directions.
type Envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Encode serializes a message into its envelope text.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("protocol: cannot encode nil message")
	}

	data, err := json.Marshal(payloadOf(msg))
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode %s payload: %w", msg.Kind(), err)
	}

	out, err := json.Marshal(Envelope{Type: msg.Kind(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode %s envelope: %w", msg.Kind(), err)
	}
	return out, nil
}

// payloadOf returns the value placed under "data". ECHO and ERROR carry a
// bare string; everything else is an object.
func payloadOf(msg Message) any {
	switch m := msg.(type) {
	case Echo:
		return m.Text
	case Error:
		return m.Text
	default:
		return msg
	}
}

// Decode parses envelope text into a typed message.
// Any failure wraps ErrMalformedEnvelope.
func Decode(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	switch env.Type {
	case KindHandshakeRequest:
		return HandshakeRequest{}, nil
	case KindReady:
		return Ready{}, nil
	case KindRequestGame:
		return RequestGame{}, nil
	case KindOfferDraw:
		return OfferDraw{}, nil
	case KindAcceptDraw:
		return AcceptDraw{}, nil
	case KindDeclineDraw:
		return DeclineDraw{}, nil
	case KindResign:
		return Resign{}, nil

	case KindHandshake:
		var h Handshake
		if err := decodeObject(env, &h); err != nil {
			return nil, err
		}
		if h.Username == "" {
			return nil, fmt.Errorf("%w: handshake without username", ErrMalformedEnvelope)
		}
		return h, nil

	case KindReconnected:
		var r Reconnected
		if err := decodeObject(env, &r); err != nil {
			return nil, err
		}
		if r.State != StateInPool && r.State != StateInGame {
			return nil, fmt.Errorf("%w: unknown reconnection state %q", ErrMalformedEnvelope, r.State)
		}
		return r, nil

	case KindStartGame:
		var s StartGame
		if err := decodeObject(env, &s); err != nil {
			return nil, err
		}
		return s, nil

	case KindMove:
		var m Move
		if err := decodeObject(env, &m); err != nil {
			return nil, err
		}
		if m.From == "" || m.To == "" {
			return nil, fmt.Errorf("%w: move requires from and to", ErrMalformedEnvelope)
		}
		return m, nil

	case KindEcho:
		text, err := decodeString(env)
		if err != nil {
			return nil, err
		}
		return Echo{Text: text}, nil

	case KindError:
		text, err := decodeString(env)
		if err != nil {
			return nil, err
		}
		return Error{Text: text}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEnvelope)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedEnvelope, env.Type)
	}
}

func decodeObject(env Envelope, dst any) error {
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("%w: %s payload must be an object", ErrMalformedEnvelope, env.Type)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrMalformedEnvelope, env.Type, err)
	}
	return nil
}

func decodeString(env Envelope) (string, error) {
	var s string
	if err := json.Unmarshal(env.Data, &s); err != nil {
		return "", fmt.Errorf("%w: %s payload must be a string", ErrMalformedEnvelope, env.Type)
	}
	return s, nil
}
