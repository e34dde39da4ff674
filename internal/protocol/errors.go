package protocol

import "errors"

var (
	// ErrMalformedEnvelope covers unparseable text, unknown tags and
	// payloads of the wrong shape.
	ErrMalformedEnvelope = errors.New("protocol: malformed envelope")

	// ErrDuplicateHandshake is reported when an identified transport
	// sends another handshake.
	ErrDuplicateHandshake = errors.New("protocol: duplicate handshake")
)
