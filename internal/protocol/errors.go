package protocol

import "errors"

// Fatal framing/protocol errors. Any of these
// means the session must close.
var (
	ErrFrameTooLarge   = errors.New("protocol: frame exceeds MaxMessageSize")
	ErrFrameEmpty      = errors.New("protocol: frame length is zero")
	ErrShortPayload    = errors.New("protocol: payload shorter than opcode minimum")
	ErrCoordOverflow   = errors.New("protocol: coordinate field overflows its wire width")
	ErrUnknownGreeting = errors.New("protocol: expected \"Synergy\" greeting")
)

// ErrMalformedPayload is recoverable: the session
// logs and skips the message, known opcode or not.
var ErrMalformedPayload = errors.New("protocol: malformed payload for known opcode")
