package session

import "errors"

var (
	// ErrUnsupportedProtocol is returned when the peer's Hello advertises a
	// major version below 1.
	ErrUnsupportedProtocol = errors.New("session: unsupported protocol version")

	// ErrHeartbeatTimeout is returned when no message arrives within
	// HeartbeatTimeoutMultiplier (default 3) times the configured
	// keep-alive interval.
	ErrHeartbeatTimeout = errors.New("session: heartbeat timeout")

	// ErrProtocolTerminated is returned when the server sends EBAD/EBSY/EUNK.
	ErrProtocolTerminated = errors.New("session: server sent a protocol error")

	// ErrAlreadyRunning is returned by Run if called on a session already
	// past Disconnected.
	ErrAlreadyRunning = errors.New("session: already running")
)
