// Package session implements the Session component: transport,
// handshake state machine, heartbeat watchdog, and orderly shutdown. It
// drives the full Synergy handshake over a TLS/mTLS-capable transport,
// with plain TCP as the degenerate case.
package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"

	"github.com/synergo-project/synergo/internal/dispatch"
	"github.com/synergo-project/synergo/internal/protocol"
)

// Config is the transport and handshake configuration a Session is built
// with.
type Config struct {
	Server string
	Port   int

	ClientName string

	TLS           bool
	MTLS          bool
	TLSTrust      bool   // skip peer certificate verification when true (loud warning)
	PEMPath       string // combined client certificate+key PEM, required when MTLS is set
	TLSMinVersion uint16 // tls.VersionTLS1x; zero lets crypto/tls pick its own floor

	ConnectTimeout             time.Duration
	HeartbeatInterval          time.Duration
	HeartbeatTimeoutMultiplier int
}

func (c Config) address() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

func (c Config) heartbeatWindow() time.Duration {
	mult := c.HeartbeatTimeoutMultiplier
	if mult <= 0 {
		mult = 3
	}
	interval := c.HeartbeatInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return time.Duration(mult) * interval
}

// Session owns the socket and drives the handshake/heartbeat state machine,
// forwarding every input opcode to a Dispatcher once Active.
type Session struct {
	cfg        Config
	screen     protocol.ScreenInfo
	dispatcher *dispatch.Dispatcher
	logger     *log.Logger

	conn         net.Conn
	parser       *protocol.StreamParser
	state        State
	lastActivity time.Time
}

// New builds a Session in the Disconnected state. screen is the configured
// screen descriptor sent in reply to QINF; the caller resolves
// screen_width/screen_height (configured or probed) before calling Run.
func New(cfg Config, screen protocol.ScreenInfo, dispatcher *dispatch.Dispatcher, logger *log.Logger) *Session {
	return &Session{
		cfg:        cfg,
		screen:     screen,
		dispatcher: dispatcher,
		logger:     logger,
		state:      Disconnected,
	}
}

// State returns the session's current state machine node.
func (s *Session) State() State {
	return s.state
}

// Run dials the server, performs the handshake, and then reads and
// dispatches messages until ctx is canceled or the session fails. It
// returns nil only on a clean ctx cancellation; every other exit returns a
// non-nil error describing the failure.
func (s *Session) Run(ctx context.Context) error {
	if s.state != Disconnected {
		return ErrAlreadyRunning
	}

	s.state = Connecting
	conn, err := s.dial(ctx)
	if err != nil {
		s.state = Failed
		return fmt.Errorf("session: connect: %w", err)
	}
	s.conn = conn
	defer func() { _ = s.conn.Close() }()

	// Closing the conn on cancellation is the only cross-goroutine action
	// in this package; it unblocks the read loop below without touching
	// any dispatcher-owned state.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-watchDone:
		}
	}()

	s.state = AwaitingHello
	s.parser = protocol.NewStreamParser()
	s.lastActivity = time.Now()

	buf := make([]byte, 4096)
	for {
		deadline := s.lastActivity.Add(s.cfg.heartbeatWindow())
		if err := s.conn.SetReadDeadline(deadline); err != nil {
			s.state = Failed
			return fmt.Errorf("session: set read deadline: %w", err)
		}

		n, err := s.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				s.state = Draining
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.state = Failed
				return fmt.Errorf("session: %w", ErrHeartbeatTimeout)
			}
			s.state = Failed
			return fmt.Errorf("session: read: %w", err)
		}
		s.parser.Feed(buf[:n])

		if err := s.drainParser(); err != nil {
			s.state = Failed
			return err
		}
	}
}

// drainParser pulls every complete frame currently buffered and dispatches
// it, tolerating per-message decode errors for known opcodes.
func (s *Session) drainParser() error {
	for {
		msg, ok, err := s.parser.Next()
		if err != nil {
			if errors.Is(err, protocol.ErrMalformedPayload) {
				s.logger.Warn("dropping malformed message", "err", err)
				s.lastActivity = time.Now()
				continue
			}
			return fmt.Errorf("session: %w", err)
		}
		if !ok {
			return nil
		}
		s.lastActivity = time.Now()
		if err := s.handle(msg); err != nil {
			return err
		}
	}
}

// handle implements the state machine transition table for
// handshake/heartbeat opcodes, forwarding every other message to the
// Dispatcher once past the handshake.
func (s *Session) handle(msg protocol.Message) error {
	switch m := msg.(type) {
	case protocol.Hello:
		if m.Major < 1 {
			return fmt.Errorf("session: peer major version %d: %w", m.Major, ErrUnsupportedProtocol)
		}
		if err := s.send(protocol.HelloBack{Major: 1, Minor: 6, Name: s.cfg.ClientName}); err != nil {
			return err
		}
		s.state = Greeted
		return nil

	case protocol.QueryInfo:
		if err := s.send(s.screen); err != nil {
			return err
		}
		s.dispatcher.SetScreenKnown(s.screen.Width, s.screen.Height)
		return nil

	case protocol.InfoAck:
		s.state = Active
		return nil

	case protocol.KeepAlive:
		return s.send(protocol.KeepAlive{})

	case protocol.ProtocolErrorMessage:
		return fmt.Errorf("session: %s: %w", m.Op.String(), ErrProtocolTerminated)

	default:
		if s.state != Active {
			s.logger.Debug("dropping message received before the handshake completed", "opcode", msg.Opcode().String())
			return nil
		}
		if err := s.dispatcher.Handle(msg); err != nil {
			return fmt.Errorf("session: dispatch: %w", err)
		}
		return nil
	}
}

func (s *Session) send(msg protocol.Message) error {
	frame, err := protocol.EncodeFrame(msg)
	if err != nil {
		return fmt.Errorf("session: encode %T: %w", msg, err)
	}
	if _, err := s.conn.Write(frame); err != nil {
		return fmt.Errorf("session: write %T: %w", msg, err)
	}
	return nil
}

// Stop performs an orderly shutdown: release every held key, then close
// the transport--> Draining).
func (s *Session) Stop() error {
	s.state = Draining
	resetErr := s.dispatcher.Reset()
	var closeErr error
	if s.conn != nil {
		closeErr = s.conn.Close()
	}
	if resetErr != nil {
		return fmt.Errorf("session: stop: %w", resetErr)
	}
	if closeErr != nil {
		return fmt.Errorf("session: stop: %w", closeErr)
	}
	return nil
}

func (s *Session) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: s.cfg.ConnectTimeout}

	if !s.cfg.TLS && !s.cfg.MTLS {
		return dialer.DialContext(ctx, "tcp", s.cfg.address())
	}

	tlsConfig := &tls.Config{ //nolint:gosec // InsecureSkipVerify is an explicit opt-in via tls_trust
		InsecureSkipVerify: s.cfg.TLSTrust,
		MinVersion:         s.cfg.TLSMinVersion,
	}
	if s.cfg.TLSTrust {
		s.logger.Warn("TLS certificate verification disabled by tls_trust")
	}
	if s.cfg.MTLS {
		cert, err := tls.LoadX509KeyPair(s.cfg.PEMPath, s.cfg.PEMPath)
		if err != nil {
			return nil, fmt.Errorf("session: load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	rawConn, err := dialer.DialContext(ctx, "tcp", s.cfg.address())
	if err != nil {
		return nil, err
	}
	tlsConn := tls.Client(rawConn, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = rawConn.Close()
		return nil, fmt.Errorf("session: tls handshake: %w", err)
	}
	return tlsConn, nil
}
