package session

import (
	"context"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"
	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergo-project/synergo/internal/cursor"
	"github.com/synergo-project/synergo/internal/dispatch"
	"github.com/synergo-project/synergo/internal/keycodes"
	"github.com/synergo-project/synergo/internal/protocol"
)

type fakeInjector struct {
	pressed []keycodes.EventCode
}

func (f *fakeInjector) PressKey(code keycodes.EventCode) error {
	f.pressed = append(f.pressed, code)
	return nil
}
func (f *fakeInjector) ReleaseKey(keycodes.EventCode) error      { return nil }
func (f *fakeInjector) ReleaseAllHeldKeys() error                { return nil }
func (f *fakeInjector) MoveRelative(dx, dy int16) error          { return nil }
func (f *fakeInjector) MoveAbsolute(x, y int16) error            { return nil }
func (f *fakeInjector) Wheel(dx, dy int16) error                 { return nil }
func (f *fakeInjector) MouseButtonDown(keycodes.EventCode) error { return nil }
func (f *fakeInjector) MouseButtonUp(keycodes.EventCode) error   { return nil }

func testLogger() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{})
}

func writeFrame(t *testing.T, conn net.Conn, msg protocol.Message) {
	t.Helper()
	frame, err := protocol.EncodeFrame(msg)
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)
}

func readFrame(t *testing.T, conn net.Conn, parser *protocol.StreamParser) protocol.Message {
	t.Helper()
	buf := make([]byte, 4096)
	for {
		if msg, ok, err := parser.Next(); err == nil && ok {
			return msg
		}
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		n, err := conn.Read(buf)
		require.NoError(t, err)
		parser.Feed(buf[:n])
	}
}

// TestSession_FullHandshakeAndDispatch drives a fake server through the
// complete handshake and confirms an input
// opcode reaches the dispatcher once Active.
func TestSession_FullHandshakeAndDispatch(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	framesSent := make(chan struct{})
	serverStop := make(chan struct{})

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		parser := protocol.NewStreamParser()

		writeFrame(t, conn, protocol.Hello{Major: 1, Minor: 6})

		back := readFrame(t, conn, parser)
		helloBack, ok := back.(protocol.HelloBack)
		require.True(t, ok)
		require.Equal(t, "synergo-test", helloBack.Name)

		writeFrame(t, conn, protocol.QueryInfo{})

		screenInfo := readFrame(t, conn, parser)
		_, ok = screenInfo.(protocol.ScreenInfo)
		require.True(t, ok)

		writeFrame(t, conn, protocol.InfoAck{})
		writeFrame(t, conn, protocol.KeyDown{ID: 0x61, Mask: 0, Button: 30})

		close(framesSent)
		<-serverStop
	}()
	defer close(serverStop)

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	inj := &fakeInjector{}
	d := dispatch.New(dispatch.Config{}, inj, keycodes.New(), cursor.New(), testLogger())

	cfg := Config{
		Server:            host,
		Port:              port,
		ClientName:        "synergo-test",
		ConnectTimeout:    2 * time.Second,
		HeartbeatInterval: 3 * time.Second,
	}
	screen := protocol.ScreenInfo{Width: 1920, Height: 1080}
	sess := New(cfg, screen, d, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	runDone := make(chan error, 1)
	go func() { runDone <- sess.Run(ctx) }()

	select {
	case <-framesSent:
	case <-time.After(5 * time.Second):
		t.Fatal("server never finished sending scripted frames")
	}

	// Give the event loop a moment to drain and dispatch the KeyDown
	// before tearing the session down.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	require.Len(t, inj.pressed, 1)
	assert.Equal(t, keycodes.EventCode(evdev.KEY_A), inj.pressed[0])
}

func TestSession_RejectsUnsupportedProtocol(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		writeFrame(t, conn, protocol.Hello{Major: 0, Minor: 9})
		time.Sleep(200 * time.Millisecond)
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	inj := &fakeInjector{}
	d := dispatch.New(dispatch.Config{}, inj, keycodes.New(), cursor.New(), testLogger())
	cfg := Config{Server: host, Port: port, ClientName: "synergo-test", ConnectTimeout: 2 * time.Second, HeartbeatInterval: 3 * time.Second}
	sess := New(cfg, protocol.ScreenInfo{Width: 1920, Height: 1080}, d, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = sess.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedProtocol)
	assert.Equal(t, Failed, sess.State())
}

func TestSession_RunTwiceIsRejected(t *testing.T) {
	inj := &fakeInjector{}
	d := dispatch.New(dispatch.Config{}, inj, keycodes.New(), cursor.New(), testLogger())
	sess := New(Config{ConnectTimeout: time.Millisecond}, protocol.ScreenInfo{}, d, testLogger())
	sess.state = Active

	err := sess.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
