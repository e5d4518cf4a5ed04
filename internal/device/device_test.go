package device

import (
	"os"
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergo-project/synergo/internal/keycodes"
)

// requireUinput skips the test when /dev/uinput is unavailable, matching
// the permission-dependent nature of these tests in CI and sandboxes.
func requireUinput(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping uinput integration test in short mode")
	}
	if _, err := os.Stat("/dev/uinput"); os.IsNotExist(err) {
		t.Skip("/dev/uinput does not exist - uinput module not loaded")
	}
}

func TestNew_CreatesAndCloses(t *testing.T) {
	requireUinput(t)

	dev, err := New(ScreenSize{Width: 1920, Height: 1080})
	if err != nil {
		t.Skipf("cannot create virtual device: %v", err)
	}
	require.NoError(t, dev.Close())
}

func TestPressRelease_TracksHeldKeys(t *testing.T) {
	requireUinput(t)

	dev, err := New(ScreenSize{Width: 1920, Height: 1080})
	if err != nil {
		t.Skipf("cannot create virtual device: %v", err)
	}
	defer func() { _ = dev.Close() }()

	code := keycodes.EventCode(evdev.KEY_A)
	require.NoError(t, dev.PressKey(code))
	assert.True(t, dev.held[code])

	require.NoError(t, dev.ReleaseKey(code))
	assert.False(t, dev.held[code])
}

func TestReleaseAllHeldKeys(t *testing.T) {
	requireUinput(t)

	dev, err := New(ScreenSize{Width: 1920, Height: 1080})
	if err != nil {
		t.Skipf("cannot create virtual device: %v", err)
	}
	defer func() { _ = dev.Close() }()

	require.NoError(t, dev.PressKey(keycodes.EventCode(evdev.KEY_A)))
	require.NoError(t, dev.PressKey(keycodes.EventCode(evdev.KEY_LEFTSHIFT)))
	require.Len(t, dev.held, 2)

	require.NoError(t, dev.ReleaseAllHeldKeys())
	assert.Empty(t, dev.held)
}

func TestMethodsAfterClose(t *testing.T) {
	requireUinput(t)

	dev, err := New(ScreenSize{Width: 1920, Height: 1080})
	if err != nil {
		t.Skipf("cannot create virtual device: %v", err)
	}
	require.NoError(t, dev.Close())

	assert.ErrorIs(t, dev.PressKey(keycodes.EventCode(evdev.KEY_A)), ErrClosed)
	assert.ErrorIs(t, dev.MoveRelative(1, 1), ErrClosed)
	assert.ErrorIs(t, dev.MoveAbsolute(1, 1), ErrClosed)
	assert.ErrorIs(t, dev.Wheel(1, 1), ErrClosed)
	assert.ErrorIs(t, dev.MouseButtonDown(keycodes.EventCode(evdev.BTN_LEFT)), ErrClosed)
}

func TestMouseButtonDown_UnsupportedButton(t *testing.T) {
	requireUinput(t)

	dev, err := New(ScreenSize{Width: 1920, Height: 1080})
	if err != nil {
		t.Skipf("cannot create virtual device: %v", err)
	}
	defer func() { _ = dev.Close() }()

	err = dev.MouseButtonDown(keycodes.EventCode(evdev.BTN_SIDE))
	assert.ErrorIs(t, err, ErrUnsupportedButton)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, int32(0), clamp(-5, 0, 1920))
	assert.Equal(t, int32(1920), clamp(5000, 0, 1920))
	assert.Equal(t, int32(100), clamp(100, 0, 1920))
}
