// Package device wraps the kernel-level virtual input device the client
// injects events into: a uinput keyboard, relative mouse, and absolute
// touchpad, presented as the single narrow surface the dispatcher needs,
// covering both pointer and keyboard injection through one device handle.
package device

import (
	"fmt"
	"sync"

	"github.com/ThomasT75/uinput"
	evdev "github.com/gvalkov/golang-evdev"

	"github.com/synergo-project/synergo/internal/keycodes"
)

// ScreenSize is the dimensions a VirtualDevice was built against, needed to
// scale absolute coordinates into the touchpad device's native range.
type ScreenSize struct {
	Width, Height uint16
}

// VirtualDevice is the single kernel-facing object the dispatcher drives.
// It owns three uinput devices (keyboard, relative mouse, absolute
// touchpad) and tracks currently-held keys so a disconnect can release
// them cleanly.
type VirtualDevice struct {
	mu     sync.Mutex
	closed bool

	keyboard uinput.Keyboard
	mouse    uinput.Mouse
	touchpad uinput.TouchPad

	screen ScreenSize
	held   map[keycodes.EventCode]bool
}

// deviceName is the name reported to the kernel for every device node this
// client creates; udev rules and compositor input-method allowlists often
// key off this string.
const deviceName = "Synergo Virtual Input"

// New creates the keyboard, relative mouse, and absolute touchpad uinput
// devices, each with the capability set the uinput library declares for
// that device type; the keycode tables are not consulted here.
func New(screen ScreenSize) (*VirtualDevice, error) {
	keyboard, err := uinput.CreateKeyboard("/dev/uinput", []byte(deviceName+" Keyboard"))
	if err != nil {
		return nil, fmt.Errorf("device: create virtual keyboard: %w", err)
	}

	mouse, err := uinput.CreateMouse("/dev/uinput", []byte(deviceName+" Mouse"))
	if err != nil {
		_ = keyboard.Close()
		return nil, fmt.Errorf("device: create virtual mouse: %w", err)
	}

	touchpad, err := uinput.CreateTouchPad(
		"/dev/uinput",
		[]byte(deviceName+" Touchpad"),
		0, int32(screen.Width),
		0, int32(screen.Height),
	)
	if err != nil {
		_ = keyboard.Close()
		_ = mouse.Close()
		return nil, fmt.Errorf("device: create virtual touchpad: %w", err)
	}

	return &VirtualDevice{
		keyboard: keyboard,
		mouse:    mouse,
		touchpad: touchpad,
		screen:   screen,
		held:     make(map[keycodes.EventCode]bool),
	}, nil
}

// Close releases all three uinput devices, first releasing any keys still
// marked held.
func (d *VirtualDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	d.releaseAllLocked()

	var first error
	if err := d.keyboard.Close(); err != nil {
		first = err
	}
	if err := d.mouse.Close(); err != nil && first == nil {
		first = err
	}
	if err := d.touchpad.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// PressKey emits a key-down for the given evdev code and remembers it as
// held. Pressing an already-held key is a no-op other than re-emitting the
// event, mirroring real keyboard autorepeat at the driver level.
func (d *VirtualDevice) PressKey(code keycodes.EventCode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if err := d.keyboard.KeyDown(int(code)); err != nil {
		return fmt.Errorf("device: key down %d: %w", code, err)
	}
	d.held[code] = true
	return nil
}

// ReleaseKey emits a key-up and forgets the held state. Releasing a key
// that was never pressed is a no-op: requires DKUP to release
// only "the (id,mask) that was actually pressed", which the dispatcher
// resolves before calling here, so VirtualDevice itself stays permissive.
func (d *VirtualDevice) ReleaseKey(code keycodes.EventCode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if !d.held[code] {
		return nil
	}
	if err := d.keyboard.KeyUp(int(code)); err != nil {
		return fmt.Errorf("device: key up %d: %w", code, err)
	}
	delete(d.held, code)
	return nil
}

// ReleaseAllHeldKeys releases every key this device believes is currently
// down. Called on session reset so a dropped connection never leaves a
// key stuck down on the host.
func (d *VirtualDevice) ReleaseAllHeldKeys() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	return d.releaseAllLocked()
}

func (d *VirtualDevice) releaseAllLocked() error {
	var first error
	for code := range d.held {
		if err := d.keyboard.KeyUp(int(code)); err != nil && first == nil {
			first = fmt.Errorf("device: releasing held key %d: %w", code, err)
		}
		delete(d.held, code)
	}
	return first
}

// MoveRelative injects a relative mouse move (spec DMRM).
func (d *VirtualDevice) MoveRelative(dx, dy int16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if dx == 0 && dy == 0 {
		return nil
	}
	if err := d.mouse.Move(int32(dx), int32(dy)); err != nil {
		return fmt.Errorf("device: relative move: %w", err)
	}
	return nil
}

// MoveAbsolute injects an absolute mouse move (spec DMMV) via the
// touchpad device, clamping to the screen bounds this device was built
// with rather than trusting the wire coordinates.
func (d *VirtualDevice) MoveAbsolute(x, y int16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	cx := clamp(int32(x), 0, int32(d.screen.Width))
	cy := clamp(int32(y), 0, int32(d.screen.Height))
	if err := d.touchpad.MoveTo(cx, cy); err != nil {
		return fmt.Errorf("device: absolute move: %w", err)
	}
	return nil
}

// Wheel injects a scroll event (spec DMWM). Synergy reports wheel deltas
// in multiples of 120 per notch on the vertical axis (WHEEL_DELTA); this
// client forwards the raw delta and lets the uinput driver's REL_WHEEL
// scaling apply, matching how real Synergy/Barrier clients behave.
func (d *VirtualDevice) Wheel(dx, dy int16) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if dy != 0 {
		if err := d.mouse.Wheel(false, int32(dy)); err != nil {
			return fmt.Errorf("device: vertical wheel: %w", err)
		}
	}
	if dx != 0 {
		if err := d.mouse.Wheel(true, int32(dx)); err != nil {
			return fmt.Errorf("device: horizontal wheel: %w", err)
		}
	}
	return nil
}

// MouseButtonDown presses a mouse button (spec DMDN).
func (d *VirtualDevice) MouseButtonDown(ev keycodes.EventCode) error {
	return d.pressMouseButton(ev, true)
}

// MouseButtonUp releases a mouse button (spec DMUP).
func (d *VirtualDevice) MouseButtonUp(ev keycodes.EventCode) error {
	return d.pressMouseButton(ev, false)
}

func (d *VirtualDevice) pressMouseButton(ev keycodes.EventCode, down bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	var err error
	switch ev {
	case keycodes.EventCode(evdev.BTN_LEFT):
		if down {
			err = d.mouse.LeftPress()
		} else {
			err = d.mouse.LeftRelease()
		}
	case keycodes.EventCode(evdev.BTN_RIGHT):
		if down {
			err = d.mouse.RightPress()
		} else {
			err = d.mouse.RightRelease()
		}
	case keycodes.EventCode(evdev.BTN_MIDDLE):
		if down {
			err = d.mouse.MiddlePress()
		} else {
			err = d.mouse.MiddleRelease()
		}
	default:
		return fmt.Errorf("device: button %d: %w", ev, ErrUnsupportedButton)
	}
	if err != nil {
		return fmt.Errorf("device: mouse button: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
