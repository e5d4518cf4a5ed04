// Package dispatch turns decoded protocol messages into VirtualDevice
// calls: the Dispatcher component. It is the only place the
// client's cursor mode (absolute vs relative), move throttle, and
// held-key leak prevention live, since the server side of this protocol
// sends raw, unthrottled move events and expects the client to coalesce
// them itself.
package dispatch

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/synergo-project/synergo/internal/cursor"
	"github.com/synergo-project/synergo/internal/keycodes"
	"github.com/synergo-project/synergo/internal/protocol"
)

// Injector is the subset of device.VirtualDevice the Dispatcher drives.
// Expressed as an interface so tests can substitute a fake rather than
// require real uinput access.
type Injector interface {
	PressKey(code keycodes.EventCode) error
	ReleaseKey(code keycodes.EventCode) error
	ReleaseAllHeldKeys() error
	MoveRelative(dx, dy int16) error
	MoveAbsolute(x, y int16) error
	Wheel(dx, dy int16) error
	MouseButtonDown(ev keycodes.EventCode) error
	MouseButtonUp(ev keycodes.EventCode) error
}

// Config holds the Dispatcher's configuration-derived behavior.
type Config struct {
	AbsoluteMouse bool
	MoveThreshold time.Duration
	PosSyncFreq   int
	ScreenWidth   uint16
	ScreenHeight  uint16
}

// heldKey is the (id, mask) pair the dispatcher actually translated and
// pressed, recorded so the matching key-up releases exactly that code even
// if the server's later DKUP carries a different mask.
type heldKey struct {
	id   uint16
	mask uint16
}

// pendingMove is a coalesced DMMV move (a target in absolute mode, a delta
// in relative mode) waiting for the move throttle to open.
type pendingMove struct {
	x, y int16
	set  bool
}

// Dispatcher is stateful: session mode, throttle clock, sync counter, and
// last-reported cursor position all live here.
type Dispatcher struct {
	cfg    Config
	dev    Injector
	tables *keycodes.Tables
	cursor *cursor.Context
	log    *log.Logger

	screenKnown bool

	moveCount    int
	lastMoveAt   time.Time
	pending      pendingMove
	lastReported cursor.Position

	pressed map[uint16]heldKey // synergy key ID -> the (id,mask) actually pressed

	options []uint32 // last DSOP option list, stored for later reference
}

// New builds a Dispatcher around an already-open VirtualDevice. ScreenWidth
// and ScreenHeight in cfg mark the screen as known immediately; a zero
// screen size means QINF/DINF has not happened yet and DMMV must be
// dropped.
func New(cfg Config, dev Injector, tables *keycodes.Tables, cursorCtx *cursor.Context, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:         cfg,
		dev:         dev,
		tables:      tables,
		cursor:      cursorCtx,
		log:         logger,
		screenKnown: cfg.ScreenWidth > 0 && cfg.ScreenHeight > 0,
		pressed:     make(map[uint16]heldKey),
	}
}

// SetScreenKnown marks the screen descriptor as resolved, called once the
// session has sent DINF in reply to QINF.
func (d *Dispatcher) SetScreenKnown(width, height uint16) {
	d.cfg.ScreenWidth = width
	d.cfg.ScreenHeight = height
	d.screenKnown = true
}

// Options returns the most recent DSOP option list the server sent, or nil
// if none has arrived yet.
func (d *Dispatcher) Options() []uint32 {
	return d.options
}

// Handle dispatches one decoded message. It never returns an error for
// recoverable conditions (unmapped keys, unknown screen, unheld releases):
// those are logged and absorbed. A returned error means a device error
// occurred and the session must terminate.
func (d *Dispatcher) Handle(msg protocol.Message) error {
	switch m := msg.(type) {
	case protocol.QueryInfo:
		return nil // the session layer replies with DINF; nothing for the device here.
	case protocol.InfoAck:
		return nil // session transitions to Active; no device action.
	case protocol.KeepAlive:
		return nil // session replies with CALV; no device action.
	case protocol.NoOp:
		return nil
	case protocol.CursorLeave:
		return d.flushAndReset()
	case protocol.CursorEnter:
		d.cursor.Report(cursor.Position{X: int32(m.X), Y: int32(m.Y)})
		return d.flushAndReset()
	case protocol.ResetOptions:
		return d.flushAndReset()
	case protocol.MouseMoveAbs:
		return d.handleMouseMoveAbs(m)
	case protocol.MouseMoveRel:
		return d.flushPending(func() error {
			return d.dev.MoveRelative(m.DX, m.DY)
		})
	case protocol.MouseDown:
		return d.flushPending(func() error { return d.handleMouseButton(m.Button, true) })
	case protocol.MouseUp:
		return d.flushPending(func() error { return d.handleMouseButton(m.Button, false) })
	case protocol.MouseWheel:
		return d.flushPending(func() error {
			return d.dev.Wheel(m.X, m.Y)
		})
	case protocol.KeyDown:
		return d.flushPending(func() error { return d.handleKeyDown(m.ID, m.Mask, m.Button) })
	case protocol.KeyUp:
		return d.flushPending(func() error { return d.handleKeyUp(m.ID) })
	case protocol.KeyRepeat:
		return d.flushPending(func() error { return d.handleKeyRepeat(m.ID, m.Mask, m.Button) })
	case protocol.SetOptions:
		d.options = m.Options
		d.log.Debug("set options stored", "count", len(m.Options))
		return nil
	case protocol.ClipboardMessage:
		d.log.Debug("clipboard message accepted, ignored", "opcode", m.Op.String())
		return nil
	case protocol.OpaqueMessage:
		d.log.Debug("opaque message ignored", "opcode", m.Op.String(), "len", len(m.Payload))
		return nil
	default:
		d.log.Debug("unhandled message ignored", "type", fmt.Sprintf("%T", m))
		return nil
	}
}

// Reset releases every key the dispatcher believes is held and drops any
// pending coalesced move, called on COUT and on session shutdown.
func (d *Dispatcher) Reset() error {
	d.pending = pendingMove{}
	d.pressed = make(map[uint16]heldKey)
	if err := d.dev.ReleaseAllHeldKeys(); err != nil {
		return fmt.Errorf("dispatch: reset: %w", err)
	}
	return nil
}

func (d *Dispatcher) flushAndReset() error {
	if err := d.flushPending(nil); err != nil {
		return err
	}
	return d.Reset()
}

func (d *Dispatcher) handleMouseMoveAbs(m protocol.MouseMoveAbs) error {
	if !d.screenKnown {
		d.log.Debug("dropping DMMV: screen not yet known")
		return nil
	}

	x := clampAxis(m.X, d.cfg.ScreenWidth)
	y := clampAxis(m.Y, d.cfg.ScreenHeight)

	if d.cfg.AbsoluteMouse {
		return d.emitAbsolute(x, y)
	}
	return d.emitRelativeFromAbsolute(x, y)
}

// emitAbsolute rescales screen-local coordinates to the full [0,65535]
// device range and throttles/coalesces the injection.
func (d *Dispatcher) emitAbsolute(x, y int16) error {
	const fullScale = 65535
	sx := int16(rescale(int32(x), int32(d.cfg.ScreenWidth), fullScale))
	sy := int16(rescale(int32(y), int32(d.cfg.ScreenHeight), fullScale))

	return d.throttledMove(sx, sy, func(tx, ty int16) error {
		return d.dev.MoveAbsolute(tx, ty)
	})
}

// emitRelativeFromAbsolute resolves the relative-mode anchor: refresh
// from CursorContext every mouse_pos_sync_freq moves, otherwise reuse
// last_reported.
func (d *Dispatcher) emitRelativeFromAbsolute(x, y int16) error {
	anchor := d.lastReported
	if d.cfg.PosSyncFreq <= 0 || d.moveCount%d.cfg.PosSyncFreq == 0 {
		anchor = d.cursor.Position()
	}
	d.moveCount++

	dx := int16(int32(x) - anchor.X)
	dy := int16(int32(y) - anchor.Y)
	d.lastReported = cursor.Position{X: int32(x), Y: int32(y)}
	d.cursor.Report(d.lastReported)

	return d.throttledMove(dx, dy, func(tx, ty int16) error {
		return d.dev.MoveRelative(tx, ty)
	})
}

// throttledMove coalesces rapid DMMV targets: below cfg.MoveThreshold
// since the last emitted move, the target replaces any previously pending
// one and is emitted later (flushPending), preserving last-wins semantics.
func (d *Dispatcher) throttledMove(x, y int16, emit func(int16, int16) error) error {
	now := time.Now()
	if d.cfg.MoveThreshold > 0 && !d.lastMoveAt.IsZero() && now.Sub(d.lastMoveAt) < d.cfg.MoveThreshold {
		d.pending = pendingMove{x: x, y: y, set: true}
		return nil
	}
	d.lastMoveAt = now
	if d.cfg.AbsoluteMouse {
		// An older coalesced target must not be replayed after this one.
		d.pending = pendingMove{}
	}
	return emit(x, y)
}

// flushPending emits any coalesced move before running action (any
// non-move event flushes the pending move). action may be nil when only
// a flush is wanted.
func (d *Dispatcher) flushPending(action func() error) error {
	if d.pending.set {
		p := d.pending
		d.pending = pendingMove{}
		if d.cfg.AbsoluteMouse {
			if err := d.dev.MoveAbsolute(p.x, p.y); err != nil {
				return fmt.Errorf("dispatch: flush pending absolute move: %w", err)
			}
		} else {
			if err := d.dev.MoveRelative(p.x, p.y); err != nil {
				return fmt.Errorf("dispatch: flush pending relative move: %w", err)
			}
		}
		d.lastMoveAt = time.Now()
	}
	if action == nil {
		return nil
	}
	if err := action(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleMouseButton(button int8, down bool) error {
	ev, ok := d.tables.MouseButtonToEvent(uint8(button))
	if !ok {
		d.log.Debug("unmapped mouse button, dropping", "button", button)
		return nil
	}
	var err error
	if down {
		err = d.dev.MouseButtonDown(ev)
	} else {
		err = d.dev.MouseButtonUp(ev)
	}
	if err != nil {
		return fmt.Errorf("dispatch: mouse button: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleKeyDown(id, mask, _ uint16) error {
	ev, ok := d.tables.SynergyToEvent(id, keycodes.Mask(mask))
	if !ok {
		d.log.Debug("unmapped key, dropping", "id", fmt.Sprintf("%#x", id))
		return nil
	}
	if err := d.dev.PressKey(ev); err != nil {
		return fmt.Errorf("dispatch: key down: %w", err)
	}
	d.pressed[id] = heldKey{id: id, mask: mask}
	return nil
}

func (d *Dispatcher) handleKeyUp(id uint16) error {
	held, ok := d.pressed[id]
	if !ok {
		d.log.Debug("key up for unheld id, ignoring", "id", fmt.Sprintf("%#x", id))
		return nil
	}
	delete(d.pressed, id)

	ev, ok := d.tables.SynergyToEvent(held.id, keycodes.Mask(held.mask))
	if !ok {
		return nil
	}
	if err := d.dev.ReleaseKey(ev); err != nil {
		return fmt.Errorf("dispatch: key up: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleKeyRepeat(id, mask, button uint16) error {
	if err := d.handleKeyUp(id); err != nil {
		return err
	}
	return d.handleKeyDown(id, mask, button)
}

func clampAxis(v int16, dim uint16) int16 {
	if dim == 0 {
		return 0
	}
	max := int32(dim) - 1
	cv := int32(v)
	if cv < 0 {
		return 0
	}
	if cv > max {
		return int16(max)
	}
	return v
}

func rescale(v, dim, target int32) int32 {
	if dim <= 1 {
		return 0
	}
	return v * target / (dim - 1)
}
