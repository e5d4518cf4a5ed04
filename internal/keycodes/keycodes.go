// Package keycodes translates between the four key-code namespaces a
// Synergy client has to cross to turn a wire key ID into a kernel input
// event: Synergy key ID, a platform-neutral virtual key, a USB HID usage,
// and finally the Linux evdev event code written to /dev/uinput.
//
// The three translation tables are generated once, at package init, from a
// single master table (table.go) so that they cannot drift out of sync with
// each other the way three hand-maintained tables could.
package keycodes

import (
	evdev "github.com/gvalkov/golang-evdev"
)

// VirtualKey is the platform-neutral pivot identifier between the Synergy
// and HID namespaces.
type VirtualKey string

// EventCode is a Linux evdev KEY_*/BTN_* constant.
type EventCode uint16

// HIDUsage is a USB HID keyboard-page usage ID (page 0x07).
type HIDUsage uint16

// Mask holds the Synergy modifier-mask bits relevant to mask-sensitive
// translations (AltGr, NumLock). Only entries that actually vary by mask
// carry a non-default row in the master table; every other key ignores it.
type Mask uint16

const (
	MaskNone    Mask = 0
	MaskShift   Mask = 1 << 0
	MaskControl Mask = 1 << 1
	MaskAlt     Mask = 1 << 2
	MaskMeta    Mask = 1 << 3
	MaskAltGr   Mask = 1 << 4
	MaskNumLock Mask = 1 << 5
	MaskCapsLock Mask = 1 << 6
)

// entry is one row of the master table: a virtual key paired with its
// identity in every other namespace, plus an optional mask-conditioned
// Synergy ID override (e.g. numpad keys under NumLock).
type entry struct {
	vk       VirtualKey
	synergy  uint16
	hid      HIDUsage
	event    EventCode
	altMask  Mask   // non-zero if synergyAlt applies only under this mask
	synergyAlt uint16
}

// Tables is an immutable, process-wide-shareable composed translation
// table. The zero value is not usable; use New.
type Tables struct {
	synergyDefault map[uint16]VirtualKey
	synergyMasked  map[maskedKey]VirtualKey
	vkToEvent      map[VirtualKey]EventCode
	vkToHID        map[VirtualKey]HIDUsage
	hidToVK        map[HIDUsage]VirtualKey
	eventToVK      map[EventCode]VirtualKey
	mouseButtons   map[uint8]EventCode
	allEventCodes  map[EventCode]struct{}
}

type maskedKey struct {
	id   uint16
	mask Mask
}

var shared = New()

// Shared returns the process-wide, read-only key code table instance built
// from the master table in table.go. Safe for concurrent use by any number
// of sessions.
func Shared() *Tables { return shared }

// New builds a fresh Tables from the master table. Exposed mainly for
// tests; production code should use Shared.
func New() *Tables {
	t := &Tables{
		synergyDefault: make(map[uint16]VirtualKey, len(masterTable)),
		synergyMasked:  make(map[maskedKey]VirtualKey),
		vkToEvent:      make(map[VirtualKey]EventCode, len(masterTable)),
		vkToHID:        make(map[VirtualKey]HIDUsage, len(masterTable)),
		hidToVK:        make(map[HIDUsage]VirtualKey, len(masterTable)),
		eventToVK:      make(map[EventCode]VirtualKey, len(masterTable)),
		mouseButtons:   make(map[uint8]EventCode, len(mouseButtonTable)),
		allEventCodes:  make(map[EventCode]struct{}, len(masterTable)),
	}

	for _, e := range masterTable {
		t.synergyDefault[e.synergy] = e.vk
		if e.altMask != MaskNone {
			t.synergyMasked[maskedKey{id: e.synergy, mask: e.altMask}] = e.vk
		}
		t.vkToEvent[e.vk] = e.event
		t.vkToHID[e.vk] = e.hid
		t.hidToVK[e.hid] = e.vk
		t.eventToVK[e.event] = e.vk
		t.allEventCodes[e.event] = struct{}{}
	}

	// Entries that are only reachable via a masked Synergy ID (e.g. a
	// numpad key under NumLock mapping to a VK not otherwise addressable
	// by its bare Synergy ID) still need their event code registered.
	for _, e := range masterTable {
		if e.synergyAlt != 0 {
			if alt, ok := findByVK(e.vk); ok {
				t.synergyMasked[maskedKey{id: e.synergyAlt, mask: e.altMask}] = alt
			}
		}
	}

	for n, code := range mouseButtonTable {
		t.mouseButtons[n] = code
	}

	return t
}

func findByVK(vk VirtualKey) (VirtualKey, bool) {
	for _, e := range masterTable {
		if e.vk == vk {
			return e.vk, true
		}
	}
	return "", false
}

// SynergyToEvent translates a (Synergy key ID, modifier mask) pair to the
// kernel event code to emit. The second return is false for an unmapped
// key ID; callers must discard rather than guess.
func (t *Tables) SynergyToEvent(id uint16, mask Mask) (EventCode, bool) {
	if mask != MaskNone {
		if vk, ok := t.synergyMasked[maskedKey{id: id, mask: mask & (MaskAltGr | MaskNumLock)}]; ok {
			if ev, ok := t.vkToEvent[vk]; ok {
				return ev, true
			}
		}
	}
	vk, ok := t.synergyDefault[id]
	if !ok {
		return 0, false
	}
	ev, ok := t.vkToEvent[vk]
	return ev, ok
}

// VirtualKeyFor exposes the pivot VK for a Synergy ID, primarily so a
// caller can log a human-readable key name instead of a bare numeric ID.
func (t *Tables) VirtualKeyFor(id uint16) (VirtualKey, bool) {
	vk, ok := t.synergyDefault[id]
	return vk, ok
}

// EventForHID translates a HID usage to its kernel event code, used by
// tests to verify the forward/reverse round trip through the VK pivot.
func (t *Tables) EventForHID(hid HIDUsage) (EventCode, bool) {
	vk, ok := t.hidToVK[hid]
	if !ok {
		return 0, false
	}
	ev, ok := t.vkToEvent[vk]
	return ev, ok
}

// HIDForEvent is the inverse of EventForHID.
func (t *Tables) HIDForEvent(ev EventCode) (HIDUsage, bool) {
	vk, ok := t.eventToVK[ev]
	if !ok {
		return 0, false
	}
	hid, ok := t.vkToHID[vk]
	return hid, ok
}

// Synergy mouse button numbering: 1=LEFT, 2=MIDDLE, 3=RIGHT, 4=SIDE, 5=EXTRA.
const (
	MouseButtonLeft   uint8 = 1
	MouseButtonMiddle uint8 = 2
	MouseButtonRight  uint8 = 3
	MouseButtonSide   uint8 = 4
	MouseButtonExtra  uint8 = 5
)

var mouseButtonTable = map[uint8]EventCode{
	MouseButtonLeft:   EventCode(evdev.BTN_LEFT),
	MouseButtonMiddle: EventCode(evdev.BTN_MIDDLE),
	MouseButtonRight:  EventCode(evdev.BTN_RIGHT),
	MouseButtonSide:   EventCode(evdev.BTN_SIDE),
	MouseButtonExtra:  EventCode(evdev.BTN_EXTRA),
}

// MouseButtonToEvent translates a Synergy button number to an evdev BTN_*
// code. The second return is false for a button number Synergy does not
// define.
func (t *Tables) MouseButtonToEvent(n uint8) (EventCode, bool) {
	ev, ok := t.mouseButtons[n]
	return ev, ok
}

// AllKnownEventCodes returns the full set of EV_KEY codes this table can
// ever emit, for declaring uinput device capabilities. The
// returned slice is freshly allocated and safe to mutate.
func (t *Tables) AllKnownEventCodes() []EventCode {
	out := make([]EventCode, 0, len(t.allEventCodes)+len(t.mouseButtons))
	for ev := range t.allEventCodes {
		out = append(out, ev)
	}
	for _, ev := range t.mouseButtons {
		out = append(out, ev)
	}
	return out
}
