package keycodes

import (
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynergyToEvent_LowercaseLetter(t *testing.T) {
	tbl := New()

	// This is the exact payload from scenario 4: id=0x61 'a'.
	ev, ok := tbl.SynergyToEvent(0x61, MaskNone)
	require.True(t, ok)
	assert.Equal(t, EventCode(evdev.KEY_A), ev)
}

func TestSynergyToEvent_Unmapped(t *testing.T) {
	tbl := New()

	_, ok := tbl.SynergyToEvent(0xDEAD, MaskNone)
	assert.False(t, ok, "an unknown Synergy ID must never fall through to an arbitrary code")
}

func TestSynergyToEvent_NumLockSensitive(t *testing.T) {
	tbl := New()

	// Numlock off: KP_End keysym.
	offEv, ok := tbl.SynergyToEvent(0xFF9C, MaskNone)
	require.True(t, ok)

	// Numlock on: KP_1 keysym, same physical key.
	onEv, ok := tbl.SynergyToEvent(0xFFB1, MaskNumLock)
	require.True(t, ok)

	assert.Equal(t, EventCode(evdev.KEY_KP1), offEv)
	assert.Equal(t, offEv, onEv, "both numlock states of the same physical numpad key must resolve to the same event code")
}

func TestMouseButtonToEvent(t *testing.T) {
	tbl := New()

	tests := []struct {
		name string
		n    uint8
		want EventCode
	}{
		{"left", MouseButtonLeft, EventCode(evdev.BTN_LEFT)},
		{"middle", MouseButtonMiddle, EventCode(evdev.BTN_MIDDLE)},
		{"right", MouseButtonRight, EventCode(evdev.BTN_RIGHT)},
		{"side", MouseButtonSide, EventCode(evdev.BTN_SIDE)},
		{"extra", MouseButtonExtra, EventCode(evdev.BTN_EXTRA)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev, ok := tbl.MouseButtonToEvent(tc.n)
			require.True(t, ok)
			assert.Equal(t, tc.want, ev)
		})
	}

	_, ok := tbl.MouseButtonToEvent(9)
	assert.False(t, ok)
}

// TestHIDRoundTrip is the round-trip law from : for every VK known
// on both sides, forward-then-inverse through the HID pivot is identity.
func TestHIDRoundTrip(t *testing.T) {
	tbl := New()

	seen := make(map[VirtualKey]bool)
	for _, e := range masterTable {
		if seen[e.vk] {
			continue
		}
		seen[e.vk] = true

		hid, ok := tbl.vkToHID[e.vk]
		require.True(t, ok, "vk %s missing from vkToHID", e.vk)

		backVK, ok := tbl.hidToVK[hid]
		require.True(t, ok, "hid %#x missing from hidToVK", hid)

		assert.Equal(t, e.vk, backVK, "HID round trip broke for vk %s", e.vk)
	}
}

// TestEventRoundTrip mirrors TestHIDRoundTrip for the VK<->event-code axis.
func TestEventRoundTrip(t *testing.T) {
	tbl := New()

	seen := make(map[VirtualKey]bool)
	for _, e := range masterTable {
		if seen[e.vk] {
			continue
		}
		seen[e.vk] = true

		ev, ok := tbl.vkToEvent[e.vk]
		require.True(t, ok)

		backVK, ok := tbl.eventToVK[ev]
		require.True(t, ok)

		assert.Equal(t, e.vk, backVK, "event code round trip broke for vk %s", e.vk)
	}
}

func TestAllKnownEventCodesIncludesMouseButtons(t *testing.T) {
	tbl := New()
	codes := tbl.AllKnownEventCodes()

	set := make(map[EventCode]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}

	assert.True(t, set[EventCode(evdev.BTN_LEFT)])
	assert.True(t, set[EventCode(evdev.KEY_A)])
}

func TestSharedIsSingleton(t *testing.T) {
	assert.Same(t, Shared(), Shared())
}
