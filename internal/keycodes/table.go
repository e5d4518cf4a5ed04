package keycodes

import evdev "github.com/gvalkov/golang-evdev"

// masterTable is the single source of truth for every key this client
// understands. Every other table (Synergy ID -> VK, VK -> HID, VK -> event
// code, and their reverses) is derived from this slice at init time so the
// three namespaces can never drift apart. Synergy IDs follow the real wire
// values: printable ASCII code points for letters/digits/punctuation, X11
// keysym values (0xFF00-0xFFFF range) for everything else - this is what
// Deskflow/Barrier/Synergy servers actually put on the wire.
var masterTable = []entry{
	// Letters - Synergy sends the lowercase ASCII code point regardless of
	// shift state; the shift modifier travels in the mask and this client
	// (matching spec.md's policy) does not need a second row for it since
	// the *event code* for 'A' is the same key as 'a'.
	{vk: "A", synergy: 0x61, hid: 0x04, event: EventCode(evdev.KEY_A)},
	{vk: "B", synergy: 0x62, hid: 0x05, event: EventCode(evdev.KEY_B)},
	{vk: "C", synergy: 0x63, hid: 0x06, event: EventCode(evdev.KEY_C)},
	{vk: "D", synergy: 0x64, hid: 0x07, event: EventCode(evdev.KEY_D)},
	{vk: "E", synergy: 0x65, hid: 0x08, event: EventCode(evdev.KEY_E)},
	{vk: "F", synergy: 0x66, hid: 0x09, event: EventCode(evdev.KEY_F)},
	{vk: "G", synergy: 0x67, hid: 0x0A, event: EventCode(evdev.KEY_G)},
	{vk: "H", synergy: 0x68, hid: 0x0B, event: EventCode(evdev.KEY_H)},
	{vk: "I", synergy: 0x69, hid: 0x0C, event: EventCode(evdev.KEY_I)},
	{vk: "J", synergy: 0x6A, hid: 0x0D, event: EventCode(evdev.KEY_J)},
	{vk: "K", synergy: 0x6B, hid: 0x0E, event: EventCode(evdev.KEY_K)},
	{vk: "L", synergy: 0x6C, hid: 0x0F, event: EventCode(evdev.KEY_L)},
	{vk: "M", synergy: 0x6D, hid: 0x10, event: EventCode(evdev.KEY_M)},
	{vk: "N", synergy: 0x6E, hid: 0x11, event: EventCode(evdev.KEY_N)},
	{vk: "O", synergy: 0x6F, hid: 0x12, event: EventCode(evdev.KEY_O)},
	{vk: "P", synergy: 0x70, hid: 0x13, event: EventCode(evdev.KEY_P)},
	{vk: "Q", synergy: 0x71, hid: 0x14, event: EventCode(evdev.KEY_Q)},
	{vk: "R", synergy: 0x72, hid: 0x15, event: EventCode(evdev.KEY_R)},
	{vk: "S", synergy: 0x73, hid: 0x16, event: EventCode(evdev.KEY_S)},
	{vk: "T", synergy: 0x74, hid: 0x17, event: EventCode(evdev.KEY_T)},
	{vk: "U", synergy: 0x75, hid: 0x18, event: EventCode(evdev.KEY_U)},
	{vk: "V", synergy: 0x76, hid: 0x19, event: EventCode(evdev.KEY_V)},
	{vk: "W", synergy: 0x77, hid: 0x1A, event: EventCode(evdev.KEY_W)},
	{vk: "X", synergy: 0x78, hid: 0x1B, event: EventCode(evdev.KEY_X)},
	{vk: "Y", synergy: 0x79, hid: 0x1C, event: EventCode(evdev.KEY_Y)},
	{vk: "Z", synergy: 0x7A, hid: 0x1D, event: EventCode(evdev.KEY_Z)},

	// Digit row
	{vk: "1", synergy: 0x31, hid: 0x1E, event: EventCode(evdev.KEY_1)},
	{vk: "2", synergy: 0x32, hid: 0x1F, event: EventCode(evdev.KEY_2)},
	{vk: "3", synergy: 0x33, hid: 0x20, event: EventCode(evdev.KEY_3)},
	{vk: "4", synergy: 0x34, hid: 0x21, event: EventCode(evdev.KEY_4)},
	{vk: "5", synergy: 0x35, hid: 0x22, event: EventCode(evdev.KEY_5)},
	{vk: "6", synergy: 0x36, hid: 0x23, event: EventCode(evdev.KEY_6)},
	{vk: "7", synergy: 0x37, hid: 0x24, event: EventCode(evdev.KEY_7)},
	{vk: "8", synergy: 0x38, hid: 0x25, event: EventCode(evdev.KEY_8)},
	{vk: "9", synergy: 0x39, hid: 0x26, event: EventCode(evdev.KEY_9)},
	{vk: "0", synergy: 0x30, hid: 0x27, event: EventCode(evdev.KEY_0)},

	// Punctuation
	{vk: "Minus", synergy: 0x2D, hid: 0x2D, event: EventCode(evdev.KEY_MINUS)},
	{vk: "Equal", synergy: 0x3D, hid: 0x2E, event: EventCode(evdev.KEY_EQUAL)},
	{vk: "LeftBrace", synergy: 0x5B, hid: 0x2F, event: EventCode(evdev.KEY_LEFTBRACE)},
	{vk: "RightBrace", synergy: 0x5D, hid: 0x30, event: EventCode(evdev.KEY_RIGHTBRACE)},
	{vk: "Backslash", synergy: 0x5C, hid: 0x31, event: EventCode(evdev.KEY_BACKSLASH)},
	{vk: "Semicolon", synergy: 0x3B, hid: 0x33, event: EventCode(evdev.KEY_SEMICOLON)},
	{vk: "Apostrophe", synergy: 0x27, hid: 0x34, event: EventCode(evdev.KEY_APOSTROPHE)},
	{vk: "Grave", synergy: 0x60, hid: 0x35, event: EventCode(evdev.KEY_GRAVE)},
	{vk: "Comma", synergy: 0x2C, hid: 0x36, event: EventCode(evdev.KEY_COMMA)},
	{vk: "Dot", synergy: 0x2E, hid: 0x37, event: EventCode(evdev.KEY_DOT)},
	{vk: "Slash", synergy: 0x2F, hid: 0x38, event: EventCode(evdev.KEY_SLASH)},
	{vk: "Space", synergy: 0x20, hid: 0x2C, event: EventCode(evdev.KEY_SPACE)},

	// Control keys (X11 keysym IDs)
	{vk: "BackSpace", synergy: 0xFF08, hid: 0x2A, event: EventCode(evdev.KEY_BACKSPACE)},
	{vk: "Tab", synergy: 0xFF09, hid: 0x2B, event: EventCode(evdev.KEY_TAB)},
	{vk: "Return", synergy: 0xFF0D, hid: 0x28, event: EventCode(evdev.KEY_ENTER)},
	{vk: "Escape", synergy: 0xFF1B, hid: 0x29, event: EventCode(evdev.KEY_ESC)},
	{vk: "Delete", synergy: 0xFFFF, hid: 0x4C, event: EventCode(evdev.KEY_DELETE)},
	{vk: "Home", synergy: 0xFF50, hid: 0x4A, event: EventCode(evdev.KEY_HOME)},
	{vk: "Left", synergy: 0xFF51, hid: 0x50, event: EventCode(evdev.KEY_LEFT)},
	{vk: "Up", synergy: 0xFF52, hid: 0x52, event: EventCode(evdev.KEY_UP)},
	{vk: "Right", synergy: 0xFF53, hid: 0x4F, event: EventCode(evdev.KEY_RIGHT)},
	{vk: "Down", synergy: 0xFF54, hid: 0x51, event: EventCode(evdev.KEY_DOWN)},
	{vk: "PageUp", synergy: 0xFF55, hid: 0x4B, event: EventCode(evdev.KEY_PAGEUP)},
	{vk: "PageDown", synergy: 0xFF56, hid: 0x4E, event: EventCode(evdev.KEY_PAGEDOWN)},
	{vk: "End", synergy: 0xFF57, hid: 0x4D, event: EventCode(evdev.KEY_END)},
	{vk: "Insert", synergy: 0xFF63, hid: 0x49, event: EventCode(evdev.KEY_INSERT)},
	{vk: "NumLock", synergy: 0xFF7F, hid: 0x53, event: EventCode(evdev.KEY_NUMLOCK)},
	{vk: "PrintScreen", synergy: 0xFF61, hid: 0x46, event: EventCode(evdev.KEY_SYSRQ)},
	{vk: "ScrollLock", synergy: 0xFF14, hid: 0x47, event: EventCode(evdev.KEY_SCROLLLOCK)},
	{vk: "Pause", synergy: 0xFF13, hid: 0x48, event: EventCode(evdev.KEY_PAUSE)},

	// Modifiers
	{vk: "ShiftLeft", synergy: 0xFFE1, hid: 0xE1, event: EventCode(evdev.KEY_LEFTSHIFT)},
	{vk: "ShiftRight", synergy: 0xFFE2, hid: 0xE5, event: EventCode(evdev.KEY_RIGHTSHIFT)},
	{vk: "ControlLeft", synergy: 0xFFE3, hid: 0xE0, event: EventCode(evdev.KEY_LEFTCTRL)},
	{vk: "ControlRight", synergy: 0xFFE4, hid: 0xE4, event: EventCode(evdev.KEY_RIGHTCTRL)},
	{vk: "CapsLock", synergy: 0xFFE5, hid: 0x39, event: EventCode(evdev.KEY_CAPSLOCK)},
	{vk: "MetaLeft", synergy: 0xFFE7, hid: 0xE3, event: EventCode(evdev.KEY_LEFTMETA)},
	{vk: "MetaRight", synergy: 0xFFE8, hid: 0xE7, event: EventCode(evdev.KEY_RIGHTMETA)},
	{vk: "AltLeft", synergy: 0xFFE9, hid: 0xE2, event: EventCode(evdev.KEY_LEFTALT)},
	{vk: "AltRight", synergy: 0xFFEA, hid: 0xE6, event: EventCode(evdev.KEY_RIGHTALT)},
	// Super_L/Super_R and AltGr (ISO_Level3_Shift) are alternate keysyms
	// different desktop environments use for the same physical keys as
	// Meta_L/Meta_R/Alt_R above; they reuse those VKs rather than
	// introducing a second identity for the same HID usage.
	{vk: "MetaLeft", synergy: 0xFFEB, hid: 0xE3, event: EventCode(evdev.KEY_LEFTMETA)},
	{vk: "MetaRight", synergy: 0xFFEC, hid: 0xE7, event: EventCode(evdev.KEY_RIGHTMETA)},
	{vk: "AltRight", synergy: 0xFE03, hid: 0xE6, event: EventCode(evdev.KEY_RIGHTALT)},

	// Function keys F1-F12 (X11 keysym 0xFFBE + n-1)
	{vk: "F1", synergy: 0xFFBE, hid: 0x3A, event: EventCode(evdev.KEY_F1)},
	{vk: "F2", synergy: 0xFFBF, hid: 0x3B, event: EventCode(evdev.KEY_F2)},
	{vk: "F3", synergy: 0xFFC0, hid: 0x3C, event: EventCode(evdev.KEY_F3)},
	{vk: "F4", synergy: 0xFFC1, hid: 0x3D, event: EventCode(evdev.KEY_F4)},
	{vk: "F5", synergy: 0xFFC2, hid: 0x3E, event: EventCode(evdev.KEY_F5)},
	{vk: "F6", synergy: 0xFFC3, hid: 0x3F, event: EventCode(evdev.KEY_F6)},
	{vk: "F7", synergy: 0xFFC4, hid: 0x40, event: EventCode(evdev.KEY_F7)},
	{vk: "F8", synergy: 0xFFC5, hid: 0x41, event: EventCode(evdev.KEY_F8)},
	{vk: "F9", synergy: 0xFFC6, hid: 0x42, event: EventCode(evdev.KEY_F9)},
	{vk: "F10", synergy: 0xFFC7, hid: 0x43, event: EventCode(evdev.KEY_F10)},
	{vk: "F11", synergy: 0xFFC8, hid: 0x44, event: EventCode(evdev.KEY_F11)},
	{vk: "F12", synergy: 0xFFC9, hid: 0x45, event: EventCode(evdev.KEY_F12)},

	// Numpad operator keys (not NumLock-ambiguous)
	{vk: "KPDivide", synergy: 0xFFAF, hid: 0x54, event: EventCode(evdev.KEY_KPSLASH)},
	{vk: "KPMultiply", synergy: 0xFFAA, hid: 0x55, event: EventCode(evdev.KEY_KPASTERISK)},
	{vk: "KPSubtract", synergy: 0xFFAD, hid: 0x56, event: EventCode(evdev.KEY_KPMINUS)},
	{vk: "KPAdd", synergy: 0xFFAB, hid: 0x57, event: EventCode(evdev.KEY_KPPLUS)},
	{vk: "KPEnter", synergy: 0xFF8D, hid: 0x58, event: EventCode(evdev.KEY_KPENTER)},

	// Numpad digit keys: mask-sensitive. With NumLock engaged the server
	// sends the KP_<digit> keysym (0xFFB0-0xFFB9); with it disengaged the
	// same physical key sends the navigation keysym instead. Both resolve
	// to the same VK/event code, matching how a real numpad behaves.
	{vk: "KP0", synergy: 0xFF9E, hid: 0x62, event: EventCode(evdev.KEY_KP0), altMask: MaskNumLock, synergyAlt: 0xFFB0},
	{vk: "KP1", synergy: 0xFF9C, hid: 0x59, event: EventCode(evdev.KEY_KP1), altMask: MaskNumLock, synergyAlt: 0xFFB1},
	{vk: "KP2", synergy: 0xFF99, hid: 0x5A, event: EventCode(evdev.KEY_KP2), altMask: MaskNumLock, synergyAlt: 0xFFB2},
	{vk: "KP3", synergy: 0xFF9B, hid: 0x5B, event: EventCode(evdev.KEY_KP3), altMask: MaskNumLock, synergyAlt: 0xFFB3},
	{vk: "KP4", synergy: 0xFF96, hid: 0x5C, event: EventCode(evdev.KEY_KP4), altMask: MaskNumLock, synergyAlt: 0xFFB4},
	{vk: "KP5", synergy: 0xFF9D, hid: 0x5D, event: EventCode(evdev.KEY_KP5), altMask: MaskNumLock, synergyAlt: 0xFFB5},
	{vk: "KP6", synergy: 0xFF98, hid: 0x5E, event: EventCode(evdev.KEY_KP6), altMask: MaskNumLock, synergyAlt: 0xFFB6},
	{vk: "KP7", synergy: 0xFF95, hid: 0x5F, event: EventCode(evdev.KEY_KP7), altMask: MaskNumLock, synergyAlt: 0xFFB7},
	{vk: "KP8", synergy: 0xFF97, hid: 0x60, event: EventCode(evdev.KEY_KP8), altMask: MaskNumLock, synergyAlt: 0xFFB8},
	{vk: "KP9", synergy: 0xFF9A, hid: 0x61, event: EventCode(evdev.KEY_KP9), altMask: MaskNumLock, synergyAlt: 0xFFB9},
	{vk: "KPDecimal", synergy: 0xFF9F, hid: 0x63, event: EventCode(evdev.KEY_KPDOT), altMask: MaskNumLock, synergyAlt: 0xFFAE},
}
