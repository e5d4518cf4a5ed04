package protocol

import (
	"encoding/binary"
	"fmt"
)

// MaxMessageSize is the largest frame length (covering opcode + payload)
// this client will accept before treating the stream as corrupt. Synergy
// messages are small fixed records, not arbitrary batched payloads, so this
// ceiling is generous headroom rather than a tuned limit.
const MaxMessageSize = 128 * 1024

// minPayloadLen is the shortest legal payload for each registered opcode;
// an encoder must never emit less.
var minPayloadLen = map[Opcode]int{
	OpQueryInfo:     0,
	OpScreenInfo:    14,
	OpInfoAck:       0,
	OpKeepAlive:     0,
	OpNoOp:          0,
	OpCursorEnter:   10,
	OpCursorLeave:   0,
	OpResetOptions:  0,
	OpMouseMoveAbs:  4,
	OpMouseMoveRel:  4,
	OpMouseDown:     1,
	OpMouseUp:       1,
	OpMouseWheel:    4,
	OpKeyDown:       6,
	OpKeyUp:         6,
	OpKeyRepeat:     8,
	OpSetOptions:    0,
	OpClipboardData: 0,
	OpClipboardAck:  0,
	OpErrBad:        0,
	OpErrBusy:       0,
	OpErrUnknown:    0,
}

// EncodeFrame serializes msg into a complete wire frame: length prefix,
// opcode (or the 7-byte "Synergy" greeting magic), and payload.
func EncodeFrame(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case Hello:
		return encodeHello(m.Major, m.Minor)
	case HelloBack:
		return encodeHelloBack(m.Major, m.Minor, m.Name)
	}

	op := msg.Opcode()
	payload, err := encodePayload(msg)
	if err != nil {
		return nil, err
	}

	if min, ok := minPayloadLen[op]; ok && len(payload) < min {
		return nil, fmt.Errorf("protocol: encoded %s payload too short (%d < %d): %w", op, len(payload), min, ErrShortPayload)
	}

	frame := make([]byte, 4+4+len(payload))
	binary.BigEndian.PutUint32(frame[0:4], uint32(4+len(payload)))
	copy(frame[4:8], op[:])
	copy(frame[8:], payload)
	return frame, nil
}

func encodeHello(major, minor uint16) ([]byte, error) {
	body := make([]byte, len(helloMagic)+4)
	copy(body, helloMagic)
	binary.BigEndian.PutUint16(body[7:9], major)
	binary.BigEndian.PutUint16(body[9:11], minor)

	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(body)))
	copy(frame[4:], body)
	return frame, nil
}

func encodeHelloBack(major, minor uint16, name string) ([]byte, error) {
	if len(name) > 0xFFFF {
		return nil, fmt.Errorf("protocol: client name too long: %w", ErrCoordOverflow)
	}
	body := make([]byte, len(helloMagic)+4+4+len(name))
	copy(body, helloMagic)
	binary.BigEndian.PutUint16(body[7:9], major)
	binary.BigEndian.PutUint16(body[9:11], minor)
	binary.BigEndian.PutUint32(body[11:15], uint32(len(name)))
	copy(body[15:], name)

	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(body)))
	copy(frame[4:], body)
	return frame, nil
}

// encodePayload returns the opcode-specific payload bytes (without the
// length prefix or opcode) for every registry message type.
func encodePayload(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case QueryInfo, InfoAck, KeepAlive, NoOp, CursorLeave, ResetOptions:
		return nil, nil
	case ScreenInfo:
		b := make([]byte, 14)
		putI16(b[0:2], m.X)
		putI16(b[2:4], m.Y)
		binary.BigEndian.PutUint16(b[4:6], m.Width)
		binary.BigEndian.PutUint16(b[6:8], m.Height)
		binary.BigEndian.PutUint16(b[8:10], m.WarpSize)
		putI16(b[10:12], m.MouseX)
		putI16(b[12:14], m.MouseY)
		return b, nil
	case CursorEnter:
		b := make([]byte, 10)
		putI16(b[0:2], m.X)
		putI16(b[2:4], m.Y)
		binary.BigEndian.PutUint32(b[4:8], m.Seq)
		binary.BigEndian.PutUint16(b[8:10], m.Mask)
		return b, nil
	case MouseMoveAbs:
		b := make([]byte, 4)
		putI16(b[0:2], m.X)
		putI16(b[2:4], m.Y)
		return b, nil
	case MouseMoveRel:
		b := make([]byte, 4)
		putI16(b[0:2], m.DX)
		putI16(b[2:4], m.DY)
		return b, nil
	case MouseDown:
		return []byte{byte(m.Button)}, nil
	case MouseUp:
		return []byte{byte(m.Button)}, nil
	case MouseWheel:
		b := make([]byte, 4)
		putI16(b[0:2], m.X)
		putI16(b[2:4], m.Y)
		return b, nil
	case KeyDown:
		b := make([]byte, 6)
		binary.BigEndian.PutUint16(b[0:2], m.ID)
		binary.BigEndian.PutUint16(b[2:4], m.Mask)
		binary.BigEndian.PutUint16(b[4:6], m.Button)
		return b, nil
	case KeyUp:
		b := make([]byte, 6)
		binary.BigEndian.PutUint16(b[0:2], m.ID)
		binary.BigEndian.PutUint16(b[2:4], m.Mask)
		binary.BigEndian.PutUint16(b[4:6], m.Button)
		return b, nil
	case KeyRepeat:
		b := make([]byte, 8)
		binary.BigEndian.PutUint16(b[0:2], m.ID)
		binary.BigEndian.PutUint16(b[2:4], m.Mask)
		binary.BigEndian.PutUint16(b[4:6], m.Count)
		binary.BigEndian.PutUint16(b[6:8], m.Button)
		return b, nil
	case SetOptions:
		b := make([]byte, 4*len(m.Options))
		for i, o := range m.Options {
			binary.BigEndian.PutUint32(b[i*4:i*4+4], o)
		}
		return b, nil
	case ClipboardMessage:
		return append([]byte(nil), m.Payload...), nil
	case ProtocolErrorMessage:
		return nil, nil
	case OpaqueMessage:
		return append([]byte(nil), m.Payload...), nil
	default:
		return nil, fmt.Errorf("protocol: no encoder registered for %T", msg)
	}
}

// DecodeFrame decodes the bytes following the length prefix: either the
// "Synergy" greeting or a 4-byte opcode plus payload.
func DecodeFrame(body []byte) (Message, error) {
	if len(body) >= len(helloMagic) && string(body[:len(helloMagic)]) == helloMagic {
		return decodeHello(body)
	}
	if len(body) < 4 {
		return nil, fmt.Errorf("protocol: frame shorter than an opcode: %w", ErrShortPayload)
	}

	var o Opcode
	copy(o[:], body[:4])
	payload := body[4:]

	if min, ok := minPayloadLen[o]; ok && len(payload) < min {
		return nil, fmt.Errorf("protocol: %s payload too short (%d < %d): %w", o, len(payload), min, ErrMalformedPayload)
	}

	switch o {
	case OpQueryInfo:
		return QueryInfo{}, nil
	case OpScreenInfo:
		return ScreenInfo{
			X:        getI16(payload[0:2]),
			Y:        getI16(payload[2:4]),
			Width:    binary.BigEndian.Uint16(payload[4:6]),
			Height:   binary.BigEndian.Uint16(payload[6:8]),
			WarpSize: binary.BigEndian.Uint16(payload[8:10]),
			MouseX:   getI16(payload[10:12]),
			MouseY:   getI16(payload[12:14]),
		}, nil
	case OpInfoAck:
		return InfoAck{}, nil
	case OpKeepAlive:
		return KeepAlive{}, nil
	case OpNoOp:
		return NoOp{}, nil
	case OpCursorEnter:
		return CursorEnter{
			X:    getI16(payload[0:2]),
			Y:    getI16(payload[2:4]),
			Seq:  binary.BigEndian.Uint32(payload[4:8]),
			Mask: binary.BigEndian.Uint16(payload[8:10]),
		}, nil
	case OpCursorLeave:
		return CursorLeave{}, nil
	case OpResetOptions:
		return ResetOptions{}, nil
	case OpMouseMoveAbs:
		return MouseMoveAbs{X: getI16(payload[0:2]), Y: getI16(payload[2:4])}, nil
	case OpMouseMoveRel:
		return MouseMoveRel{DX: getI16(payload[0:2]), DY: getI16(payload[2:4])}, nil
	case OpMouseDown:
		return MouseDown{Button: int8(payload[0])}, nil
	case OpMouseUp:
		return MouseUp{Button: int8(payload[0])}, nil
	case OpMouseWheel:
		return MouseWheel{X: getI16(payload[0:2]), Y: getI16(payload[2:4])}, nil
	case OpKeyDown:
		return KeyDown{
			ID:     binary.BigEndian.Uint16(payload[0:2]),
			Mask:   binary.BigEndian.Uint16(payload[2:4]),
			Button: binary.BigEndian.Uint16(payload[4:6]),
		}, nil
	case OpKeyUp:
		return KeyUp{
			ID:     binary.BigEndian.Uint16(payload[0:2]),
			Mask:   binary.BigEndian.Uint16(payload[2:4]),
			Button: binary.BigEndian.Uint16(payload[4:6]),
		}, nil
	case OpKeyRepeat:
		return KeyRepeat{
			ID:     binary.BigEndian.Uint16(payload[0:2]),
			Mask:   binary.BigEndian.Uint16(payload[2:4]),
			Count:  binary.BigEndian.Uint16(payload[4:6]),
			Button: binary.BigEndian.Uint16(payload[6:8]),
		}, nil
	case OpSetOptions:
		if len(payload)%4 != 0 {
			return nil, fmt.Errorf("protocol: DSOP payload not a multiple of 4: %w", ErrMalformedPayload)
		}
		var opts []uint32
		if len(payload) > 0 {
			opts = make([]uint32, len(payload)/4)
		}
		for i := range opts {
			opts[i] = binary.BigEndian.Uint32(payload[i*4 : i*4+4])
		}
		return SetOptions{Options: opts}, nil
	case OpClipboardData, OpClipboardAck:
		return ClipboardMessage{Op: o, Payload: append([]byte(nil), payload...)}, nil
	case OpErrBad, OpErrBusy, OpErrUnknown:
		return ProtocolErrorMessage{Op: o}, nil
	default:
		return OpaqueMessage{Op: o, Payload: append([]byte(nil), payload...)}, nil
	}
}

func decodeHello(body []byte) (Message, error) {
	if len(body) < len(helloMagic)+4 {
		return nil, fmt.Errorf("protocol: greeting too short: %w", ErrShortPayload)
	}
	major := binary.BigEndian.Uint16(body[7:9])
	minor := binary.BigEndian.Uint16(body[9:11])
	rest := body[11:]
	if len(rest) == 0 {
		return Hello{Major: major, Minor: minor}, nil
	}
	if len(rest) < 4 {
		return nil, fmt.Errorf("protocol: HelloBack name length truncated: %w", ErrShortPayload)
	}
	nameLen := binary.BigEndian.Uint32(rest[0:4])
	if uint32(len(rest)-4) != nameLen {
		return nil, fmt.Errorf("protocol: HelloBack name length mismatch: %w", ErrMalformedPayload)
	}
	return HelloBack{Major: major, Minor: minor, Name: string(rest[4:])}, nil
}

func putI16(b []byte, v int16) {
	binary.BigEndian.PutUint16(b, uint16(v))
}

func getI16(b []byte) int16 {
	return int16(binary.BigEndian.Uint16(b))
}
