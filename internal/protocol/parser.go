package protocol

import (
	"encoding/binary"
	"fmt"
)

// StreamParser accumulates bytes read off the wire in arbitrary chunks and
// yields complete frames. It is deliberately ignorant of TCP: Feed can be
// called with any split of a byte sequence, including one byte at a time,
// and the parsed result must be identical.
//
// The buffer is explicit rather than hidden behind a bufio.Reader so the
// session layer can Feed it straight from a net.Conn.Read without owning
// any framing logic itself.
type StreamParser struct {
	buf []byte
}

// NewStreamParser returns an empty parser ready to Feed.
func NewStreamParser() *StreamParser {
	return &StreamParser{}
}

// Feed appends newly read bytes to the internal buffer.
func (p *StreamParser) Feed(chunk []byte) {
	p.buf = append(p.buf, chunk...)
}

// Next attempts to pull one complete frame out of the buffer. It returns
// (msg, true, nil) when a frame was decoded, (nil, false, nil) when more
// bytes are needed, and a non-nil error when the stream itself is corrupt
// and the caller must close the session (ErrFrameEmpty, ErrFrameTooLarge).
//
// A malformed payload for a known opcode does not corrupt the stream: the
// frame bytes are consumed either way, so a (nil, true, ErrMalformedPayload)
// result still leaves the buffer positioned at the start of the next frame.
func (p *StreamParser) Next() (Message, bool, error) {
	if len(p.buf) < 4 {
		return nil, false, nil
	}

	length := binary.BigEndian.Uint32(p.buf[0:4])
	if length == 0 {
		return nil, false, fmt.Errorf("protocol: zero-length frame: %w", ErrFrameEmpty)
	}
	if length > MaxMessageSize {
		return nil, false, fmt.Errorf("protocol: frame of %d bytes exceeds %d: %w", length, MaxMessageSize, ErrFrameTooLarge)
	}

	total := 4 + int(length)
	if len(p.buf) < total {
		return nil, false, nil
	}

	body := p.buf[4:total]
	p.buf = p.buf[total:]

	msg, err := DecodeFrame(body)
	if err != nil {
		return nil, true, err
	}
	return msg, true, nil
}

// Pending reports how many bytes are buffered but not yet consumed into a
// frame, for diagnostics/tests only.
func (p *StreamParser) Pending() int {
	return len(p.buf)
}
