package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamParser_SingleFrame(t *testing.T) {
	frame, err := EncodeFrame(KeepAlive{})
	require.NoError(t, err)

	p := NewStreamParser()
	p.Feed(frame)

	msg, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KeepAlive{}, msg)

	_, ok, err = p.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStreamParser_MultipleFramesInOneChunk(t *testing.T) {
	f1, _ := EncodeFrame(QueryInfo{})
	f2, _ := EncodeFrame(KeyDown{ID: 0x61, Mask: 0, Button: 30})

	p := NewStreamParser()
	p.Feed(append(append([]byte{}, f1...), f2...))

	m1, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, QueryInfo{}, m1)

	m2, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KeyDown{ID: 0x61, Mask: 0, Button: 30}, m2)
}

// TestStreamParser_SplitAtEveryOffset is the invariant: splitting
// any valid byte sequence at any offset and feeding it across two or more
// calls must yield the same messages as feeding it whole.
func TestStreamParser_SplitAtEveryOffset(t *testing.T) {
	f1, _ := EncodeFrame(ScreenInfo{Width: 1920, Height: 1080})
	f2, _ := EncodeFrame(MouseMoveAbs{X: 100, Y: 200})
	f3, _ := EncodeFrame(KeyUp{ID: 0x61, Mask: 0, Button: 30})
	whole := append(append(append([]byte{}, f1...), f2...), f3...)

	for k := 0; k <= len(whole); k++ {
		p := NewStreamParser()
		p.Feed(whole[:k])
		p.Feed(whole[k:])

		var got []Message
		for {
			msg, ok, err := p.Next()
			require.NoError(t, err, "split at offset %d", k)
			if !ok {
				break
			}
			got = append(got, msg)
		}

		require.Len(t, got, 3, "split at offset %d", k)
		assert.Equal(t, ScreenInfo{Width: 1920, Height: 1080}, got[0])
		assert.Equal(t, MouseMoveAbs{X: 100, Y: 200}, got[1])
		assert.Equal(t, KeyUp{ID: 0x61, Mask: 0, Button: 30}, got[2])
	}
}

func TestStreamParser_ByteAtATime(t *testing.T) {
	frame, _ := EncodeFrame(CursorEnter{X: 1, Y: 2, Seq: 3, Mask: 0})

	p := NewStreamParser()
	var got Message
	for i := 0; i < len(frame); i++ {
		p.Feed(frame[i : i+1])
		msg, ok, err := p.Next()
		require.NoError(t, err)
		if ok {
			got = msg
		}
	}
	assert.Equal(t, CursorEnter{X: 1, Y: 2, Seq: 3, Mask: 0}, got)
}

func TestStreamParser_ZeroLengthFrameIsFatal(t *testing.T) {
	p := NewStreamParser()
	p.Feed([]byte{0x00, 0x00, 0x00, 0x00})

	_, _, err := p.Next()
	require.ErrorIs(t, err, ErrFrameEmpty)
}

func TestStreamParser_OversizeFrameIsFatal(t *testing.T) {
	p := NewStreamParser()
	oversized := make([]byte, 4)
	oversized[0] = byte(MaxMessageSize >> 24)
	oversized[1] = byte(MaxMessageSize >> 16)
	oversized[2] = byte(MaxMessageSize >> 8)
	oversized[3] = byte(MaxMessageSize)
	oversized[3]++ // one past the limit
	p.Feed(oversized)

	_, _, err := p.Next()
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestStreamParser_MalformedPayloadDoesNotCorruptStream(t *testing.T) {
	bad := append([]byte{0x00, 0x00, 0x00, 0x06}, []byte("DKDN")...)
	bad = append(bad, 0x00, 0x61) // DKDN needs 6 bytes, only 2 given

	good, _ := EncodeFrame(KeepAlive{})

	p := NewStreamParser()
	p.Feed(bad)
	p.Feed(good)

	_, ok, err := p.Next()
	require.True(t, ok)
	require.ErrorIs(t, err, ErrMalformedPayload)

	msg, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KeepAlive{}, msg)
}
