package wire_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dana280/heartbeat-app/internal/wire"
)

// maskFrame builds a masked client-to-server text frame the way a
// browser would, including extended lengths where needed.
func maskFrame(opcode byte, mask [4]byte, payload []byte) []byte {
	var frame []byte
	n := len(payload)
	switch {
	case n < 126:
		frame = []byte{0x80 | opcode, 0x80 | byte(n)}
	case n <= 0xFFFF:
		frame = []byte{0x80 | opcode, 0x80 | 126, 0, 0}
		binary.BigEndian.PutUint16(frame[2:], uint16(n))
	default:
		frame = []byte{0x80 | opcode, 0x80 | 127, 0, 0, 0, 0, 0, 0, 0, 0}
		binary.BigEndian.PutUint64(frame[2:], uint64(n))
	}
	frame = append(frame, mask[:]...)
	for i, b := range payload {
		frame = append(frame, b^mask[i%4])
	}
	return frame
}

func TestDecode_UnmaskedRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{}`),
		[]byte(`{"type":"register","userId":"alice"}`),
		bytes.Repeat([]byte("x"), 125),
	}

	for _, payload := range payloads {
		frame, consumed, status := wire.Decode(wire.EncodeText(payload))

		require.Equal(t, wire.Ok, status)
		assert.Equal(t, wire.OpcodeText, frame.Opcode)
		assert.Equal(t, payload, frame.Payload)
		assert.Equal(t, 2+len(payload), consumed)
	}
}

func TestDecode_MaskedPayloadRecovered(t *testing.T) {
	payload := []byte(`{"type":"heartbeat","to":"bob"}`)
	mask := [4]byte{0x12, 0x34, 0x56, 0x78}

	frame, consumed, status := wire.Decode(maskFrame(wire.OpcodeText, mask, payload))

	require.Equal(t, wire.Ok, status)
	assert.Equal(t, payload, frame.Payload)
	assert.Equal(t, 2+4+len(payload), consumed)
}

func TestDecode_ExtendedLengths(t *testing.T) {
	t.Run("16-bit extended length", func(t *testing.T) {
		payload := bytes.Repeat([]byte("a"), 300)
		mask := [4]byte{1, 2, 3, 4}

		frame, consumed, status := wire.Decode(maskFrame(wire.OpcodeText, mask, payload))

		require.Equal(t, wire.Ok, status)
		assert.Equal(t, payload, frame.Payload)
		assert.Equal(t, 2+2+4+len(payload), consumed)
	})

	t.Run("64-bit extended length", func(t *testing.T) {
		payload := bytes.Repeat([]byte("b"), 70_000)
		mask := [4]byte{9, 8, 7, 6}

		frame, consumed, status := wire.Decode(maskFrame(wire.OpcodeText, mask, payload))

		require.Equal(t, wire.Ok, status)
		assert.Equal(t, payload, frame.Payload)
		assert.Equal(t, 2+8+4+len(payload), consumed)
	})
}

func TestDecode_IncompleteBuffers(t *testing.T) {
	full := maskFrame(wire.OpcodeText, [4]byte{1, 2, 3, 4}, []byte(`{"type":"register"}`))

	// Every proper prefix of a valid frame must report Incomplete, not
	// an error or a bogus frame.
	for cut := 0; cut < len(full); cut++ {
		_, consumed, status := wire.Decode(full[:cut])
		require.Equal(t, wire.Incomplete, status, "prefix of %d bytes", cut)
		assert.Zero(t, consumed)
	}
}

func TestDecode_OversizedFrameDiscarded(t *testing.T) {
	// Header declares a 64-bit length far beyond the sanity ceiling.
	buf := []byte{0x81, 127, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

	_, consumed, status := wire.Decode(buf)

	require.Equal(t, wire.Discard, status)
	assert.Equal(t, len(buf), consumed)
}

func TestDecode_ControlFrames(t *testing.T) {
	t.Run("close", func(t *testing.T) {
		frame, _, status := wire.Decode([]byte{0x88, 0x00})
		require.Equal(t, wire.Ok, status)
		assert.Equal(t, wire.OpcodeClose, frame.Opcode)
		assert.Empty(t, frame.Payload)
	})

	t.Run("ping", func(t *testing.T) {
		frame, _, status := wire.Decode([]byte{0x89, 0x00})
		require.Equal(t, wire.Ok, status)
		assert.Equal(t, wire.OpcodePing, frame.Opcode)
	})

	t.Run("unknown opcode still yields payload", func(t *testing.T) {
		// Binary frame: the codec does not care, payload extraction is
		// permissive.
		frame, _, status := wire.Decode(maskFrame(0x2, [4]byte{5, 5, 5, 5}, []byte("blob")))
		require.Equal(t, wire.Ok, status)
		assert.Equal(t, byte(0x2), frame.Opcode)
		assert.Equal(t, []byte("blob"), frame.Payload)
	})
}

func TestEncodeText_ExtendedLengths(t *testing.T) {
	t.Run("126-byte payload uses the 16-bit form", func(t *testing.T) {
		payload := bytes.Repeat([]byte("y"), 126)

		encoded := wire.EncodeText(payload)

		require.Equal(t, byte(126), encoded[1]&0x7F)
		assert.Equal(t, uint16(126), binary.BigEndian.Uint16(encoded[2:4]))

		frame, _, status := wire.Decode(encoded)
		require.Equal(t, wire.Ok, status)
		assert.Equal(t, payload, frame.Payload)
	})

	t.Run("large payload uses the 64-bit form", func(t *testing.T) {
		payload := bytes.Repeat([]byte("z"), 0x10000)

		encoded := wire.EncodeText(payload)

		require.Equal(t, byte(127), encoded[1]&0x7F)
		frame, _, status := wire.Decode(encoded)
		require.Equal(t, wire.Ok, status)
		assert.Equal(t, payload, frame.Payload)
	})
}

func TestEncodeText_NeverMasked(t *testing.T) {
	encoded := wire.EncodeText([]byte("hi"))
	assert.Zero(t, encoded[1]&0x80, "server frames must not set the mask bit")
}

func TestEncodePong(t *testing.T) {
	assert.Equal(t, []byte{0x8A, 0x00}, wire.EncodePong())
}

func TestDecode_TwoFramesInOneBuffer(t *testing.T) {
	first := wire.EncodeText([]byte("one"))
	second := wire.EncodeText([]byte("two"))
	buf := append(append([]byte{}, first...), second...)

	frame, consumed, status := wire.Decode(buf)
	require.Equal(t, wire.Ok, status)
	assert.Equal(t, []byte("one"), frame.Payload)
	require.Equal(t, len(first), consumed)

	frame, consumed, status = wire.Decode(buf[consumed:])
	require.Equal(t, wire.Ok, status)
	assert.Equal(t, []byte("two"), frame.Payload)
	assert.Equal(t, len(second), consumed)
}
