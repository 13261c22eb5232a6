// Package wire implements the minimum of the WebSocket wire format the
// relay needs: the upgrade handshake, inbound frame decoding (masked
// payloads, 16/64-bit extended lengths, close/ping control opcodes) and
// outbound text/pong encoding. Server-to-client frames are never masked.
package wire

import "encoding/binary"

// Frame opcodes. Anything other than Close and Ping is treated as Text
// for payload extraction; the relay is deliberately permissive about
// opcodes it does not care about.
const (
	OpcodeText  byte = 0x1
	OpcodeClose byte = 0x8
	OpcodePing  byte = 0x9
	OpcodePong  byte = 0xA
)

const finBit = 0x80

// maxFramePayload is a sanity ceiling on the declared payload length of
// an inbound frame. The relay only ever carries small JSON control
// messages; a frame declaring more than this is treated as garbage and
// discarded rather than buffered indefinitely.
const maxFramePayload = 1 << 20

// DecodeStatus is the outcome of a decode attempt. Decoding never
// fails with an error: a malformed frame is discarded and the
// connection stays open.
type DecodeStatus int

const (
	// Ok means a complete frame was decoded.
	Ok DecodeStatus = iota
	// Incomplete means the buffer does not yet hold a full frame; the
	// caller should read more bytes and retry.
	Incomplete
	// Discard means the buffered bytes are unusable (oversized or
	// nonsensical header) and should be dropped wholesale.
	Discard
)

// Frame is one decoded unit of the wire protocol.
type Frame struct {
	Opcode  byte
	Payload []byte
}

// Decode parses the first frame in buf. It returns the frame, the
// number of bytes consumed, and a status. The payload is a fresh copy:
// callers may retain it after the buffer is reused.
func Decode(buf []byte) (Frame, int, DecodeStatus) {
	if len(buf) < 2 {
		return Frame{}, 0, Incomplete
	}

	opcode := buf[0] & 0x0F
	masked := buf[1]&0x80 != 0
	length := uint64(buf[1] & 0x7F)
	offset := 2

	switch length {
	case 126:
		if len(buf) < offset+2 {
			return Frame{}, 0, Incomplete
		}
		length = uint64(binary.BigEndian.Uint16(buf[offset:]))
		offset += 2
	case 127:
		if len(buf) < offset+8 {
			return Frame{}, 0, Incomplete
		}
		length = binary.BigEndian.Uint64(buf[offset:])
		offset += 8
	}

	if length > maxFramePayload {
		return Frame{}, len(buf), Discard
	}

	var mask []byte
	if masked {
		if len(buf) < offset+4 {
			return Frame{}, 0, Incomplete
		}
		mask = buf[offset : offset+4]
		offset += 4
	}

	end := offset + int(length)
	if len(buf) < end {
		return Frame{}, 0, Incomplete
	}

	payload := make([]byte, length)
	copy(payload, buf[offset:end])
	if masked {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return Frame{Opcode: opcode, Payload: payload}, end, Ok
}

// EncodeText builds an unmasked FIN text frame around payload, using
// the 126/127 extended-length scheme for payloads of 126 bytes or more.
func EncodeText(payload []byte) []byte {
	return encode(OpcodeText, payload)
}

// EncodePong returns the 2-byte empty pong control frame used to answer
// a ping.
func EncodePong() []byte {
	return []byte{finBit | OpcodePong, 0}
}

func encode(opcode byte, payload []byte) []byte {
	n := len(payload)

	var header []byte
	switch {
	case n < 126:
		header = []byte{finBit | opcode, byte(n)}
	case n <= 0xFFFF:
		header = []byte{finBit | opcode, 126, 0, 0}
		binary.BigEndian.PutUint16(header[2:], uint16(n))
	default:
		header = []byte{finBit | opcode, 127, 0, 0, 0, 0, 0, 0, 0, 0}
		binary.BigEndian.PutUint64(header[2:], uint64(n))
	}

	frame := make([]byte, 0, len(header)+n)
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame
}
