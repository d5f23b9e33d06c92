package controllink

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Framing bytes. Any of them occurring inside a frame is escaped as
// EscByte followed by the byte XOR EscXor.
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// Size limits.
const (
	MaxPayloadSize = 4096
	maxBodySize    = MaxPayloadSize + 16 // CBOR array, kind and byte-string headers
	maxFrameSize   = 2 + maxBodySize + 2 // length + body + CRC, unstuffed
)

// CRC-16-CCITT configuration
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// CalculateCRC computes the CRC-16-CCITT checksum for the given data.
func CalculateCRC(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Message is one decoded control-link message.
type Message struct {
	Kind    Kind
	Payload []byte
}

// wireBody is the CBOR body of a frame: [kind, payload].
type wireBody struct {
	_       struct{} `cbor:",toarray"`
	Kind    uint8
	Payload []byte
}

// EncodeFrame builds a complete wire frame for kind and payload.
func EncodeFrame(kind Kind, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, frameError{msg: fmt.Sprintf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)}
	}
	body, err := cbor.Marshal(wireBody{Kind: uint8(kind), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode frame body: %w", err)
	}

	data := make([]byte, 0, 2+len(body)+2)
	data = append(data, byte(len(body)>>8), byte(len(body)))
	data = append(data, body...)
	crc := CalculateCRC(data)
	data = append(data, byte(crc>>8), byte(crc))

	frame := make([]byte, 0, len(data)*2+2)
	frame = append(frame, StartByte)
	for _, b := range data {
		if b == StartByte || b == EndByte || b == EscByte {
			frame = append(frame, EscByte, b^EscXor)
		} else {
			frame = append(frame, b)
		}
	}
	return append(frame, EndByte), nil
}

// Decoder states
const (
	stateIdle = iota
	stateFrame
)

// Decoder reassembles frames from a byte stream.
type Decoder struct {
	state      int
	buf        []byte
	escapeNext bool
}

// NewDecoder creates a new frame decoder.
func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 0, maxFrameSize)}
}

// Reset drops any partial frame.
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.buf = d.buf[:0]
	d.escapeNext = false
}

// DecodeByte feeds one byte. It returns a message when b completes a valid
// frame, and an error when b completes or aborts an invalid one.
func (d *Decoder) DecodeByte(b byte) (*Message, error) {
	switch b {
	case StartByte:
		d.Reset()
		d.state = stateFrame
		return nil, nil
	case EndByte:
		if d.state != stateFrame {
			d.Reset()
			return nil, frameError{msg: "unexpected END byte"}
		}
		if d.escapeNext {
			d.Reset()
			return nil, frameError{msg: "incomplete escape sequence at end of frame"}
		}
		msg, err := parseFrame(d.buf)
		d.Reset()
		return msg, err
	case EscByte:
		if d.state == stateFrame {
			d.escapeNext = true
		}
		return nil, nil
	}

	if d.state != stateFrame {
		return nil, nil
	}
	if d.escapeNext {
		b ^= EscXor
		d.escapeNext = false
	}
	if len(d.buf) >= maxFrameSize {
		d.Reset()
		return nil, frameError{msg: "buffer overflow: frame exceeds max size"}
	}
	d.buf = append(d.buf, b)
	return nil, nil
}

// Decode feeds a chunk of bytes and returns every completed message. Decode
// errors are passed to onErr and do not stop the scan.
func (d *Decoder) Decode(p []byte, onErr func(error)) []*Message {
	var out []*Message
	for _, b := range p {
		msg, err := d.DecodeByte(b)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			continue
		}
		if msg != nil {
			out = append(out, msg)
		}
	}
	return out
}

func parseFrame(data []byte) (*Message, error) {
	if len(data) < 4 {
		return nil, frameError{msg: fmt.Sprintf("frame too short: %d bytes", len(data))}
	}
	n := int(data[0])<<8 | int(data[1])
	if n > maxBodySize || len(data) != 2+n+2 {
		return nil, frameError{msg: fmt.Sprintf("invalid length: header %d, frame %d", n, len(data))}
	}
	got := uint16(data[2+n])<<8 | uint16(data[3+n])
	if want := CalculateCRC(data[:2+n]); got != want {
		return nil, frameError{msg: fmt.Sprintf("CRC mismatch: expected 0x%04X, got 0x%04X", want, got)}
	}
	var body wireBody
	if err := cbor.Unmarshal(data[2:2+n], &body); err != nil {
		return nil, frameError{msg: "failed to decode CBOR body", err: err}
	}
	return &Message{Kind: Kind(body.Kind), Payload: body.Payload}, nil
}
