package ipc

import (
	"encoding/binary"
	"io"
)

const (
	// HeaderSize is the encoded size of Header.
	HeaderSize = 4
	// MaxPayloadLen is the largest length a header can carry.
	MaxPayloadLen = 0xffff
)

// Header prefixes every frame.
type Header struct {
	// Len is the payload length, excluding the header.
	Len      uint16
	Channel  uint8
	SourceID uint8
}

// DecodeHeader decodes the first HeaderSize bytes of p.
func DecodeHeader(p []byte) Header {
	return Header{
		Len:      binary.LittleEndian.Uint16(p[0:2]),
		Channel:  p[2],
		SourceID: p[3],
	}
}

// Encode writes the header into the first HeaderSize bytes of p.
func (h Header) Encode(p []byte) {
	binary.LittleEndian.PutUint16(p[0:2], h.Len)
	p[2], p[3] = h.Channel, h.SourceID
}

// Bytes returns encoded bytes.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.Encode(b)
	return b
}

// WriteFrame writes h followed by payload, with h.Len set to the payload
// length.
func WriteFrame(w io.Writer, h Header, payload []byte) (n int, err error) {
	if len(payload) > MaxPayloadLen {
		return 0, ErrFrameTooLarge
	}
	h.Len = uint16(len(payload))
	if n, err = w.Write(h.Bytes()); err != nil {
		return
	}
	if len(payload) > 0 {
		var n1 int
		n1, err = w.Write(payload)
		n += n1
	}
	return
}
