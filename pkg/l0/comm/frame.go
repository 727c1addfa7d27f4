package comm

import (
	"io"
	"time"
)

// Seq is the sequence number of a frame, valid from 1 to 0xef. Higher
// values are reserved for the handshake.
type Seq byte

// NewSeq returns an arbitrary initial sequence number.
func NewSeq() Seq {
	return Seq(byte(time.Now().UnixNano())).Next()
}

// Next returns the sequence number after s.
func (s Seq) Next() Seq {
	if n := s + 1; n.Valid() {
		return n
	}
	return 1
}

// Valid reports whether s can number a frame.
func (s Seq) Valid() bool {
	return s > 0 && s < 0xf0
}

// Frame code bits.
const (
	CodeEvent byte = 0x80
	CodeError byte = 0x01

	codeMask byte = 0x8f
	sizeMask byte = 0x70
	sizeExt  byte = 7
)

// MaxFrameData is the largest payload of a frame.
const MaxFrameData = 0x7f

// Frame is a unit of transfer on the link. The code byte carries the
// payload size in bits 4-6 when it is below 7, otherwise a size byte
// follows.
type Frame struct {
	Seq  Seq
	Code byte
	Data []byte
}

// IsEvent reports whether the frame is unsolicited.
func (f *Frame) IsEvent() bool {
	return f.Code&CodeEvent != 0
}

// Encode returns the wire form of the frame.
func (f *Frame) Encode() []byte {
	size := byte(len(f.Data))
	b := make([]byte, 2, len(f.Data)+3)
	b[0], b[1] = byte(f.Seq), f.Code&codeMask
	if size < sizeExt {
		b[1] |= size << 4
	} else {
		b[1] |= sizeMask
		b = append(b, size)
	}
	return append(b, f.Data...)
}

// WriteTo implements io.WriterTo.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Encode())
	return int64(n), err
}
