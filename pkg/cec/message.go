package cec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Frame limits. The opcode counts as the first operand.
const (
	MaxMessageSize = 16
	MaxOperands    = MaxMessageSize - 1
	MaxOSDName     = MaxOperands - 1
)

// Well-known logical addresses.
const (
	AddrTV           uint8 = 0
	AddrRecording1   uint8 = 1
	AddrRecording2   uint8 = 2
	AddrTuner1       uint8 = 3
	AddrPlayback1    uint8 = 4
	AddrAudioSystem  uint8 = 5
	AddrTuner2       uint8 = 6
	AddrTuner3       uint8 = 7
	AddrPlayback2    uint8 = 8
	AddrRecording3   uint8 = 9
	AddrTuner4       uint8 = 10
	AddrPlayback3    uint8 = 11
	AddrSpecific     uint8 = 14
	AddrUnregistered uint8 = 15
	AddrBroadcast    uint8 = 15
)

// Message is a raw CEC frame: the header byte (initiator in the high
// nibble, destination in the low nibble) followed by the opcode and
// operands.
type Message []byte

// NewMessage builds a frame from addresses, opcode and operands.
func NewMessage(src, dst, opcode uint8, operands ...byte) Message {
	m := make(Message, 2, 2+len(operands))
	m[0], m[1] = header(src, dst), opcode
	return append(m, operands...)
}

// PollMessage builds the header-only frame used to probe a logical address.
func PollMessage(addr uint8) Message {
	return Message{header(addr, addr)}
}

// ParseMessage parses frames written as hex bytes, optionally separated by
// ':' or spaces, e.g. "4f:84:10:00:04".
func ParseMessage(s string) (Message, error) {
	s = strings.Map(func(r rune) rune {
		if r == ':' || r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid frame %q: %v", s, err)
	}
	m := Message(b)
	if err = m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func header(src, dst uint8) byte {
	return (src&0x0f)<<4 | dst&0x0f
}

// Validate checks the frame length.
func (m Message) Validate() error {
	if len(m) == 0 || len(m) > MaxMessageSize {
		return ErrInvalidLength
	}
	return nil
}

// Source is the initiator logical address.
func (m Message) Source() uint8 {
	return m[0] >> 4
}

// Destination is the follower logical address.
func (m Message) Destination() uint8 {
	return m[0] & 0x0f
}

// IsPoll reports whether the frame is a header-only polling frame.
func (m Message) IsPoll() bool {
	return len(m) == 1
}

// IsBroadcast reports whether the frame is addressed to all devices.
func (m Message) IsBroadcast() bool {
	return m.Destination() == AddrBroadcast
}

// Opcode returns the opcode, ok is false for polling frames.
func (m Message) Opcode() (op uint8, ok bool) {
	if len(m) < 2 {
		return 0, false
	}
	return m[1], true
}

// Operands returns the bytes following the opcode.
func (m Message) Operands() []byte {
	if len(m) < 2 {
		return nil
	}
	return m[2:]
}

// Clone copies the frame.
func (m Message) Clone() Message {
	return append(Message(nil), m...)
}

// String formats the frame in the conventional colon separated form.
func (m Message) String() string {
	var sb strings.Builder
	for i, b := range m {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}
