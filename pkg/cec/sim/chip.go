// Package sim simulates the CEC block of an HDMI transmitter at register
// level, including a bus with other devices attached.
package sim

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/robotalks/cec.go/pkg/cec/reg"
)

// DefaultNackRetries is the retry count reported for unacknowledged frames:
// the first attempt plus three hardware resends.
const DefaultNackRetries = 4

// Errors.
var (
	ErrRxFull      = errors.New("no free receive slot")
	ErrFrameLength = errors.New("invalid frame length")
)

const (
	rxSlots       = 3
	maxFrameBytes = 16
)

// Outcome is how the bus answers a transmitted frame.
type Outcome int

// Outcomes.
const (
	Ack Outcome = iota
	Nack
	ArbLost
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Nack:
		return "nack"
	case ArbLost:
		return "arblost"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Bus decides the outcome of a frame when no scripted outcome is pending.
type Bus func(frame []byte) Outcome

// Chip is a simulated CEC block. The embedded register file holds the
// register values and counts accesses.
type Chip struct {
	reg.File

	// Present has bit n set for every logical address answering on the bus.
	Present uint16
	// Bus overrides the default outcome computed from Present.
	Bus Bus
	// NackRetries is reported in the retry count field on Nack. Zero means
	// DefaultNackRetries.
	NackRetries uint8
	// Sent records every frame clocked out, resends included.
	Sent [][]byte

	script []Outcome
}

// New creates a Chip with the given logical addresses present on the bus.
func New(present ...uint8) *Chip {
	c := &Chip{}
	for _, addr := range present {
		c.Present |= 1 << (addr & 0x0f)
	}
	return c
}

// Script queues outcomes for the next transmitted frames.
func (c *Chip) Script(outcomes ...Outcome) *Chip {
	c.script = append(c.script, outcomes...)
	return c
}

// WriteReg implements reg.Registers with the side effects of the IC.
func (c *Chip) WriteReg(addr, val uint8) error {
	old := c.Peek(addr)
	if err := c.File.WriteReg(addr, val); err != nil {
		return err
	}
	switch addr {
	case reg.IntStatus:
		c.Poke(addr, old&^val)
	case reg.Ctrl:
		if reg.CtrlReset.Extract(val) != 0 {
			c.softReset()
		}
	case reg.RxReady:
		c.renumber(old &^ val)
	case reg.TxCtrl:
		if reg.TxEnable.Extract(val) != 0 {
			c.clockOut()
		}
	}
	return nil
}

// Inject places a frame into the first free receive slot, tagged after the
// frames already waiting, and raises the receive interrupt.
func (c *Chip) Inject(frame []byte) error {
	ready := c.Peek(reg.RxReady)
	for slot := 0; slot < rxSlots; slot++ {
		if ready&(1<<uint(slot)) == 0 {
			return c.Load(slot, uint8(bits.OnesCount8(ready&(1<<rxSlots-1)))+1, frame)
		}
	}
	return ErrRxFull
}

// Load places a frame into a receive slot with an explicit frame order tag.
func (c *Chip) Load(slot int, tag uint8, frame []byte) error {
	if len(frame) == 0 || len(frame) > maxFrameBytes {
		return ErrFrameLength
	}
	base := reg.RxSlotAddr(slot)
	for i, b := range frame {
		c.Poke(base+uint8(i), b)
	}
	c.PokeField(reg.RxLength(slot), uint8(len(frame)))
	c.PokeField(reg.RxTag(slot), tag)
	c.PokeField(reg.RxReadyFlag(slot), 1)
	c.Poke(reg.IntStatus, c.Peek(reg.IntStatus)|reg.IntRxFrame)
	return nil
}

// Enabled reports whether the CEC block is enabled.
func (c *Chip) Enabled() bool {
	return c.PeekField(reg.CtrlEnable) != 0
}

// LogicalAddr returns the address programmed in a slot.
func (c *Chip) LogicalAddr(slot int) (addr uint8, enabled bool) {
	v := c.Peek(reg.LogAddrReg(slot))
	return v & reg.LogAddrMask, v&reg.LogAddrEnable != 0
}

// LastSent returns the most recent frame clocked out.
func (c *Chip) LastSent() []byte {
	if len(c.Sent) == 0 {
		return nil
	}
	return c.Sent[len(c.Sent)-1]
}

func (c *Chip) softReset() {
	reads, writes := c.Reads, c.Writes
	c.File.Clear()
	c.Reads, c.Writes = reads, writes
	c.script = nil
}

// renumber closes the gaps in the frame order tags left by released slots.
func (c *Chip) renumber(released uint8) {
	ready := c.Peek(reg.RxReady)
	for slot := 0; slot < rxSlots; slot++ {
		if released&(1<<uint(slot)) == 0 {
			continue
		}
		gone := c.PeekField(reg.RxTag(slot))
		c.PokeField(reg.RxTag(slot), 0)
		for s := 0; s < rxSlots; s++ {
			if ready&(1<<uint(s)) == 0 {
				continue
			}
			if tag := c.PeekField(reg.RxTag(s)); tag > gone {
				c.PokeField(reg.RxTag(s), tag-1)
			}
		}
	}
}

func (c *Chip) clockOut() {
	n := int(c.PeekField(reg.TxLength))
	frame := make([]byte, n)
	for i := range frame {
		frame[i] = c.Peek(reg.TxBuf + uint8(i))
	}
	c.Sent = append(c.Sent, frame)

	var status uint8
	switch c.outcome(frame) {
	case Ack:
		status = reg.IntTxDone
		c.PokeField(reg.TxNackRetries, 0)
	case Nack:
		status = reg.IntTxNack
		retries := c.NackRetries
		if retries == 0 {
			retries = DefaultNackRetries
		}
		c.PokeField(reg.TxNackRetries, retries)
	default:
		status = reg.IntArbLost
	}
	c.PokeField(reg.TxEnable, 0)
	c.Poke(reg.IntStatus, c.Peek(reg.IntStatus)|status)
}

func (c *Chip) outcome(frame []byte) Outcome {
	if len(c.script) > 0 {
		o := c.script[0]
		c.script = c.script[1:]
		return o
	}
	if c.Bus != nil {
		return c.Bus(frame)
	}
	if len(frame) == 0 {
		return Nack
	}
	dst := frame[0] & 0x0f
	if len(frame) > 1 && dst == 0x0f {
		return Ack
	}
	if c.Present&(1<<dst) != 0 {
		return Ack
	}
	return Nack
}
