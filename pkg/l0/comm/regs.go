package comm

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
)

// Request codes understood by the bridge MCU.
const (
	CodeReadReg    byte = 0x02 // [addr] -> [val]
	CodeWriteReg   byte = 0x04 // [addr, val]
	CodeReadField  byte = 0x06 // [addr, mask, shift] -> [val]
	CodeWriteField byte = 0x08 // [addr, mask, shift, val]

	// CodeIRQ is sent by the MCU with the interrupt status of the IC when
	// its interrupt line is asserted.
	CodeIRQ byte = 0x82 // [status]
)

// DefaultRequestTimeout bounds every register access.
const DefaultRequestTimeout = time.Second

// Bridge accesses the registers of the IC through the bridge MCU. It
// implements reg.FieldRegisters.
type Bridge struct {
	Timeout time.Duration

	client *Client
	irqCh  chan uint8
}

// NewBridge creates a Bridge speaking over rw.
func NewBridge(rw io.ReadWriter) *Bridge {
	return &Bridge{
		Timeout: DefaultRequestTimeout,
		client:  NewClient(NewLink(rw)),
		irqCh:   make(chan uint8, 1),
	}
}

// IRQ delivers the interrupt status forwarded by the MCU. Status bits are
// merged while the reader falls behind.
func (b *Bridge) IRQ() <-chan uint8 {
	return b.irqCh
}

// Ready reports whether the link is synchronized.
func (b *Bridge) Ready() bool {
	return b.client.Link().State().Ready()
}

// WaitReady blocks until the link is synchronized.
func (b *Bridge) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for !b.Ready() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Run runs the link until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- b.client.Run(ctx) }()
	for {
		select {
		case err := <-errCh:
			return err
		case state := <-b.client.States():
			glog.V(3).Infof("l0: link state %d", state)
		case frame := <-b.client.Events():
			b.event(frame)
		}
	}
}

func (b *Bridge) event(frame *Frame) {
	if frame.Code != CodeIRQ || len(frame.Data) == 0 {
		glog.Warningf("l0: unknown event %02x", frame.Code)
		return
	}
	select {
	case b.irqCh <- frame.Data[0]:
	default:
		select {
		case prev := <-b.irqCh:
			b.irqCh <- prev | frame.Data[0]
		default:
			b.irqCh <- frame.Data[0]
		}
	}
}

// ReadReg implements reg.Registers.
func (b *Bridge) ReadReg(addr uint8) (uint8, error) {
	return b.read(CodeReadReg, addr)
}

// WriteReg implements reg.Registers.
func (b *Bridge) WriteReg(addr, val uint8) error {
	return b.write(CodeWriteReg, addr, val)
}

// ReadField implements reg.FieldRegisters.
func (b *Bridge) ReadField(addr, mask, shift uint8) (uint8, error) {
	return b.read(CodeReadField, addr, mask, shift)
}

// WriteField implements reg.FieldRegisters.
func (b *Bridge) WriteField(addr, mask, shift, val uint8) error {
	return b.write(CodeWriteField, addr, mask, shift, val)
}

func (b *Bridge) do(code byte, data ...byte) (Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
	defer cancel()
	return b.client.Do(ctx, &Frame{Code: code, Data: data})
}

func (b *Bridge) read(code byte, data ...byte) (uint8, error) {
	r, err := b.do(code, data...)
	if err != nil {
		return 0, err
	}
	if len(r.Data) < 1 {
		return 0, ErrShortReply
	}
	return r.Data[0], nil
}

func (b *Bridge) write(code byte, data ...byte) error {
	_, err := b.do(code, data...)
	return err
}
