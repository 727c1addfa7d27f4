package cec

import (
	"github.com/golang/glog"

	"github.com/robotalks/cec.go/pkg/cec/reg"
)

// SubmitResult tells whether Submit started the transmission or queued it.
type SubmitResult int

// Submit results.
const (
	Sent SubmitResult = iota
	Queued
)

// String implements fmt.Stringer.
func (r SubmitResult) String() string {
	if r == Queued {
		return "queued"
	}
	return "sent"
}

type txEvent int

const (
	txReady txEvent = iota
	txTimeout
	txArbLost
)

// txCause picks the transmit cause to handle when several bits are set.
func txCause(flags IntFlags) IntFlags {
	switch {
	case flags&IntTxDone != 0:
		return IntTxDone
	case flags&IntTxNack != 0:
		return IntTxNack
	}
	return flags & IntArbLost
}

func txEventOf(flags IntFlags) txEvent {
	switch txCause(flags) {
	case IntTxDone:
		return txReady
	case IntTxNack:
		return txTimeout
	}
	return txArbLost
}

// busy reports whether the bus is owned by a frame or an address operation.
func (c *Controller) busy() bool {
	return c.txState == TxBusy || c.op.kind != OperNone
}

// Submit transmits msg if the transmitter is idle, otherwise it appends msg
// to the transmit queue. Queued frames are sent in order as the frames ahead
// of them complete.
func (c *Controller) Submit(msg Message) (SubmitResult, error) {
	if err := msg.Validate(); err != nil {
		return Queued, err
	}
	if !c.busy() && c.queue.Len() == 0 {
		return Sent, c.transmit(msg)
	}
	if err := c.queue.Enqueue(msg); err != nil {
		return Queued, err
	}
	glog.V(2).Infof("cec: queued %s (%d pending)", msg, c.queue.Len())
	return Queued, c.drain()
}

// SendMessage transmits msg immediately. It fails with ErrBusy rather than
// queueing.
func (c *Controller) SendMessage(msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if c.busy() {
		return ErrBusy
	}
	return c.transmit(msg)
}

// SendQueuedMessage transmits the oldest queued frame, if any.
func (c *Controller) SendQueuedMessage() error {
	if c.busy() {
		return ErrBusy
	}
	return c.drain()
}

// ResendLast transmits the frame still loaded in the hardware buffer again.
func (c *Controller) ResendLast() error {
	if c.busy() {
		return ErrBusy
	}
	if c.loaded == 0 {
		return ErrNoFrame
	}
	if err := c.writeField(reg.TxEnable, 1); err != nil {
		return err
	}
	c.txState = TxBusy
	return nil
}

func (c *Controller) transmit(msg Message) error {
	for i, b := range msg {
		if err := c.writeReg(reg.TxBuf+uint8(i), b); err != nil {
			return err
		}
	}
	if err := c.writeField(reg.TxLength, uint8(len(msg))); err != nil {
		return err
	}
	c.loaded = len(msg)
	if err := c.writeField(reg.TxEnable, 1); err != nil {
		return err
	}
	c.txState = TxBusy
	glog.V(2).Infof("cec: tx %s", msg)
	return nil
}

// drain starts the next transmission when the transmitter is idle: a
// pending address operation goes first, then the queue.
func (c *Controller) drain() error {
	if c.txState == TxBusy {
		return nil
	}
	if c.op.kind != OperNone {
		if c.op.polling {
			return nil
		}
		return c.startPoll()
	}
	msg, ok := c.queue.Dequeue()
	if !ok {
		return nil
	}
	return c.transmit(msg)
}

func (c *Controller) onTxEvent(ev txEvent) error {
	if c.op.polling {
		return c.onPollEvent(ev)
	}
	switch ev {
	case txReady:
		return c.complete(TxDone{})
	case txTimeout:
		return c.complete(TxTimeout{Code: CodeTimeout})
	}
	return c.retryOr(func() error {
		return c.complete(TxArbLost{Code: CodeArbLost})
	})
}

// complete finishes the in-flight frame and moves on to the queue.
func (c *Controller) complete(ev Event) error {
	c.retry.reset()
	c.txState = TxIdle
	c.notify(ev)
	return c.drain()
}
