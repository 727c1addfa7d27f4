package cec

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/cec.go/pkg/cec/reg"
)

// LogicalAddrSlots is the number of logical addresses the IC answers to.
const LogicalAddrSlots = 2

// TxState is the state of the transmitter.
type TxState int

// Transmitter states.
const (
	TxIdle TxState = iota // no frame in flight
	TxBusy                // hardware is clocking a frame
)

// String implements fmt.Stringer.
func (s TxState) String() string {
	if s == TxBusy {
		return "busy"
	}
	return "done"
}

// IntFlags are the interrupt causes sampled from the IC.
type IntFlags uint8

// Interrupt causes.
const (
	IntTxDone  = IntFlags(reg.IntTxDone)
	IntTxNack  = IntFlags(reg.IntTxNack)
	IntArbLost = IntFlags(reg.IntArbLost)
	IntRxFrame = IntFlags(reg.IntRxFrame)

	intTxMask = IntTxDone | IntTxNack | IntArbLost
)

// LogicalAddr is the configuration of a logical address slot.
type LogicalAddr struct {
	Addr    uint8
	Enabled bool
}

// Status is a snapshot of the controller state.
type Status struct {
	Enabled      bool
	TxState      TxState
	Queued       int
	Operation    Operation
	Retries      int
	LogicalAddrs [LogicalAddrSlots]LogicalAddr
}

// Controller drives the CEC block of the IC. It owns the transmit queue,
// the transmitter state, the retry counter and the address operations.
//
// A Controller is not safe for concurrent use. All calls, including
// OnInterrupt, must come from the same goroutine.
type Controller struct {
	regs     reg.FieldRegisters
	notifier Notifier

	enabled  bool
	txState  TxState
	queue    TxQueue
	retry    retryPolicy
	loaded   int
	op       addrOperation
	logAddrs [LogicalAddrSlots]LogicalAddr
}

// New creates a Controller on the register interface of the IC.
func New(regs reg.Registers, notifier Notifier) *Controller {
	c := &Controller{
		regs:     reg.Fields(regs),
		notifier: notifier,
	}
	c.resetState()
	return c
}

// Reset soft-resets the CEC block and rebuilds all volatile state,
// dropping queued frames.
func (c *Controller) Reset() error {
	c.resetState()
	if err := c.writeField(reg.CtrlReset, 1); err != nil {
		return err
	}
	if err := c.writeReg(reg.IntStatus, reg.IntAll); err != nil {
		return err
	}
	return c.writeReg(reg.IntMask, reg.IntAll)
}

func (c *Controller) resetState() {
	c.enabled = false
	c.txState = TxIdle
	c.queue.Clear()
	c.retry = retryPolicy{limit: RetryCount}
	c.loaded = 0
	c.op = addrOperation{}
	c.logAddrs = [LogicalAddrSlots]LogicalAddr{}
}

// Enable turns CEC bus participation on or off.
func (c *Controller) Enable(on bool) error {
	var v uint8
	if on {
		v = 1
	}
	if err := c.writeField(reg.CtrlEnable, v); err != nil {
		return err
	}
	c.enabled = on
	return nil
}

// SetLogicalAddr programs a logical address slot.
func (c *Controller) SetLogicalAddr(addr uint8, slot int, enable bool) error {
	if addr > AddrUnregistered || slot < 0 || slot >= LogicalAddrSlots {
		return ErrInvalidParam
	}
	v := addr & reg.LogAddrMask
	if enable {
		v |= reg.LogAddrEnable
	}
	if err := c.writeReg(reg.LogAddrReg(slot), v); err != nil {
		return err
	}
	c.logAddrs[slot] = LogicalAddr{Addr: addr, Enabled: enable}
	return nil
}

// LogicalAddrs returns the configured logical address slots.
func (c *Controller) LogicalAddrs() [LogicalAddrSlots]LogicalAddr {
	return c.logAddrs
}

// ClearQueue drops frames waiting behind the in-flight one.
func (c *Controller) ClearQueue() {
	c.queue.Clear()
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	return Status{
		Enabled:      c.enabled,
		TxState:      c.txState,
		Queued:       c.queue.Len(),
		Operation:    c.op.kind,
		Retries:      c.retry.count,
		LogicalAddrs: c.logAddrs,
	}
}

// Poll samples and acknowledges the interrupt status register, then
// dispatches the sampled causes.
func (c *Controller) Poll() error {
	flags, err := c.readReg(reg.IntStatus)
	if err != nil {
		return err
	}
	if flags &= reg.IntAll; flags != 0 {
		if err = c.writeReg(reg.IntStatus, flags); err != nil {
			return err
		}
	}
	return c.OnInterrupt(IntFlags(flags))
}

// OnInterrupt dispatches interrupt causes. Transmit causes advance the
// transmitter, the retry policy or the running address operation; receive
// slots are drained on every call.
func (c *Controller) OnInterrupt(flags IntFlags) error {
	var txErr error
	if tx := flags & intTxMask; tx != 0 {
		if dropped := tx &^ txCause(tx); dropped != 0 {
			glog.Warningf("cec: dropped transmit interrupt %02x", uint8(dropped))
		}
		if c.txState == TxBusy {
			txErr = c.onTxEvent(txEventOf(flags))
		} else {
			glog.Warningf("cec: spurious transmit interrupt %02x", uint8(flags))
		}
	}
	rxErr := c.dispatchRx()
	if txErr != nil {
		return txErr
	}
	return rxErr
}

func (c *Controller) notify(ev Event) {
	if glog.V(2) {
		glog.Infof("cec: %s %+v", ev.Kind(), ev)
	}
	if n := c.notifier; n != nil {
		n.Notify(ev)
	}
}

func (c *Controller) readReg(addr uint8) (uint8, error) {
	v, err := c.regs.ReadReg(addr)
	if err != nil {
		return 0, fmt.Errorf("read reg %02x: %v", addr, err)
	}
	return v, nil
}

func (c *Controller) writeReg(addr, val uint8) error {
	if err := c.regs.WriteReg(addr, val); err != nil {
		return fmt.Errorf("write reg %02x: %v", addr, err)
	}
	return nil
}

func (c *Controller) readField(f reg.Field) (uint8, error) {
	v, err := c.regs.ReadField(f.Addr, f.Mask, f.Shift)
	if err != nil {
		return 0, fmt.Errorf("read field %s: %v", f, err)
	}
	return v, nil
}

func (c *Controller) writeField(f reg.Field, val uint8) error {
	if err := c.regs.WriteField(f.Addr, f.Mask, f.Shift, val); err != nil {
		return fmt.Errorf("write field %s: %v", f, err)
	}
	return nil
}
