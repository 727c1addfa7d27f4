package cec

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/cec.go/pkg/cec/reg"
)

// CandidateEnd terminates a logical address candidate list.
const CandidateEnd uint8 = 0xFF

// maxCandidates is the number of logical addresses on the bus.
const maxCandidates = 16

// Candidates builds a candidate list terminated by CandidateEnd.
func Candidates(addrs ...uint8) []uint8 {
	l := make([]uint8, 0, len(addrs)+1)
	return append(append(l, addrs...), CandidateEnd)
}

// Operation is a multi-step procedure which owns the transmitter until it
// completes.
type Operation int

// Operations.
const (
	OperNone Operation = iota
	OperLogAddrAlloc
	OperGetLogAddrList
)

// String implements fmt.Stringer.
func (o Operation) String() string {
	switch o {
	case OperNone:
		return "none"
	case OperLogAddrAlloc:
		return "alloc"
	case OperGetLogAddrList:
		return "scan"
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

type addrOperation struct {
	kind  Operation
	addrs []uint8
	idx   int
	taken uint16
	// stop reports whether the operation ends at the current candidate.
	stop func(free bool) bool
	// polling is set once the first poll is loaded.
	polling bool
}

func (op *addrOperation) result(code ErrCode) Event {
	if op.kind == OperGetLogAddrList {
		return LogAddrList{Bitmap: op.taken, Code: code}
	}
	ev := LogAddrAlloc{Addr: AddrUnregistered, Code: code, Taken: op.taken}
	switch {
	case code != CodeNone:
		ev.Status, ev.Addr = AllocFailed, op.addrs[op.idx]
	case op.idx < len(op.addrs):
		ev.Status, ev.Addr = AllocOK, op.addrs[op.idx]
	default:
		ev.Status = AllocNoFreeAddr
	}
	return ev
}

func validateCandidates(candidates []uint8) ([]uint8, error) {
	for i, addr := range candidates {
		if addr == CandidateEnd {
			if i == 0 {
				return nil, ErrInvalidParam
			}
			return append([]uint8(nil), candidates[:i]...), nil
		}
		if addr > AddrUnregistered || i >= maxCandidates {
			return nil, ErrInvalidParam
		}
	}
	return nil, ErrInvalidParam
}

// AllocateLogicalAddr claims the first free address of candidates, which
// must be terminated by CandidateEnd. Each candidate is polled in order; the
// outcome is reported by a LogAddrAlloc event. When a frame is in flight the
// polling starts once it completes.
func (c *Controller) AllocateLogicalAddr(candidates []uint8) error {
	addrs, err := validateCandidates(candidates)
	if err != nil {
		return err
	}
	return c.startOp(addrOperation{
		kind:  OperLogAddrAlloc,
		addrs: addrs,
		stop:  func(free bool) bool { return free },
	})
}

// ScanLogicalAddrs polls every logical address and reports the ones in use
// by a LogAddrList event.
func (c *Controller) ScanLogicalAddrs() error {
	addrs := make([]uint8, maxCandidates)
	for i := range addrs {
		addrs[i] = uint8(i)
	}
	return c.startOp(addrOperation{
		kind:  OperGetLogAddrList,
		addrs: addrs,
		stop:  func(bool) bool { return false },
	})
}

func (c *Controller) startOp(op addrOperation) error {
	if c.op.kind != OperNone {
		return ErrBusy
	}
	c.op = op
	glog.V(2).Infof("cec: %s %v", op.kind, op.addrs)
	return c.drain()
}

func (c *Controller) startPoll() error {
	c.op.polling = true
	if err := c.transmit(PollMessage(c.op.addrs[c.op.idx])); err != nil {
		c.op = addrOperation{}
		return err
	}
	return nil
}

func (c *Controller) onPollEvent(ev txEvent) error {
	switch ev {
	case txReady:
		return c.resolvePoll(false)
	case txTimeout:
		n, err := c.readField(reg.TxNackRetries)
		if err != nil {
			kind := c.op.kind
			if ferr := c.finishOp(CodeTimeout); ferr != nil {
				glog.Errorf("cec: %s: %v", kind, ferr)
			}
			return err
		}
		if int(n) == RetryCount+1 {
			return c.resolvePoll(true)
		}
		return c.retryOr(func() error { return c.finishOp(CodeTimeout) })
	}
	return c.retryOr(func() error { return c.finishOp(CodeArbLost) })
}

// resolvePoll records a definitive answer for the current candidate and
// polls the next one unless the operation is complete.
func (c *Controller) resolvePoll(free bool) error {
	c.retry.reset()
	addr := c.op.addrs[c.op.idx]
	glog.V(3).Infof("cec: poll %x free=%v", addr, free)
	if !free {
		c.op.taken |= 1 << addr
	}
	if c.op.stop(free) {
		return c.finishOp(CodeNone)
	}
	if c.op.idx++; c.op.idx >= len(c.op.addrs) {
		return c.finishOp(CodeNone)
	}
	return c.transmit(PollMessage(c.op.addrs[c.op.idx]))
}

func (c *Controller) finishOp(code ErrCode) error {
	op := c.op
	c.op = addrOperation{}
	c.txState = TxIdle
	c.retry.reset()
	c.notify(op.result(code))
	return c.drain()
}
