// Package cecnode runs the CEC engine as an L1 node: the engine is polled
// and commanded from the framework loop and its events are published
// through the registrar.
package cecnode

import (
	"context"
	"errors"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/cec.go/pkg/cec"
	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
)

// ErrNotStarted is returned for commands received before the engine is
// reset and enabled.
var ErrNotStarted = errors.New("controller not started")

// Controller binds the engine to the loop.
type Controller struct {
	Engine    *cec.Controller
	Device    *Device
	Registrar l1.Registrar
	Responder Responder
	// Tap sees every engine event before the controller handles it.
	Tap cec.Notifier

	closers []io.Closer
	started bool
	events  cec.Events
	pending []fx.Message
}

type irqMsg struct {
	flags uint8
}

// NewMessage implements Message.
func (m *irqMsg) NewMessage() fx.Message { return &irqMsg{} }

// NewController creates a Controller on an opened device.
func NewController(dev *Device, profile *Profile, registrar l1.Registrar) *Controller {
	c := &Controller{
		Device:    dev,
		Registrar: registrar,
		Responder: Responder{Profile: profile},
	}
	c.Engine = cec.New(dev.Regs, c)
	return c
}

// Notify implements cec.Notifier.
func (c *Controller) Notify(ev cec.Event) {
	if c.Tap != nil {
		c.Tap.Notify(ev)
	}
	c.events.Notify(ev)
}

// AddToLoop implements LoopAdder. The controller is also started as a
// Runnable by the loop.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvSense, fx.ControlFunc(c.sense))
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvActuate, fx.ControlFunc(c.react))
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.publish))
}

// Run implements Runnable. It runs the device and forwards its interrupt
// line to the loop.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		for _, closer := range c.closers {
			closer.Close()
		}
	}()
	if irq := c.Device.IRQ; irq != nil {
		loopCtl := fx.LoopCtlFrom(ctx)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case flags := <-irq:
					loopCtl.PostMessage(&irqMsg{flags: flags})
					loopCtl.TriggerNext()
				}
			}
		}()
	}
	return c.Device.Run(ctx)
}

// Start resets and enables the engine, then claims a logical address when
// the profile asks for it.
func (c *Controller) Start() error {
	if err := c.Engine.Reset(); err != nil {
		return err
	}
	if err := c.Engine.Enable(true); err != nil {
		return err
	}
	c.started = true
	glog.Infof("cec: started on %s", c.Device.URL)
	if p := c.Responder.Profile; p.AutoAllocate {
		return c.Engine.AllocateLogicalAddr(p.CandidateList())
	}
	return nil
}

func (c *Controller) sense(cc fx.ControlContext) error {
	cc.Messages().Each(func(msg fx.Message) bool {
		_, ok := msg.(*irqMsg)
		return ok
	})
	if !c.started {
		return c.Start()
	}
	return c.Engine.Poll()
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	var errs fx.AggregatedError
	cc.Messages().Each(func(msg fx.Message) bool {
		cmd, ok := msg.(*l1.CommandMsg)
		if !ok {
			return false
		}
		reply := c.DoCommand(cmd.Command.Msg())
		if reply == nil {
			return false
		}
		errs.Add(cmd.Command.Done(reply))
		return true
	})
	return errs.Aggregate()
}

// DoCommand executes a CEC command and returns the reply, nil when msg is
// not a CEC command.
func (c *Controller) DoCommand(msg fx.Message) fx.Message {
	switch msg.(type) {
	case *msgs.CecSend, *msgs.CecResend, *msgs.CecEnable, *msgs.CecSetLogicalAddr,
		*msgs.CecAllocate, *msgs.CecScan, *msgs.CecStatusQuery, *msgs.CecClearQueue:
	default:
		return nil
	}
	if !c.started {
		return msgs.NewCommandErr(ErrNotStarted)
	}
	e := c.Engine
	switch m := msg.(type) {
	case *msgs.CecSend:
		frame := cec.Message(m.Frame)
		if !m.Queue {
			err := e.SendMessage(frame)
			if err == nil {
				c.Responder.Sent(frame)
			}
			return replyOf(&msgs.CecSendReply{}, err)
		}
		res, err := e.Submit(frame)
		if err == nil {
			c.Responder.Sent(frame)
		}
		return replyOf(&msgs.CecSendReply{Queued: res == cec.Queued}, err)
	case *msgs.CecResend:
		return replyOf(msgs.NewCommandOK(), e.ResendLast())
	case *msgs.CecEnable:
		return replyOf(msgs.NewCommandOK(), e.Enable(m.On))
	case *msgs.CecSetLogicalAddr:
		if m.Addr > 0xff || m.Slot > 0xff {
			return msgs.NewCommandErr(cec.ErrInvalidParam)
		}
		return replyOf(msgs.NewCommandOK(), e.SetLogicalAddr(uint8(m.Addr), int(m.Slot), m.Enable))
	case *msgs.CecAllocate:
		candidates := c.Responder.Profile.CandidateList()
		if len(m.Candidates) > 0 {
			candidates = m.Candidates
			if candidates[len(candidates)-1] != cec.CandidateEnd {
				candidates = cec.Candidates(candidates...)
			}
		}
		return replyOf(msgs.NewCommandOK(), e.AllocateLogicalAddr(candidates))
	case *msgs.CecScan:
		return replyOf(msgs.NewCommandOK(), e.ScanLogicalAddrs())
	case *msgs.CecStatusQuery:
		return c.status()
	case *msgs.CecClearQueue:
		e.ClearQueue()
		return msgs.NewCommandOK()
	}
	return nil
}

func replyOf(reply fx.Message, err error) fx.Message {
	if err != nil {
		return msgs.NewCommandErr(err)
	}
	return reply
}

func (c *Controller) status() *msgs.CecStatus {
	st := c.Engine.Status()
	reply := &msgs.CecStatus{
		Enabled:      st.Enabled,
		TxBusy:       st.TxState == cec.TxBusy,
		Queued:       uint32(st.Queued),
		Operation:    st.Operation.String(),
		Retries:      uint32(st.Retries),
		PhysicalAddr: uint32(c.Responder.Profile.PhysAddr()),
	}
	for _, la := range st.LogicalAddrs {
		reply.LogicalAddrs = append(reply.LogicalAddrs, &msgs.CecLogicalAddr{
			Addr:    uint32(la.Addr),
			Enabled: la.Enabled,
		})
	}
	return reply
}

// react answers requests and completes address claims.
func (c *Controller) react(cc fx.ControlContext) error {
	var errs fx.AggregatedError
	for _, ev := range c.events.Take() {
		switch e := ev.(type) {
		case cec.RxMsg:
			c.Responder.Received(e.Msg)
		case cec.RxMsgRespond:
			c.Responder.Received(e.Msg)
			if reply := c.Responder.Respond(e.Msg); reply != nil {
				_, err := c.Engine.Submit(reply)
				errs.Add(err)
			}
		case cec.LogAddrAlloc:
			errs.Add(c.claim(e))
		}
		c.pending = append(c.pending, EventMessage(ev))
	}
	return errs.Aggregate()
}

func (c *Controller) claim(ev cec.LogAddrAlloc) error {
	switch ev.Status {
	case cec.AllocOK:
		glog.Infof("cec: claimed logical address %d", ev.Addr)
		if err := c.Engine.SetLogicalAddr(ev.Addr, 0, true); err != nil {
			return err
		}
		_, err := c.Engine.Submit(c.Responder.ReportPhysicalAddr(ev.Addr))
		return err
	case cec.AllocNoFreeAddr:
		glog.Warningf("cec: no free logical address, taken %04x", ev.Taken)
		return c.Engine.SetLogicalAddr(cec.AddrUnregistered, 0, true)
	}
	glog.Errorf("cec: logical address allocation %s: %s", ev.Status, ev.Code)
	return nil
}

func (c *Controller) publish(cc fx.ControlContext) error {
	pending := c.pending
	c.pending = nil
	if c.Registrar == nil {
		return nil
	}
	var errs fx.AggregatedError
	for _, msg := range pending {
		errs.Add(c.Registrar.SendEvent(cc.Context(), msg))
	}
	return errs.Aggregate()
}

// EventMessage converts an engine event to its L1 event message.
func EventMessage(ev cec.Event) fx.Message {
	switch e := ev.(type) {
	case cec.RxMsg:
		return &msgs.CecRxEvent{Frame: e.Msg}
	case cec.RxMsgRespond:
		return &msgs.CecRxEvent{Frame: e.Msg, Respond: true}
	case cec.TxDone:
		return &msgs.CecTxEvent{Result: msgs.TxResultDone}
	case cec.TxTimeout:
		return &msgs.CecTxEvent{Result: msgs.TxResultTimeout, Code: uint32(e.Code)}
	case cec.TxArbLost:
		return &msgs.CecTxEvent{Result: msgs.TxResultArbLost, Code: uint32(e.Code)}
	case cec.LogAddrAlloc:
		return &msgs.CecAllocEvent{
			Status: e.Status.String(),
			Addr:   uint32(e.Addr),
			Code:   uint32(e.Code),
			Taken:  uint32(e.Taken),
		}
	case cec.LogAddrList:
		return &msgs.CecScanEvent{Bitmap: uint32(e.Bitmap), Code: uint32(e.Code)}
	}
	return nil
}
