package comm

import (
	"context"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
)

// Registrar implements l1.Registrar with a Pipe. Received commands are
// posted to the loop as l1.CommandMsg.
type Registrar struct {
	pipe Pipe
}

// Init initializes the Registrar on rw.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = msgs.HandleTypedMsgFunc(r.handleTypedMsg)
}

func (r *Registrar) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsReply() {
		return nil
	}
	loopCtl := fx.LoopCtlFrom(ctx)
	if typed.IsCommand() {
		msg = &l1.CommandMsg{Command: &command{seq: typed.Sequence, msg: msg, pipe: &r.pipe}}
	}
	loopCtl.PostMessage(msg)
	loopCtl.TriggerNext()
	return nil
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

type command struct {
	seq  uint32
	msg  fx.Message
	pipe *Pipe
}

func (c *command) Msg() fx.Message {
	return c.msg
}

func (c *command) Done(msg fx.Message) error {
	return c.pipe.SendCommandMsg(msg, c.seq)
}

// RegistrarMux fans events out to multiple Registrars.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// SendEvent implements l1.Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// UnsupportedCommands replies commands no controller took.
type UnsupportedCommands struct {
}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	var errs fx.AggregatedError
	cc.Messages().Each(func(msg fx.Message) bool {
		cmdMsg, ok := msg.(*l1.CommandMsg)
		if ok {
			errs.Add(cmdMsg.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand)))
		}
		return ok
	})
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}

// Serve receives on the transport until it fails or ctx is done. It is the
// blocking form of AddToLoop for transports created per connection; ctx
// must carry the loop control.
func (r *Registrar) Serve(ctx context.Context) error {
	return r.pipe.Run(ctx)
}
