package comm

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
)

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// ControllerConn implements l1.ControllerConn with a Pipe. Commands not
// answered within Expiration fail with context.DeadlineExceeded once the
// loop purges them.
type ControllerConn struct {
	Expiration time.Duration

	pipe     Pipe
	seq      uint32
	commands list.List
	seqMap   map[uint32]*commandFuture
	eventCh  chan fx.Message
	lock     sync.Mutex
}

// Init initializes ControllerConn with defaults.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.seqMap = make(map[uint32]*commandFuture)
	c.eventCh = make(chan fx.Message, 64)
}

// DoCommand implements l1.ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.seq++; c.seq == 0 {
		c.seq++
	}
	f := &commandFuture{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan l1.Result, 1),
	}
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.result <- l1.Result{Err: err}
		return f
	}
	f.elem = c.commands.PushBack(f)
	c.seqMap[f.seq] = f
	return f
}

// Events implements l1.ControllerConn.
func (c *ControllerConn) Events() <-chan fx.Message {
	return c.eventCh
}

// Close implements l1.ControllerConn.
func (c *ControllerConn) Close() error {
	return c.pipe.Close()
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		select {
		case c.eventCh <- msg:
		default:
			glog.Warningf("l1: event %x dropped", typed.TypeId)
		}
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	f := c.seqMap[typed.Sequence]
	if f == nil {
		return nil
	}
	c.commands.Remove(f.elem)
	delete(c.seqMap, typed.Sequence)
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.result <- result
	close(f.result)
	return nil
}

func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	now := cc.Time()
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.commands.Len() > 0 {
		elem := c.commands.Front()
		f := elem.Value.(*commandFuture)
		if f.expireAt.After(now) {
			break
		}
		c.commands.Remove(elem)
		delete(c.seqMap, f.seq)
		f.result <- l1.Result{Err: context.DeadlineExceeded}
		close(f.result)
	}
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan l1.Result
}

func (c *commandFuture) ResultChan() <-chan l1.Result {
	return c.result
}
