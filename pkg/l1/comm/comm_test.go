package comm

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/msgs"
)

type chanPackets struct {
	in   <-chan []byte
	out  chan<- []byte
	done chan struct{}
	once sync.Once
}

func packetPair() (*chanPackets, *chanPackets) {
	a, b := make(chan []byte, 16), make(chan []byte, 16)
	return &chanPackets{in: a, out: b, done: make(chan struct{})},
		&chanPackets{in: b, out: a, done: make(chan struct{})}
}

func (c *chanPackets) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-c.in:
		return pkt, nil
	case <-c.done:
		return nil, io.EOF
	}
}

func (c *chanPackets) WritePacket(pkt []byte) error {
	select {
	case c.out <- pkt:
		return nil
	case <-c.done:
		return io.ErrClosedPipe
	}
}

func (c *chanPackets) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

type statusResponder struct{}

func (statusResponder) Control(cc fx.ControlContext) error {
	cc.Messages().Each(func(msg fx.Message) bool {
		cmd, ok := msg.(*l1.CommandMsg)
		if !ok {
			return false
		}
		if _, ok = cmd.Command.Msg().(*msgs.CecStatusQuery); ok {
			cmd.Command.Done(&msgs.CecStatus{Enabled: true, Queued: 3})
		}
		return ok
	})
	return nil
}

type commTestEnv struct {
	t      *testing.T
	ctx    context.Context
	reg    *Registrar
	conn   *ControllerConn
	node   *fx.Loop
	client *fx.Loop
}

func newCommTestEnv(t *testing.T, withNode bool) *commTestEnv {
	ctx, cancel := context.WithCancel(context.Background())
	nodeSide, clientSide := packetPair()
	env := &commTestEnv{
		t:      t,
		ctx:    ctx,
		reg:    &Registrar{},
		conn:   &ControllerConn{},
		node:   fx.NewLoop(),
		client: fx.NewLoop(),
	}
	env.reg.Init(nodeSide)
	env.conn.Init(clientSide)
	env.conn.Expiration = 50 * time.Millisecond
	env.client.Interval = 10 * time.Millisecond
	env.node.Add(env.reg, &UnsupportedCommands{}).
		AddController(fx.PrLvControl, statusResponder{})

	var wg sync.WaitGroup
	run := func(l *fx.Loop) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Run(ctx)
		}()
	}
	env.client.Add(env.conn)
	run(env.client)
	if withNode {
		run(env.node)
	}
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return env
}

func (e *commTestEnv) do(msg fx.Message) (fx.Message, error) {
	ctx, cancel := context.WithTimeout(e.ctx, time.Second)
	defer cancel()
	return l1.Wait(ctx, e.conn.DoCommand(msg))
}

func TestCommandReply(t *testing.T) {
	env := newCommTestEnv(t, true)
	reply, err := env.do(&msgs.CecStatusQuery{})
	require.NoError(t, err)
	require.Equal(t, uint32(3), reply.(*msgs.CecStatus).Queued)
	require.True(t, reply.(*msgs.CecStatus).Enabled)
}

func TestUnsupportedCommand(t *testing.T) {
	env := newCommTestEnv(t, true)
	_, err := env.do(&msgs.CecScan{})
	var cmdErr *msgs.CommandErr
	require.True(t, errors.As(err, &cmdErr))
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), cmdErr.Message)
}

func TestEventDelivery(t *testing.T) {
	env := newCommTestEnv(t, true)
	require.NoError(t, env.reg.SendEvent(env.ctx, &msgs.CecRxEvent{Frame: []byte{0x40, 0x04}}))
	select {
	case ev := <-env.conn.Events():
		require.Equal(t, []byte{0x40, 0x04}, ev.(*msgs.CecRxEvent).Frame)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting event")
	}
	require.Error(t, env.reg.SendEvent(env.ctx, &msgs.CecScan{}))
}

func TestCommandExpired(t *testing.T) {
	env := newCommTestEnv(t, false)
	_, err := env.do(&msgs.CecStatusQuery{})
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestRegistrarMux(t *testing.T) {
	a, b := &recordingRegistrar{}, &recordingRegistrar{err: io.ErrClosedPipe}
	mux := &RegistrarMux{}
	mux.Add(a, b)
	err := mux.SendEvent(context.Background(), &msgs.CecScanEvent{Bitmap: 1})
	require.Equal(t, io.ErrClosedPipe.Error(), err.Error())
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
}

type recordingRegistrar struct {
	events []fx.Message
	err    error
}

func (r *recordingRegistrar) SendEvent(_ context.Context, msg fx.Message) error {
	r.events = append(r.events, msg)
	return r.err
}
