package comm

import (
	"context"
	"io"
	"sync"
	"time"
)

// DefaultSyncTimeout is the interval between handshake attempts and the
// longest gap tolerated inside a frame.
const DefaultSyncTimeout = 100 * time.Millisecond

// Handler is called with every frame received.
type Handler interface {
	HandleFrame(context.Context, *Frame)
}

// HandlerFunc is the func form of Handler.
type HandlerFunc func(context.Context, *Frame)

// HandleFrame implements Handler.
func (f HandlerFunc) HandleFrame(ctx context.Context, frame *Frame) {
	f(ctx, frame)
}

// StateListener is called when the link state changes.
type StateListener interface {
	LinkStateChanged(context.Context, LinkState)
}

// StateListenerFunc is the func form of StateListener.
type StateListenerFunc func(context.Context, LinkState)

// LinkStateChanged implements StateListener.
func (f StateListenerFunc) LinkStateChanged(ctx context.Context, state LinkState) {
	f(ctx, state)
}

// Link exchanges frames over a byte stream.
type Link struct {
	Handler     Handler
	Listener    StateListener
	SyncTimeout time.Duration

	rw    io.ReadWriter
	seq   Seq
	state LinkState
	lock  sync.RWMutex
	dec   Decoder
	timer *time.Timer
}

// NewLink creates a Link on rw.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{
		rw:          rw,
		seq:         NewSeq(),
		SyncTimeout: DefaultSyncTimeout,
	}
}

// State returns the link state.
func (l *Link) State() LinkState {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.state
}

// Send numbers and writes a frame.
func (l *Link) Send(frame *Frame) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if !l.state.Ready() {
		return ErrNotReady
	}
	frame.Seq = l.seq
	if _, err := frame.WriteTo(l.rw); err != nil {
		return err
	}
	l.seq = l.seq.Next()
	return nil
}

// Run synchronizes with the peer and receives frames until ctx is done or
// the stream fails.
func (l *Link) Run(ctx context.Context) error {
	byteCh, errCh := make(chan byte, 64), make(chan error, 1)
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(readCtx, byteCh, errCh)

	l.timer = time.NewTimer(l.SyncTimeout)
	defer l.timer.Stop()
	if err := l.apply(ctx, l.dec.Resync()); err != nil {
		return err
	}

	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err = <-errCh:
			return err
		case b := <-byteCh:
			err = l.apply(ctx, l.dec.Feed(b))
		case <-l.timer.C:
			err = l.apply(ctx, l.dec.Expire())
		}
		if err != nil {
			return err
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan<- byte, errCh chan<- error) {
	buf := make([]byte, 32)
	for {
		n, err := l.rw.Read(buf)
		for _, b := range buf[:n] {
			select {
			case byteCh <- b:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (l *Link) apply(ctx context.Context, st Step) (err error) {
	changed := false
	l.lock.Lock()
	if l.state != st.State {
		l.state, changed = st.State, true
	}
	if st.Sync != 0 {
		_, err = l.rw.Write([]byte{st.Sync, byte(l.seq)})
	}
	l.lock.Unlock()
	if err != nil {
		return err
	}

	switch st.Timer() {
	case TimerRestart:
		l.resetTimer(l.SyncTimeout)
	case TimerStop:
		l.resetTimer(0)
	}

	if changed && l.Listener != nil {
		l.Listener.LinkStateChanged(ctx, st.State)
	}
	if st.Frame != nil && l.Handler != nil {
		l.Handler.HandleFrame(ctx, st.Frame)
	}
	return nil
}

func (l *Link) resetTimer(d time.Duration) {
	if !l.timer.Stop() {
		select {
		case <-l.timer.C:
		default:
		}
	}
	if d > 0 {
		l.timer.Reset(d)
	}
}
