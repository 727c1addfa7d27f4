package comm

import (
	"context"
	"sync"
)

// Result is the reply to a request.
type Result struct {
	Err  error
	Code byte
	Data []byte
}

// Call is a request waiting for its reply.
type Call struct {
	Seq  Seq
	Done <-chan Result

	done chan Result
}

// Client matches replies to requests sent over a Link and separates
// unsolicited frames.
type Client struct {
	link    *Link
	eventCh chan *Frame
	stateCh chan LinkState
	pending []*Call
	lock    sync.Mutex
}

// NewClient creates a Client which takes over the handler and the state
// listener of link.
func NewClient(link *Link) *Client {
	c := &Client{
		link:    link,
		eventCh: make(chan *Frame, 16),
		stateCh: make(chan LinkState, 1),
	}
	link.Handler = c
	link.Listener = StateListenerFunc(c.linkStateChanged)
	return c
}

// Link returns the wrapped link.
func (c *Client) Link() *Link {
	return c.link
}

// Events returns the unsolicited frames.
func (c *Client) Events() <-chan *Frame {
	return c.eventCh
}

// States returns the latest link state changes. Only the most recent state
// is kept when the reader falls behind.
func (c *Client) States() <-chan LinkState {
	return c.stateCh
}

// Go sends a request and returns without waiting for the reply.
func (c *Client) Go(frame *Frame) *Call {
	done := make(chan Result, 1)
	call := &Call{Done: done, done: done}

	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.link.Send(frame); err != nil {
		done <- Result{Err: err}
		return call
	}
	call.Seq = frame.Seq
	c.pending = append(c.pending, call)
	return call
}

// Do sends a request and waits for the reply.
func (c *Client) Do(ctx context.Context, frame *Frame) (Result, error) {
	call := c.Go(frame)
	select {
	case r := <-call.Done:
		return r, r.Err
	case <-ctx.Done():
		c.forget(call)
		return Result{}, ctx.Err()
	}
}

// HandleFrame implements Handler.
func (c *Client) HandleFrame(ctx context.Context, frame *Frame) {
	if frame.IsEvent() {
		select {
		case c.eventCh <- frame:
		case <-ctx.Done():
		}
		return
	}
	if len(frame.Data) == 0 || !Seq(frame.Data[0]).Valid() {
		return
	}
	seq := Seq(frame.Data[0])

	c.lock.Lock()
	var skipped []*Call
	var call *Call
	for i, p := range c.pending {
		if p.Seq == seq {
			call, skipped = p, c.pending[:i:i]
			c.pending = append([]*Call(nil), c.pending[i+1:]...)
			break
		}
	}
	c.lock.Unlock()
	if call == nil {
		return
	}

	for _, p := range skipped {
		p.done <- Result{Err: ErrNoReply}
	}
	code := frame.Code &^ (CodeEvent | CodeError)
	if frame.Code&CodeError != 0 {
		call.done <- Result{Err: &CommandError{Code: code}, Code: code}
		return
	}
	call.done <- Result{Code: code, Data: frame.Data[1:]}
}

// Run runs the link.
func (c *Client) Run(ctx context.Context) error {
	return c.link.Run(ctx)
}

func (c *Client) linkStateChanged(ctx context.Context, state LinkState) {
	if !state.Ready() {
		c.failPending(ErrNotReady)
	}
	for {
		select {
		case c.stateCh <- state:
			return
		default:
		}
		select {
		case <-c.stateCh:
		default:
		}
	}
}

func (c *Client) forget(call *Call) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i, p := range c.pending {
		if p == call {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func (c *Client) failPending(err error) {
	c.lock.Lock()
	pending := c.pending
	c.pending = nil
	c.lock.Unlock()
	for _, p := range pending {
		p.done <- Result{Err: err}
	}
}
