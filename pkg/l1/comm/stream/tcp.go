package stream

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/comm"
)

// Registrar implements l1.Registrar by accepting TCP clients.
type Registrar struct {
	Addr string

	ctx      context.Context
	ready    chan struct{}
	listener net.Listener
	lock     sync.Mutex
	clients  map[*comm.Registrar]struct{}
}

// NewRegistrar creates a Registrar listening on addr.
func NewRegistrar(addr string) *Registrar {
	return &Registrar{
		Addr:    addr,
		ready:   make(chan struct{}),
		clients: make(map[*comm.Registrar]struct{}),
	}
}

// ListenAddr returns the bound address once the registrar is serving.
func (r *Registrar) ListenAddr(ctx context.Context) (net.Addr, error) {
	select {
	case <-r.ready:
		return r.listener.Addr(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	r.lock.Lock()
	clients := make([]*comm.Registrar, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.lock.Unlock()
	var errs fx.AggregatedError
	for _, c := range clients {
		errs.Add(c.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(r)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.Addr)
	if err != nil {
		return err
	}
	r.ctx, r.listener = ctx, ln
	close(r.ready)
	glog.Infof("l1: tcp serving on %s", ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			go r.serve(conn)
		}
	})
}

func (r *Registrar) serve(conn net.Conn) {
	client := &comm.Registrar{}
	client.Init(New(conn))
	r.lock.Lock()
	r.clients[client] = struct{}{}
	r.lock.Unlock()
	glog.V(1).Infof("l1: client %s connected", conn.RemoteAddr())

	err := client.Serve(r.ctx)

	r.lock.Lock()
	delete(r.clients, client)
	r.lock.Unlock()
	glog.V(1).Infof("l1: client %s disconnected: %v", conn.RemoteAddr(), err)
}

// Connector implements l1.Connector for a node at tcp://host:port. The node
// is known by URL only, Discover reports it with the address as ID.
type Connector struct {
	Type string
	Addr string
}

// NewConnector creates a Connector.
func NewConnector(nodeURL, typ string) (*Connector, error) {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "tcp" || u.Host == "" {
		return nil, fmt.Errorf("tcp URL expected: %q", nodeURL)
	}
	return &Connector{Type: typ, Addr: u.Host}, nil
}

// Discover implements l1.Connector.
func (c *Connector) Discover(context.Context) ([]l1.ControllerInfo, error) {
	return []l1.ControllerInfo{{Ref: l1.ControllerRef{Type: c.Type, ID: c.Addr}}}, nil
}

// Connect implements l1.Connector.
func (c *Connector) Connect(ctx context.Context, _ l1.ControllerRef) (l1.ControllerConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return nil, err
	}
	cc := &comm.ControllerConn{}
	cc.Init(New(conn))
	return cc, nil
}
