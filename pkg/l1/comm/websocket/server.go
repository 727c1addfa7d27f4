package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/comm"
)

// DefaultPath is where the node accepts websocket connections. Its
// metadata is served at DefaultPath + "/meta".
const DefaultPath = "/l1"

// Registrar implements l1.Registrar by accepting websocket clients. Every
// client can send commands and receives all events.
type Registrar struct {
	Addr string
	Path string
	Info l1.ControllerInfo

	ctx      context.Context
	ready    chan struct{}
	listener net.Listener
	lock     sync.Mutex
	clients  map[*comm.Registrar]struct{}
}

// NewRegistrar creates a Registrar listening on addr.
func NewRegistrar(addr string, info l1.ControllerInfo) *Registrar {
	return &Registrar{
		Addr:    addr,
		Path:    DefaultPath,
		Info:    info,
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

// Handler returns the HTTP handler of the node.
func (r *Registrar) Handler() http.Handler {
	path := strings.TrimSuffix(r.Path, "/")
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(r.serve))
	mux.HandleFunc(path+"/meta", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&metaDoc{Type: r.Info.Ref.Type, ID: r.Info.Ref.ID, Meta: r.Info.Meta})
	})
	return mux
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.Addr)
	if err != nil {
		return err
	}
	r.ctx, r.listener = ctx, ln
	close(r.ready)
	glog.Infof("l1: websocket serving on %s%s", ln.Addr(), r.Path)
	server := &http.Server{Handler: r.Handler()}
	err = fx.RunWithContextCloser(ctx, server, func() error {
		return server.Serve(ln)
	})
	if err == http.ErrServerClosed {
		err = nil
	}
	return err
}

func (r *Registrar) serve(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	client := &comm.Registrar{}
	client.Init(New(conn))
	r.lock.Lock()
	r.clients[client] = struct{}{}
	r.lock.Unlock()
	glog.V(1).Infof("l1: client %s connected", conn.Request().RemoteAddr)

	err := client.Serve(r.ctx)

	r.lock.Lock()
	delete(r.clients, client)
	r.lock.Unlock()
	glog.V(1).Infof("l1: client %s disconnected: %v", conn.Request().RemoteAddr, err)
}

type metaDoc struct {
	Type string            `json:"type"`
	ID   string            `json:"id"`
	Meta l1.ControllerMeta `json:"meta"`
}
