package mqtt

import (
	"context"
	"encoding/json"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/comm"
)

// Registrar implements l1.Registrar using MQTT. The retained metadata is
// cleared by the broker through the will message when the node vanishes.
type Registrar struct {
	Queue *Queue
	Info  l1.ControllerInfo

	meta      []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, qos, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+metaTopic(info.Ref), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("cec:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue: NewQueue(opts, topicPrefix),
		Info:  info,
		meta:  meta,
	}
	r.Queue.QoS = qos
	r.Queue.OnConnect = func(q *Queue) {
		q.PubWith(metaTopic(r.Info.Ref), r.meta, 1, true)
	}
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

func metaTopic(ref l1.ControllerRef) string {
	return ref.Name() + "/meta"
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(r)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	if token := r.Queue.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	<-ctx.Done()
	r.Queue.PubWith(metaTopic(r.Info.Ref), nil, 1, true).Wait()
	return r.Queue.Close()
}
