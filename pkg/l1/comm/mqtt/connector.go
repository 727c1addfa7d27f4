package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/comm"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	brokerURL string
}

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, _, err := ClientOptionsFromURL(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		brokerURL:       brokerURL,
	}, nil
}

func (c *Connector) connect() (*Queue, error) {
	q, err := NewQueueFromURL(c.brokerURL)
	if err != nil {
		return nil, err
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return q, nil
}

// Discover implements l1.Connector by collecting the retained metadata.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	q, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer q.Close()

	infoCh := make(chan l1.ControllerInfo, 16)
	sub := q.Sub("+/+/meta", func(topic string, payload []byte) {
		info, ok := parseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case infoCh <- info:
		case <-ctx.Done():
		}
	})
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur <= 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.NewTimer(dur)
	defer timeout.Stop()
	var res []l1.ControllerInfo
	for {
		select {
		case info := <-infoCh:
			res = append(res, info)
		case <-timeout.C:
			return res, nil
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}

func parseMeta(topic string, payload []byte) (info l1.ControllerInfo, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || len(payload) == 0 {
		return info, false
	}
	info.Ref = l1.ControllerRef{Type: items[0], ID: items[1]}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("mqtt: bad meta on %s: %v", topic, err)
	}
	return info, true
}

// Connect implements l1.Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	q, err := c.connect()
	if err != nil {
		return nil, err
	}
	conn := &ControllerConn{Queue: q}
	conn.Init(NewPacketReadWriter(q).ForConnector(ref))
	return conn, nil
}

// ControllerConn implements l1.ControllerConn using MQTT.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}

// Close implements l1.ControllerConn.
func (c *ControllerConn) Close() error {
	c.ControllerConn.Close()
	return c.Queue.Close()
}
