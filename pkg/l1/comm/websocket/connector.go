package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/websocket"

	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/comm"
)

// Connector implements l1.Connector for a single node at a websocket URL
// such as ws://host:8080/l1.
type Connector struct {
	URL string
}

// NewConnector creates a Connector.
func NewConnector(nodeURL string) (*Connector, error) {
	u, err := url.Parse(nodeURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("websocket URL expected: %q", nodeURL)
	}
	if u.Path == "" {
		u.Path = DefaultPath
	}
	return &Connector{URL: u.String()}, nil
}

// Discover implements l1.Connector by fetching the node metadata.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	metaURL := strings.Replace(c.URL, "ws", "http", 1) + "/meta"
	req, err := http.NewRequest(http.MethodGet, metaURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", metaURL, resp.Status)
	}
	var doc metaDoc
	if err = json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return []l1.ControllerInfo{{Ref: l1.ControllerRef{Type: doc.Type, ID: doc.ID}, Meta: doc.Meta}}, nil
}

// Connect implements l1.Connector. The node serves a single controller
// and ref is only checked when set.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	if ref.IsValid() {
		infos, err := c.Discover(ctx)
		if err != nil {
			return nil, err
		}
		if infos[0].Ref != ref {
			return nil, fmt.Errorf("%s serves %s, not %s", c.URL, infos[0].Ref.Name(), ref.Name())
		}
	}
	origin := strings.Replace(c.URL, "ws", "http", 1)
	ws, err := websocket.Dial(c.URL, "", origin)
	if err != nil {
		return nil, err
	}
	ws.PayloadType = websocket.BinaryFrame
	conn := &comm.ControllerConn{}
	conn.Init(New(ws))
	return conn, nil
}
