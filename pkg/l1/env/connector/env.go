// Package connector sets up the Connector clients use to reach L1 nodes.
package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/cec.go/pkg/l1/comm/stream"
	"github.com/robotalks/cec.go/pkg/l1/comm/websocket"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL specifies the URL of the node registry.
	// e.g. mqtt://host:port/topic-prefix, ws://host:port/l1 or tcp://host:port
	RegistryURL string
}

var defaultConfig = Config{
	Ref:         l1.ControllerRef{Type: "cec"},
	RegistryURL: "mqtt://localhost:1883/cec/",
}

func init() {
	if val := os.Getenv("CEC_NODE_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("CEC_NODE_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("CEC_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "node-type", defaultConfig.Ref.Type, "Node type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "node-id", defaultConfig.Ref.ID, "Node ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "Node registry URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "mqtts", "ssl":
		return mqtt.NewConnector(c.RegistryURL)
	case "ws", "wss":
		return websocket.NewConnector(c.RegistryURL)
	case "tcp":
		return stream.NewConnector(c.RegistryURL, c.Ref.Type)
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Connect directly connects to the node.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	ref := c.Ref
	if ref.ID == "" {
		if ref, err = discoverOne(ctx, connector, ref.Type); err != nil {
			return nil, err
		}
	}
	return connector.Connect(ctx, ref)
}

// MustConnect connects to the node or fails.
func (c *Config) MustConnect(ctx context.Context) l1.ControllerConn {
	conn, err := c.Connect(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// discoverOne picks the node when exactly one of the type is registered.
func discoverOne(ctx context.Context, connector l1.Connector, typ string) (l1.ControllerRef, error) {
	infos, err := connector.Discover(ctx)
	if err != nil {
		return l1.ControllerRef{}, err
	}
	var found []l1.ControllerRef
	for _, info := range infos {
		if typ == "" || info.Ref.Type == typ {
			found = append(found, info.Ref)
		}
	}
	switch len(found) {
	case 0:
		return l1.ControllerRef{}, fmt.Errorf("no %s node found", typ)
	case 1:
		return found[0], nil
	}
	return l1.ControllerRef{}, fmt.Errorf("%d %s nodes found, specify node id", len(found), typ)
}
