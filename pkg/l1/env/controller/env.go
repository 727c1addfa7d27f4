// Package controller sets up the registrars an L1 node publishes through.
package controller

import (
	"flag"
	"fmt"
	"log"
	"os"

	fx "github.com/robotalks/cec.go/pkg/framework"
	"github.com/robotalks/cec.go/pkg/l1"
	"github.com/robotalks/cec.go/pkg/l1/comm"
	"github.com/robotalks/cec.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/cec.go/pkg/l1/comm/stream"
	"github.com/robotalks/cec.go/pkg/l1/comm/websocket"
	"github.com/robotalks/cec.go/pkg/l1/env"
)

// Config provides common options to setup an env for L1 nodes.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// ListenAddr enables the websocket registrar, e.g. :8080
	ListenAddr string
	// TCPListenAddr enables the length-prefixed TCP registrar.
	TCPListenAddr string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/cec/",
}

func init() {
	if val, ok := os.LookupEnv("CEC_MQTT_URL"); ok {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("CEC_LISTEN"); val != "" {
		defaultConfig.ListenAddr = val
	}
	defaultConfig.Info.Ref.ID = env.NodeID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.Type, "type", defaultConfig.Info.Ref.Type, "Node type")
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Node ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.ListenAddr, "listen", defaultConfig.ListenAddr, "Websocket listen address, empty to disable")
	flag.StringVar(&defaultConfig.TCPListenAddr, "listen-tcp", defaultConfig.TCPListenAddr, "TCP listen address, empty to disable")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the node.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the env for L1 nodes.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("node type and id must be specified")
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		env.Registrar.Add(reg)
		env.RegistryURLs = append(env.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.ListenAddr != "" {
		env.Registrar.Add(websocket.NewRegistrar(c.ListenAddr, c.Info))
		env.RegistryURLs = append(env.RegistryURLs, "ws://"+c.ListenAddr+websocket.DefaultPath)
	}
	if c.TCPListenAddr != "" {
		env.Registrar.Add(stream.NewRegistrar(c.TCPListenAddr))
		env.RegistryURLs = append(env.RegistryURLs, "tcp://"+c.TCPListenAddr)
	}
	if len(env.Registrar.Registrars) == 0 {
		return nil, fmt.Errorf("at least one registrar is required")
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(&comm.UnsupportedCommands{})
}
