package l1

import (
	"context"

	fx "github.com/robotalks/cec.go/pkg/framework"
)

// Registrar publishes a node to a registry and delivers the commands sent
// to it as CommandMsg.
type Registrar interface {
	// SendEvent sends an event to all connected clients.
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command to be processed.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandMsg wraps a Command as a Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef is a reference to a node.
type ControllerRef struct {
	// Type is the node type, e.g. "cec".
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name is the topic prefix of the node.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates ControllerRef is valid.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta is published by a node when it comes online.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo provides information of a node.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by clients to reach nodes.
type Connector interface {
	// Discover enumerates registered nodes.
	Discover(context.Context) ([]ControllerInfo, error)
	// Connect connects to the specified node.
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a node.
type ControllerConn interface {
	// DoCommand sends a command.
	DoCommand(fx.Message) CommandFuture
	// Events delivers the events published by the node.
	Events() <-chan fx.Message
	// Close disconnects.
	Close() error
}

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}

// Wait blocks for the result of f.
func Wait(ctx context.Context, f CommandFuture) (fx.Message, error) {
	select {
	case r := <-f.ResultChan():
		return r.Msg, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
