package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/cec.go/pkg/framework"
)

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupCEC     uint32 = 0x00030000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs of generic replies.
const (
	CommandOKTypeID  uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID uint32 = GroupCommand | TypeIDMaskReply | 0x0001
)

func init() {
	Register((*CommandOK)(nil), (*CommandErr)(nil))
}

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandOK) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandOK) Reset() { *m = CommandOK{} }

// String implements proto.Message.
func (m *CommandOK) String() string { return proto.CompactTextString(m) }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{Message: err.Error()}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CommandErr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CommandErr) Reset() { *m = CommandErr{} }

// String implements proto.Message.
func (m *CommandErr) String() string { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }
