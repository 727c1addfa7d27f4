package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/cec.go/pkg/framework"
)

// TypeIDs of CEC messages.
const (
	CecSendTypeID           uint32 = GroupCEC | 0x0001
	CecSendReplyTypeID      uint32 = CecSendTypeID | TypeIDMaskReply
	CecResendTypeID         uint32 = GroupCEC | 0x0002
	CecEnableTypeID         uint32 = GroupCEC | 0x0003
	CecSetLogicalAddrTypeID uint32 = GroupCEC | 0x0004
	CecAllocateTypeID       uint32 = GroupCEC | 0x0005
	CecScanTypeID           uint32 = GroupCEC | 0x0006
	CecStatusQueryTypeID    uint32 = GroupCEC | 0x0007
	CecStatusTypeID         uint32 = CecStatusQueryTypeID | TypeIDMaskReply
	CecClearQueueTypeID     uint32 = GroupCEC | 0x0008
	CecRxEventTypeID        uint32 = TypeIDKindEvent | GroupCEC | 0x0001
	CecTxEventTypeID        uint32 = TypeIDKindEvent | GroupCEC | 0x0002
	CecAllocEventTypeID     uint32 = TypeIDKindEvent | GroupCEC | 0x0003
	CecScanEventTypeID      uint32 = TypeIDKindEvent | GroupCEC | 0x0004
)

// Results carried by CecTxEvent.
const (
	TxResultDone    = "done"
	TxResultTimeout = "timeout"
	TxResultArbLost = "arblost"
)

func init() {
	Register(
		(*CecSend)(nil),
		(*CecSendReply)(nil),
		(*CecResend)(nil),
		(*CecEnable)(nil),
		(*CecSetLogicalAddr)(nil),
		(*CecAllocate)(nil),
		(*CecScan)(nil),
		(*CecStatusQuery)(nil),
		(*CecStatus)(nil),
		(*CecClearQueue)(nil),
		(*CecRxEvent)(nil),
		(*CecTxEvent)(nil),
		(*CecAllocEvent)(nil),
		(*CecScanEvent)(nil),
	)
}

// CecLogicalAddr is a logical address slot in CecStatus.
type CecLogicalAddr struct {
	Addr    uint32 `protobuf:"varint,1,opt,name=addr,proto3" json:"addr,omitempty"`
	Enabled bool   `protobuf:"varint,2,opt,name=enabled,proto3" json:"enabled,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *CecLogicalAddr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecLogicalAddr) Reset() { *m = CecLogicalAddr{} }

// String implements proto.Message.
func (m *CecLogicalAddr) String() string { return proto.CompactTextString(m) }

// CecSend transmits a frame, or queues it behind the one in flight when Queue is set.
type CecSend struct {
	Frame []byte `protobuf:"bytes,1,opt,name=frame,proto3" json:"frame,omitempty"`
	Queue bool   `protobuf:"varint,2,opt,name=queue,proto3" json:"queue,omitempty"`
}

// NewMessage implements Message.
func (m *CecSend) NewMessage() fx.Message { return &CecSend{} }

// TypeID implements SerializableMessage.
func (m *CecSend) TypeID() uint32 { return CecSendTypeID }

// Serializable implements SerializableMessage.
func (m *CecSend) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecSend) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecSend) Reset() { *m = CecSend{} }

// String implements proto.Message.
func (m *CecSend) String() string { return proto.CompactTextString(m) }

// CecSendReply is the response for CecSend.
type CecSendReply struct {
	Queued bool `protobuf:"varint,1,opt,name=queued,proto3" json:"queued,omitempty"`
}

// NewMessage implements Message.
func (m *CecSendReply) NewMessage() fx.Message { return &CecSendReply{} }

// TypeID implements SerializableMessage.
func (m *CecSendReply) TypeID() uint32 { return CecSendReplyTypeID }

// Serializable implements SerializableMessage.
func (m *CecSendReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecSendReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecSendReply) Reset() { *m = CecSendReply{} }

// String implements proto.Message.
func (m *CecSendReply) String() string { return proto.CompactTextString(m) }

// CecResend retransmits the frame left in the transmit buffer.
type CecResend struct {
}

// NewMessage implements Message.
func (m *CecResend) NewMessage() fx.Message { return &CecResend{} }

// TypeID implements SerializableMessage.
func (m *CecResend) TypeID() uint32 { return CecResendTypeID }

// Serializable implements SerializableMessage.
func (m *CecResend) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecResend) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecResend) Reset() { *m = CecResend{} }

// String implements proto.Message.
func (m *CecResend) String() string { return proto.CompactTextString(m) }

// CecEnable turns bus participation on or off.
type CecEnable struct {
	On bool `protobuf:"varint,1,opt,name=on,proto3" json:"on,omitempty"`
}

// NewMessage implements Message.
func (m *CecEnable) NewMessage() fx.Message { return &CecEnable{} }

// TypeID implements SerializableMessage.
func (m *CecEnable) TypeID() uint32 { return CecEnableTypeID }

// Serializable implements SerializableMessage.
func (m *CecEnable) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecEnable) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecEnable) Reset() { *m = CecEnable{} }

// String implements proto.Message.
func (m *CecEnable) String() string { return proto.CompactTextString(m) }

// CecSetLogicalAddr programs a logical address slot.
type CecSetLogicalAddr struct {
	Addr   uint32 `protobuf:"varint,1,opt,name=addr,proto3" json:"addr,omitempty"`
	Slot   uint32 `protobuf:"varint,2,opt,name=slot,proto3" json:"slot,omitempty"`
	Enable bool   `protobuf:"varint,3,opt,name=enable,proto3" json:"enable,omitempty"`
}

// NewMessage implements Message.
func (m *CecSetLogicalAddr) NewMessage() fx.Message { return &CecSetLogicalAddr{} }

// TypeID implements SerializableMessage.
func (m *CecSetLogicalAddr) TypeID() uint32 { return CecSetLogicalAddrTypeID }

// Serializable implements SerializableMessage.
func (m *CecSetLogicalAddr) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecSetLogicalAddr) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecSetLogicalAddr) Reset() { *m = CecSetLogicalAddr{} }

// String implements proto.Message.
func (m *CecSetLogicalAddr) String() string { return proto.CompactTextString(m) }

// CecAllocate claims the first free logical address among Candidates.
// Without candidates the defaults of the device type are used.
type CecAllocate struct {
	Candidates []byte `protobuf:"bytes,1,opt,name=candidates,proto3" json:"candidates,omitempty"`
}

// NewMessage implements Message.
func (m *CecAllocate) NewMessage() fx.Message { return &CecAllocate{} }

// TypeID implements SerializableMessage.
func (m *CecAllocate) TypeID() uint32 { return CecAllocateTypeID }

// Serializable implements SerializableMessage.
func (m *CecAllocate) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecAllocate) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecAllocate) Reset() { *m = CecAllocate{} }

// String implements proto.Message.
func (m *CecAllocate) String() string { return proto.CompactTextString(m) }

// CecScan polls all logical addresses.
type CecScan struct {
}

// NewMessage implements Message.
func (m *CecScan) NewMessage() fx.Message { return &CecScan{} }

// TypeID implements SerializableMessage.
func (m *CecScan) TypeID() uint32 { return CecScanTypeID }

// Serializable implements SerializableMessage.
func (m *CecScan) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecScan) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecScan) Reset() { *m = CecScan{} }

// String implements proto.Message.
func (m *CecScan) String() string { return proto.CompactTextString(m) }

// CecStatusQuery queries the controller status.
type CecStatusQuery struct {
}

// NewMessage implements Message.
func (m *CecStatusQuery) NewMessage() fx.Message { return &CecStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *CecStatusQuery) TypeID() uint32 { return CecStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *CecStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecStatusQuery) Reset() { *m = CecStatusQuery{} }

// String implements proto.Message.
func (m *CecStatusQuery) String() string { return proto.CompactTextString(m) }

// CecStatus is the response for CecStatusQuery.
type CecStatus struct {
	Enabled      bool              `protobuf:"varint,1,opt,name=enabled,proto3" json:"enabled,omitempty"`
	TxBusy       bool              `protobuf:"varint,2,opt,name=tx_busy,json=txBusy,proto3" json:"tx_busy,omitempty"`
	Queued       uint32            `protobuf:"varint,3,opt,name=queued,proto3" json:"queued,omitempty"`
	Operation    string            `protobuf:"bytes,4,opt,name=operation,proto3" json:"operation,omitempty"`
	Retries      uint32            `protobuf:"varint,5,opt,name=retries,proto3" json:"retries,omitempty"`
	LogicalAddrs []*CecLogicalAddr `protobuf:"bytes,6,rep,name=logical_addrs,json=logicalAddrs,proto3" json:"logical_addrs,omitempty"`
	PhysicalAddr uint32            `protobuf:"varint,7,opt,name=physical_addr,json=physicalAddr,proto3" json:"physical_addr,omitempty"`
}

// NewMessage implements Message.
func (m *CecStatus) NewMessage() fx.Message { return &CecStatus{} }

// TypeID implements SerializableMessage.
func (m *CecStatus) TypeID() uint32 { return CecStatusTypeID }

// Serializable implements SerializableMessage.
func (m *CecStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecStatus) Reset() { *m = CecStatus{} }

// String implements proto.Message.
func (m *CecStatus) String() string { return proto.CompactTextString(m) }

// CecClearQueue drops the frames waiting for transmission.
type CecClearQueue struct {
}

// NewMessage implements Message.
func (m *CecClearQueue) NewMessage() fx.Message { return &CecClearQueue{} }

// TypeID implements SerializableMessage.
func (m *CecClearQueue) TypeID() uint32 { return CecClearQueueTypeID }

// Serializable implements SerializableMessage.
func (m *CecClearQueue) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecClearQueue) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecClearQueue) Reset() { *m = CecClearQueue{} }

// String implements proto.Message.
func (m *CecClearQueue) String() string { return proto.CompactTextString(m) }

// CecRxEvent is a frame received from the bus. Respond is set when the
// frame is a request addressed to this node.
type CecRxEvent struct {
	Frame   []byte `protobuf:"bytes,1,opt,name=frame,proto3" json:"frame,omitempty"`
	Respond bool   `protobuf:"varint,2,opt,name=respond,proto3" json:"respond,omitempty"`
}

// NewMessage implements Message.
func (m *CecRxEvent) NewMessage() fx.Message { return &CecRxEvent{} }

// TypeID implements SerializableMessage.
func (m *CecRxEvent) TypeID() uint32 { return CecRxEventTypeID }

// Serializable implements SerializableMessage.
func (m *CecRxEvent) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecRxEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecRxEvent) Reset() { *m = CecRxEvent{} }

// String implements proto.Message.
func (m *CecRxEvent) String() string { return proto.CompactTextString(m) }

// CecTxEvent is the outcome of a transmission: done, timeout or arblost.
type CecTxEvent struct {
	Result string `protobuf:"bytes,1,opt,name=result,proto3" json:"result,omitempty"`
	Code   uint32 `protobuf:"varint,2,opt,name=code,proto3" json:"code,omitempty"`
}

// NewMessage implements Message.
func (m *CecTxEvent) NewMessage() fx.Message { return &CecTxEvent{} }

// TypeID implements SerializableMessage.
func (m *CecTxEvent) TypeID() uint32 { return CecTxEventTypeID }

// Serializable implements SerializableMessage.
func (m *CecTxEvent) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecTxEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecTxEvent) Reset() { *m = CecTxEvent{} }

// String implements proto.Message.
func (m *CecTxEvent) String() string { return proto.CompactTextString(m) }

// CecAllocEvent completes CecAllocate.
type CecAllocEvent struct {
	Status string `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
	Addr   uint32 `protobuf:"varint,2,opt,name=addr,proto3" json:"addr,omitempty"`
	Code   uint32 `protobuf:"varint,3,opt,name=code,proto3" json:"code,omitempty"`
	Taken  uint32 `protobuf:"varint,4,opt,name=taken,proto3" json:"taken,omitempty"`
}

// NewMessage implements Message.
func (m *CecAllocEvent) NewMessage() fx.Message { return &CecAllocEvent{} }

// TypeID implements SerializableMessage.
func (m *CecAllocEvent) TypeID() uint32 { return CecAllocEventTypeID }

// Serializable implements SerializableMessage.
func (m *CecAllocEvent) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecAllocEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecAllocEvent) Reset() { *m = CecAllocEvent{} }

// String implements proto.Message.
func (m *CecAllocEvent) String() string { return proto.CompactTextString(m) }

// CecScanEvent completes CecScan.
type CecScanEvent struct {
	Bitmap uint32 `protobuf:"varint,1,opt,name=bitmap,proto3" json:"bitmap,omitempty"`
	Code   uint32 `protobuf:"varint,2,opt,name=code,proto3" json:"code,omitempty"`
}

// NewMessage implements Message.
func (m *CecScanEvent) NewMessage() fx.Message { return &CecScanEvent{} }

// TypeID implements SerializableMessage.
func (m *CecScanEvent) TypeID() uint32 { return CecScanEventTypeID }

// Serializable implements SerializableMessage.
func (m *CecScanEvent) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *CecScanEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *CecScanEvent) Reset() { *m = CecScanEvent{} }

// String implements proto.Message.
func (m *CecScanEvent) String() string { return proto.CompactTextString(m) }
