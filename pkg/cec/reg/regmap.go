package reg

// Register addresses of the CEC block.
const (
	Ctrl      uint8 = 0x00 // enable, soft reset
	LogAddr0  uint8 = 0x01 // logical address slot 0
	LogAddr1  uint8 = 0x02 // logical address slot 1
	IntStatus uint8 = 0x04 // interrupt causes, write 1 to clear
	IntMask   uint8 = 0x05 // interrupt enable
	TxCtrl    uint8 = 0x06
	TxLen     uint8 = 0x07
	TxStatus  uint8 = 0x08 // NACK retry count of the last frame
	RxReady   uint8 = 0x09 // one bit per receive slot
	TxBuf     uint8 = 0x10 // header followed by up to 15 operands
	RxBase    uint8 = 0x20 // first receive slot window

	RxSlotStride uint8 = 0x20
	RxLenOffset  uint8 = 0x10
	RxTagOffset  uint8 = 0x11
)

// Interrupt status bits.
const (
	IntTxDone  uint8 = 0x01 // frame acknowledged
	IntTxNack  uint8 = 0x02 // no acknowledge after hardware retries
	IntArbLost uint8 = 0x04 // lost arbitration to another initiator
	IntRxFrame uint8 = 0x08 // a receive slot became ready
	IntAll     uint8 = IntTxDone | IntTxNack | IntArbLost | IntRxFrame
)

// Logical address slot bits.
const (
	LogAddrMask   uint8 = 0x0f
	LogAddrEnable uint8 = 0x80
)

// Fields of the register map.
var (
	CtrlEnable    = Field{Addr: Ctrl, Mask: 0x01, Shift: 0}
	CtrlReset     = Field{Addr: Ctrl, Mask: 0x02, Shift: 1}
	TxEnable      = Field{Addr: TxCtrl, Mask: 0x01, Shift: 0}
	TxLength      = Field{Addr: TxLen, Mask: 0x1f, Shift: 0}
	TxNackRetries = Field{Addr: TxStatus, Mask: 0x0f, Shift: 0}
)

// RxSlotAddr returns the first register of a receive slot window.
func RxSlotAddr(slot int) uint8 {
	return RxBase + uint8(slot)*RxSlotStride
}

// RxLength is the frame length field of a receive slot.
func RxLength(slot int) Field {
	return Field{Addr: RxSlotAddr(slot) + RxLenOffset, Mask: 0x1f, Shift: 0}
}

// RxTag is the frame order tag of a receive slot.
func RxTag(slot int) Field {
	return Field{Addr: RxSlotAddr(slot) + RxTagOffset, Mask: 0x03, Shift: 0}
}

// RxReadyFlag is the ready flag of a receive slot.
func RxReadyFlag(slot int) Field {
	return Field{Addr: RxReady, Mask: 1 << uint(slot), Shift: uint8(slot)}
}

// LogAddrReg returns the register of a logical address slot.
func LogAddrReg(slot int) uint8 {
	return LogAddr0 + uint8(slot)
}
