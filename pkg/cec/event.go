package cec

import "fmt"

// EventKind enumerates the notifications raised by the controller.
type EventKind int

// Event kinds.
const (
	EventRxMsg EventKind = iota + 1
	EventTxDone
	EventTxTimeout
	EventTxArbLost
	EventLogAddrAlloc
	EventLogAddrList
	EventRxMsgRespond
)

var eventKindNames = map[EventKind]string{
	EventRxMsg:        "RxMsg",
	EventTxDone:       "TxDone",
	EventTxTimeout:    "TxTimeout",
	EventTxArbLost:    "TxArbLost",
	EventLogAddrAlloc: "LogAddrAlloc",
	EventLogAddrList:  "LogAddrList",
	EventRxMsgRespond: "RxMsgRespond",
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// ErrCode distinguishes terminal transmit failures.
type ErrCode uint8

// Error codes carried by terminal events.
const (
	CodeNone    ErrCode = 0
	CodeTimeout ErrCode = 1 // never acknowledged
	CodeArbLost ErrCode = 2 // arbitration lost on every retry
)

// String implements fmt.Stringer.
func (c ErrCode) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeTimeout:
		return "timeout"
	case CodeArbLost:
		return "arbitration lost"
	}
	return fmt.Sprintf("ErrCode(%d)", uint8(c))
}

// Event is one of RxMsg, RxMsgRespond, TxDone, TxTimeout, TxArbLost,
// LogAddrAlloc or LogAddrList.
type Event interface {
	Kind() EventKind
}

// RxMsg is a frame received from the bus.
type RxMsg struct {
	Msg Message
}

// RxMsgRespond is a received request addressed to this device which
// requires a reply from it.
type RxMsgRespond struct {
	Msg Message
}

// TxDone reports the in-flight frame was acknowledged.
type TxDone struct{}

// TxTimeout reports the in-flight frame was not acknowledged.
type TxTimeout struct {
	Code ErrCode
}

// TxArbLost reports the in-flight frame lost arbitration on every retry.
type TxArbLost struct {
	Code ErrCode
}

// AllocStatus is the outcome of a logical address claim.
type AllocStatus uint8

// Claim outcomes.
const (
	AllocOK         AllocStatus = iota // Addr is free and claimed
	AllocNoFreeAddr                    // every candidate answered the poll
	AllocFailed                        // polling aborted, see Code
)

// String implements fmt.Stringer.
func (s AllocStatus) String() string {
	switch s {
	case AllocOK:
		return "ok"
	case AllocNoFreeAddr:
		return "no free address"
	case AllocFailed:
		return "failed"
	}
	return fmt.Sprintf("AllocStatus(%d)", uint8(s))
}

// LogAddrAlloc completes AllocateLogicalAddr.
type LogAddrAlloc struct {
	Status AllocStatus
	Addr   uint8
	Code   ErrCode
	// Taken has bit n set for every candidate n that acknowledged.
	Taken uint16
}

// LogAddrList completes ScanLogicalAddrs.
type LogAddrList struct {
	// Bitmap has bit n set when logical address n is in use.
	Bitmap uint16
	Code   ErrCode
}

// InUse reports whether addr acknowledged its poll.
func (l LogAddrList) InUse(addr uint8) bool {
	return l.Bitmap&(1<<(addr&0x0f)) != 0
}

// Kind implements Event.
func (RxMsg) Kind() EventKind { return EventRxMsg }

// Kind implements Event.
func (RxMsgRespond) Kind() EventKind { return EventRxMsgRespond }

// Kind implements Event.
func (TxDone) Kind() EventKind { return EventTxDone }

// Kind implements Event.
func (TxTimeout) Kind() EventKind { return EventTxTimeout }

// Kind implements Event.
func (TxArbLost) Kind() EventKind { return EventTxArbLost }

// Kind implements Event.
func (LogAddrAlloc) Kind() EventKind { return EventLogAddrAlloc }

// Kind implements Event.
func (LogAddrList) Kind() EventKind { return EventLogAddrList }

// Notifier receives controller events. It is called from the context that
// drives OnInterrupt and must not call back into the controller.
type Notifier interface {
	Notify(Event)
}

// NotifyFunc is the func form of Notifier.
type NotifyFunc func(Event)

// Notify implements Notifier.
func (f NotifyFunc) Notify(ev Event) {
	f(ev)
}

// Events collects notifications in arrival order.
type Events []Event

// Notify implements Notifier.
func (e *Events) Notify(ev Event) {
	*e = append(*e, ev)
}

// Take returns the collected events and empties the list.
func (e *Events) Take() []Event {
	evs := *e
	*e = nil
	return evs
}
