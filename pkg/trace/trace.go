// Package trace records controller events to a CBOR stream and reads them
// back. A trace starts with a header carrying the session ID.
package trace

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/robotalks/cec.go/pkg/cec"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	if encMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Sprintf("trace: encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Sprintf("trace: decoder mode: %v", err))
	}
}

// Header opens a trace.
type Header struct {
	Session string    `cbor:"1,keyasint"`
	Started time.Time `cbor:"2,keyasint"`
	Device  string    `cbor:"3,keyasint,omitempty"`
}

// Record is one controller event.
type Record struct {
	Time   time.Time     `cbor:"1,keyasint"`
	Kind   cec.EventKind `cbor:"2,keyasint"`
	Frame  []byte        `cbor:"3,keyasint,omitempty"`
	Code   uint8         `cbor:"4,keyasint,omitempty"`
	Status uint8         `cbor:"5,keyasint,omitempty"`
	Addr   uint8         `cbor:"6,keyasint,omitempty"`
	Bitmap uint16        `cbor:"7,keyasint,omitempty"`
}

// RecordOf converts an event.
func RecordOf(t time.Time, ev cec.Event) Record {
	rec := Record{Time: t, Kind: ev.Kind()}
	switch e := ev.(type) {
	case cec.RxMsg:
		rec.Frame = e.Msg
	case cec.RxMsgRespond:
		rec.Frame = e.Msg
	case cec.TxTimeout:
		rec.Code = uint8(e.Code)
	case cec.TxArbLost:
		rec.Code = uint8(e.Code)
	case cec.LogAddrAlloc:
		rec.Status, rec.Addr, rec.Code, rec.Bitmap = uint8(e.Status), e.Addr, uint8(e.Code), e.Taken
	case cec.LogAddrList:
		rec.Code, rec.Bitmap = uint8(e.Code), e.Bitmap
	}
	return rec
}

// Event rebuilds the recorded event.
func (r *Record) Event() (cec.Event, error) {
	switch r.Kind {
	case cec.EventRxMsg:
		return cec.RxMsg{Msg: cec.Message(r.Frame)}, nil
	case cec.EventRxMsgRespond:
		return cec.RxMsgRespond{Msg: cec.Message(r.Frame)}, nil
	case cec.EventTxDone:
		return cec.TxDone{}, nil
	case cec.EventTxTimeout:
		return cec.TxTimeout{Code: cec.ErrCode(r.Code)}, nil
	case cec.EventTxArbLost:
		return cec.TxArbLost{Code: cec.ErrCode(r.Code)}, nil
	case cec.EventLogAddrAlloc:
		return cec.LogAddrAlloc{
			Status: cec.AllocStatus(r.Status),
			Addr:   r.Addr,
			Code:   cec.ErrCode(r.Code),
			Taken:  r.Bitmap,
		}, nil
	case cec.EventLogAddrList:
		return cec.LogAddrList{Bitmap: r.Bitmap, Code: cec.ErrCode(r.Code)}, nil
	}
	return nil, fmt.Errorf("unknown event kind %d", int(r.Kind))
}

// Recorder implements cec.Notifier by appending every event to a trace
// before passing it on to Next.
type Recorder struct {
	Next cec.Notifier

	header Header
	enc    *cbor.Encoder
	now    func() time.Time
	lock   sync.Mutex
	err    error
}

// NewRecorder starts a trace on w.
func NewRecorder(w io.Writer, device string, next cec.Notifier) (*Recorder, error) {
	r := &Recorder{
		Next: next,
		enc:  encMode.NewEncoder(w),
		now:  time.Now,
	}
	r.header = Header{Session: uuid.New().String(), Started: r.now(), Device: device}
	if err := r.enc.Encode(&r.header); err != nil {
		return nil, err
	}
	return r, nil
}

// Session returns the trace session ID.
func (r *Recorder) Session() string {
	return r.header.Session
}

// Err returns the first write error. Recording stops after it.
func (r *Recorder) Err() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.err
}

// Notify implements cec.Notifier.
func (r *Recorder) Notify(ev cec.Event) {
	r.lock.Lock()
	if r.err == nil {
		rec := RecordOf(r.now(), ev)
		r.err = r.enc.Encode(&rec)
	}
	r.lock.Unlock()
	if r.Next != nil {
		r.Next.Notify(ev)
	}
}

// Reader decodes a trace.
type Reader struct {
	Header Header

	dec *cbor.Decoder
}

// NewReader reads the trace header from r.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{dec: decMode.NewDecoder(r)}
	if err := rd.dec.Decode(&rd.Header); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("trace header: %w", err)
	}
	return rd, nil
}

// Next returns the next record, io.EOF at the end of the trace.
func (r *Reader) Next() (*Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
