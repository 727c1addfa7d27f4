package comm

// Handshake bytes. Each is followed by the sequence number its sender will
// use for the next frame.
const (
	syncREQ byte = 0xff
	syncACK byte = 0xfe
)

// LinkState is the synchronization state of the link.
type LinkState int

// Link state bits.
const (
	LinkSyncing   LinkState = 0
	LinkReady     LinkState = 0x01
	LinkReceiving LinkState = 0x02
)

// Ready reports whether frames can be exchanged.
func (s LinkState) Ready() bool {
	return s&LinkReady != 0
}

// Receiving reports whether a handshake or a frame is partially received.
func (s LinkState) Receiving() bool {
	return s&LinkReceiving != 0
}

// TimerAction tells the link what to do with the resync timer.
type TimerAction int

// Timer actions.
const (
	TimerKeep TimerAction = iota
	TimerRestart
	TimerStop
)

// Step is the outcome of feeding the decoder.
type Step struct {
	// Sync is a handshake byte to send back, followed by the own sequence
	// number.
	Sync  byte
	State LinkState
	Frame *Frame
}

// Timer returns what to do with the resync timer after the step.
func (s Step) Timer() TimerAction {
	switch {
	case s.State.Receiving() || s.Sync == syncREQ:
		return TimerRestart
	case s.State.Ready():
		return TimerStop
	}
	return TimerKeep
}

type phase int

const (
	phaseSync    phase = iota // REQ sent, waiting for REQ or ACK
	phaseReqSeq               // REQ received, waiting for its seq
	phaseAckSeq               // ACK received, waiting for its seq
	phaseIdle                 // synchronized, waiting for a frame seq
	phaseIdleAck              // ACK received while synchronized
	phaseCode
	phaseSize
	phaseData
)

// Decoder is the receive side state machine of the link.
type Decoder struct {
	peer  Seq
	phase phase
	frame *Frame
	got   int
}

// State returns the current link state.
func (d *Decoder) State() LinkState {
	switch {
	case d.phase == phaseSync:
		return LinkSyncing
	case d.phase == phaseIdle:
		return LinkReady
	case d.phase > phaseIdle:
		return LinkReady | LinkReceiving
	}
	return LinkSyncing | LinkReceiving
}

// Resync drops any partial frame and restarts the handshake.
func (d *Decoder) Resync() Step {
	d.frame = nil
	return d.step(d.resync())
}

// Feed consumes one received byte.
func (d *Decoder) Feed(b byte) Step {
	if d.phase <= phaseAckSeq {
		return d.step(d.feedSync(b))
	}
	return d.feedFrame(b)
}

// Expire tells the decoder the resync timer fired.
func (d *Decoder) Expire() Step {
	if d.phase == phaseIdle {
		return d.step(0)
	}
	return d.step(d.resync())
}

func (d *Decoder) step(sync byte) Step {
	return Step{Sync: sync, State: d.State()}
}

func (d *Decoder) resync() byte {
	d.phase = phaseSync
	return syncREQ
}

func (d *Decoder) feedSync(b byte) byte {
	switch d.phase {
	case phaseSync:
		if b == syncREQ {
			d.phase = phaseReqSeq
		} else if b == syncACK {
			d.phase = phaseAckSeq
		}
		return 0
	case phaseReqSeq, phaseAckSeq:
		if !Seq(b).Valid() {
			return d.resync()
		}
		acked := d.phase == phaseReqSeq
		d.peer, d.phase = Seq(b), phaseIdle
		if acked {
			return syncACK
		}
		return 0
	}
	return 0
}

func (d *Decoder) feedFrame(b byte) Step {
	switch d.phase {
	case phaseIdle:
		switch {
		case b == syncREQ:
			d.phase = phaseReqSeq
		case b == syncACK:
			d.phase = phaseIdleAck
		case Seq(b) != d.peer:
			return d.step(d.resync())
		default:
			d.frame = &Frame{Seq: d.peer}
			d.peer = d.peer.Next()
			d.phase = phaseCode
		}
	case phaseIdleAck:
		if Seq(b) != d.peer {
			return d.step(d.resync())
		}
		d.phase = phaseIdle
	case phaseCode:
		d.frame.Code = b & codeMask
		switch size := (b & sizeMask) >> 4; size {
		case 0:
			return d.complete()
		case sizeExt:
			d.phase = phaseSize
		default:
			d.expect(int(size))
		}
	case phaseSize:
		if b > MaxFrameData {
			return d.step(d.resync())
		}
		if b == 0 {
			return d.complete()
		}
		d.expect(int(b))
	case phaseData:
		d.frame.Data[d.got] = b
		if d.got++; d.got == len(d.frame.Data) {
			return d.complete()
		}
	}
	return d.step(0)
}

func (d *Decoder) expect(size int) {
	d.frame.Data, d.got = make([]byte, size), 0
	d.phase = phaseData
}

func (d *Decoder) complete() Step {
	d.phase = phaseIdle
	st := d.step(0)
	st.Frame, d.frame = d.frame, nil
	return st
}
