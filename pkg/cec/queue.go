package cec

// TxBufferLen is the capacity in bytes of the transmit queue, including
// the one byte length prefix of each entry.
const TxBufferLen = 30

// ring is a fixed-capacity byte ring buffer. push is all-or-nothing.
type ring struct {
	buf  [TxBufferLen]byte
	head int
	size int
}

func (r *ring) free() int {
	return len(r.buf) - r.size
}

func (r *ring) push(p ...byte) bool {
	if len(p) > r.free() {
		return false
	}
	tail := (r.head + r.size) % len(r.buf)
	for _, b := range p {
		r.buf[tail] = b
		tail = (tail + 1) % len(r.buf)
	}
	r.size += len(p)
	return true
}

func (r *ring) pop(p []byte) int {
	n := len(p)
	if n > r.size {
		n = r.size
	}
	for i := 0; i < n; i++ {
		p[i] = r.buf[r.head]
		r.head = (r.head + 1) % len(r.buf)
	}
	r.size -= n
	return n
}

func (r *ring) reset() {
	r.head, r.size = 0, 0
}

// TxQueue buffers frames waiting for the transmitter in FIFO order.
// Entries are stored length-prefixed and may wrap past the end of the
// underlying buffer.
type TxQueue struct {
	ring  ring
	count int
}

// Enqueue appends a frame. On failure nothing is written.
func (q *TxQueue) Enqueue(msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if q.ring.free() < len(msg)+1 {
		return ErrQueueFull
	}
	q.ring.push(byte(len(msg)))
	q.ring.push(msg...)
	q.count++
	return nil
}

// Dequeue removes the oldest frame.
func (q *TxQueue) Dequeue() (Message, bool) {
	if q.count == 0 {
		return nil, false
	}
	var prefix [1]byte
	q.ring.pop(prefix[:])
	msg := make(Message, prefix[0])
	q.ring.pop(msg)
	q.count--
	return msg, true
}

// Len is the number of queued frames.
func (q *TxQueue) Len() int {
	return q.count
}

// Used is the number of buffer bytes in use.
func (q *TxQueue) Used() int {
	return q.ring.size
}

// Clear drops all queued frames.
func (q *TxQueue) Clear() {
	q.ring.reset()
	q.count = 0
}
