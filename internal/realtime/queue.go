package realtime

// fifo is the outbound message queue: an unbounded ring of serialized
// envelopes awaiting a live connection. Entries queued before an explicit
// Disconnect are retained for the next connection. Not safe for concurrent
// use; the supervisor guards it with its own mutex.
type fifo struct {
	buf   [][]byte
	head  int // read position
	tail  int // write position
	count int
}

func newFIFO() *fifo {
	return &fifo{buf: make([][]byte, 16)}
}

// push appends an entry at the tail, growing the ring when full.
func (q *fifo) push(data []byte) {
	if q.count == len(q.buf) {
		q.grow()
	}
	q.buf[q.tail] = data
	q.tail = (q.tail + 1) % len(q.buf)
	q.count++
}

// peek returns the head entry without removing it.
func (q *fifo) peek() ([]byte, bool) {
	if q.count == 0 {
		return nil, false
	}
	return q.buf[q.head], true
}

// pop removes and returns the head entry.
func (q *fifo) pop() ([]byte, bool) {
	if q.count == 0 {
		return nil, false
	}
	data := q.buf[q.head]
	q.buf[q.head] = nil // Clear reference for GC
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return data, true
}

func (q *fifo) len() int {
	return q.count
}

// grow doubles the ring capacity, compacting entries to the front.
func (q *fifo) grow() {
	newBuf := make([][]byte, len(q.buf)*2)
	if q.count > 0 {
		if q.head < q.tail {
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}
	q.buf = newBuf
	q.head = 0
	q.tail = q.count
}
