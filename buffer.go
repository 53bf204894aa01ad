package markable

// buffer is the replay store: an append-only byte sequence with a read
// cursor. data always holds exactly the bytes consumed from the source
// since the active mark; pos is the next byte to redeliver, so the unread
// region is data[pos:]. While plain recording pos == len(data).
type buffer struct {
	data  []byte
	pos   int
	limit int // max bytes retained since the mark; 0 means unbounded
}

func newBuffer(capacity, limit int) *buffer {
	if limit > 0 && limit < capacity {
		capacity = limit
	}
	return &buffer{data: make([]byte, 0, capacity), limit: limit}
}

// pending reports how many replay bytes have not been redelivered yet.
func (b *buffer) pending() int { return len(b.data) - b.pos }

// readInto copies pending bytes into p and advances the cursor.
func (b *buffer) readInto(p []byte) int {
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n
}

// record appends bytes that were just delivered to the caller. The cursor
// moves with them so they are only replayed after a rewind.
func (b *buffer) record(p []byte) {
	b.data = append(b.data, p...)
	b.pos = len(b.data)
}

// rewind moves the cursor back to the mark point.
func (b *buffer) rewind() { b.pos = 0 }

// compact drops the already-replayed prefix so the buffer starts at the
// current logical position, keeping any unread tail.
func (b *buffer) compact() {
	if b.pos == 0 {
		return
	}
	n := copy(b.data, b.data[b.pos:])
	b.data = b.data[:n]
	b.pos = 0
}

// release discards all replay data, keeping the allocation for reuse.
func (b *buffer) release() {
	b.data = b.data[:0]
	b.pos = 0
}

func (b *buffer) limited() bool { return b.limit > 0 }

// room is the number of bytes that may still be recorded under the limit.
// Only meaningful when limited.
func (b *buffer) room() int { return b.limit - len(b.data) }
