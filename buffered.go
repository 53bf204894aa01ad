package markable

import "io"

// BufferedReader is a Reader with an added read-ahead buffer: when both
// the replay and read-ahead buffers are empty it issues one source read
// sized to its capacity, amortizing the cost of small reads. The mark
// contract is identical to Reader's. Bytes sitting in the read-ahead
// buffer when Mark is called are not copied eagerly; they enter the
// replay buffer at the moment they are delivered.
type BufferedReader struct {
	marker
	r          io.Reader
	buf        []byte
	rpos, rlen int   // unread read-ahead region is buf[rpos:rlen]
	err        error // source error held back until buffered data drains
}

var (
	_ io.Reader     = (*BufferedReader)(nil)
	_ io.ByteReader = (*BufferedReader)(nil)
	_ Marker        = (*BufferedReader)(nil)
)

// NewBufferedReader wraps r with the default 8 KiB read-ahead capacity and
// an unbounded replay buffer.
func NewBufferedReader(r io.Reader) *BufferedReader {
	br, _ := NewBufferedReaderSize(r, defaultBufferSize)
	return br
}

// NewBufferedReaderSize wraps r with the given read-ahead capacity.
// Fails with ErrInvalidSize unless size is positive.
func NewBufferedReaderSize(r io.Reader, size int) (*BufferedReader, error) {
	return NewBufferedReaderLimit(r, size, 0)
}

// NewBufferedReaderLimit additionally caps how many bytes a mark may
// retain, like NewReaderLimit. limit <= 0 means unbounded.
func NewBufferedReaderLimit(r io.Reader, size, limit int) (*BufferedReader, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return &BufferedReader{
		marker: marker{replay: newBuffer(defaultReplaySize, max(limit, 0))},
		r:      r,
		buf:    make([]byte, size),
	}, nil
}

func (b *BufferedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if n, ok := b.serveReplay(p); ok {
		return n, nil
	}
	p, err := b.clampRecord(p)
	if err != nil {
		return 0, err
	}
	if b.rpos == b.rlen {
		if b.err != nil {
			return 0, b.takeErr()
		}
		n, err := b.r.Read(b.buf)
		if n == 0 {
			return 0, err
		}
		b.rpos, b.rlen = 0, n
		// Deliver the bytes first; the error surfaces once they drain.
		b.err = err
	}
	n := copy(p, b.buf[b.rpos:b.rlen])
	b.rpos += n
	if b.state == stateMarked {
		b.replay.record(p[:n])
	}
	return n, nil
}

// ReadByte reads a single byte under the same replay and recording
// semantics as Read, without a per-byte source call.
func (b *BufferedReader) ReadByte() (byte, error) {
	var one [1]byte
	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := b.Read(one[:])
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return one[0], nil
		}
	}
	return 0, io.ErrNoProgress
}

// Buffered reports how many bytes can be read without touching the
// source: pending replay bytes plus the unread read-ahead region.
func (b *BufferedReader) Buffered() int {
	return b.replay.pending() + b.rlen - b.rpos
}

// Inner returns the wrapped source reader.
func (b *BufferedReader) Inner() io.Reader { return b.r }

func (b *BufferedReader) takeErr() error {
	err := b.err
	b.err = nil
	return err
}
