package markable

import "io"

// Reader wraps an io.Reader with mark/reset. While marked, every byte
// delivered is also recorded; Reset rewinds so subsequent reads replay the
// recorded bytes before falling through to the source again. Source
// errors, including io.EOF, propagate unchanged and never disturb the
// mark state.
type Reader struct {
	marker
	r io.Reader
}

var (
	_ io.Reader = (*Reader)(nil)
	_ Marker    = (*Reader)(nil)
)

// NewReader wraps r with an unbounded replay buffer.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		marker: marker{replay: newBuffer(defaultReplaySize, 0)},
		r:      r,
	}
}

// NewReaderLimit wraps r, capping how many bytes a mark may retain.
// A recording read that finds no room left fails with ErrReplayLimit
// before consuming from the source. limit <= 0 means unbounded.
func NewReaderLimit(r io.Reader, limit int) *Reader {
	return &Reader{
		marker: marker{replay: newBuffer(defaultReplaySize, max(limit, 0))},
		r:      r,
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if n, ok := r.serveReplay(p); ok {
		return n, nil
	}
	p, err := r.clampRecord(p)
	if err != nil {
		return 0, err
	}
	n, err := r.r.Read(p)
	if n > 0 && r.state == stateMarked {
		// Bytes arriving alongside an error were still delivered, so
		// they are recorded too.
		r.replay.record(p[:n])
	}
	return n, err
}

// Inner returns the wrapped source reader.
func (r *Reader) Inner() io.Reader { return r.r }
