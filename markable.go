// Package markable provides io.Reader decorators that can mark a position
// in a stream and later reset back to it, replaying the bytes read in
// between. The source is only ever advanced forward; replay works purely
// through buffering, so it works over sources that cannot seek (sockets,
// pipes, decompressors).
//
// Reader records into a replay buffer from the moment Mark is called.
// BufferedReader adds a fixed-size read-ahead buffer on top of the same
// contract, so many small reads cost one source read per buffer fill.
// Both implement io.Reader, so wrappers can be nested or passed anywhere
// a plain reader is expected.
//
// Neither type is safe for concurrent use.
package markable

import "errors"

const (
	// defaultBufferSize is the read-ahead capacity of a BufferedReader
	// when none is given.
	defaultBufferSize = 8 * 1024
	// defaultReplaySize is the initial (not maximum) replay buffer capacity.
	defaultReplaySize = 2 * 1024
	// maxConsecutiveEmptyReads bounds how many (0, nil) source results
	// ReadByte tolerates before reporting io.ErrNoProgress.
	maxConsecutiveEmptyReads = 100
)

var (
	// ErrNoMark is returned by Reset when no mark is currently valid:
	// Mark was never called, the mark was dropped with Unmark, or its
	// data was fully replayed without a new Mark.
	ErrNoMark = errors.New("markable: reset without a valid mark")

	// ErrInvalidSize is returned at construction for a non-positive
	// read-ahead capacity.
	ErrInvalidSize = errors.New("markable: buffer size must be positive")

	// ErrReplayLimit is returned by a read that would grow the replay
	// buffer past its configured limit. The mark and its recorded bytes
	// stay intact; the caller may still Reset, or Unmark to continue
	// reading without recording.
	ErrReplayLimit = errors.New("markable: replay buffer limit exceeded")
)

// Marker is the mark/reset capability that Reader and BufferedReader
// expose alongside io.Reader.
type Marker interface {
	// Mark bookmarks the current position. Bytes read afterwards are
	// retained for replay until the mark is superseded or dropped.
	Mark()
	// Reset rewinds to the most recent valid mark so the bytes read
	// since are replayed. Fails with ErrNoMark if no mark is valid.
	Reset() error
}

type markState uint8

const (
	stateUnmarked  markState = iota // pass-through, nothing recorded
	stateMarked                     // recording everything delivered
	stateReplaying                  // serving a reset's replay
)

// marker holds the mark state machine shared by Reader and BufferedReader.
type marker struct {
	state  markState
	replay *buffer
}

func (m *marker) Mark() {
	// Bytes already replayed sit before the new mark point and are
	// dropped; an unread replay tail is still undelivered and must stay
	// replayable under the new mark.
	m.replay.compact()
	m.state = stateMarked
}

func (m *marker) Reset() error {
	if m.state == stateUnmarked {
		return ErrNoMark
	}
	m.replay.rewind()
	m.state = stateReplaying
	return nil
}

// Unmark drops the mark and releases the replay buffer without moving the
// read position. A later Reset fails with ErrNoMark.
func (m *marker) Unmark() {
	m.state = stateUnmarked
	m.replay.release()
}

// serveReplay delivers pending replay bytes into p. It reports false when
// there is nothing to replay and the read should go to the source.
func (m *marker) serveReplay(p []byte) (int, bool) {
	if m.replay.pending() == 0 {
		m.settle()
		return 0, false
	}
	n := m.replay.readInto(p)
	m.settle()
	return n, true
}

// settle returns to pass-through once a reset's replay has drained with no
// new mark set. Draining while marked keeps recording.
func (m *marker) settle() {
	if m.state == stateReplaying && m.replay.pending() == 0 {
		m.state = stateUnmarked
		m.replay.release()
	}
}

// clampRecord bounds p so a recording read cannot overrun the replay
// retention limit. With no room left it fails instead, before anything is
// consumed from the source.
func (m *marker) clampRecord(p []byte) ([]byte, error) {
	if m.state != stateMarked || !m.replay.limited() {
		return p, nil
	}
	room := m.replay.room()
	if room == 0 {
		return nil, ErrReplayLimit
	}
	if len(p) > room {
		p = p[:room]
	}
	return p, nil
}
