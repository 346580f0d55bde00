package shortcuts

import (
	"bytes"
	"sync"
)

// truncationMarker is appended to a captured stream that hit the cap.
const truncationMarker = "\n[output truncated]"

// cappedBuffer captures stream output incrementally up to a fixed cap.
// Writes beyond the cap are counted but discarded, so a shortcut that spews
// output cannot grow memory without bound. Safe for use as an exec.Cmd
// output writer.
type cappedBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	cap     int
	dropped int64
}

func newCappedBuffer(capBytes int) *cappedBuffer {
	return &cappedBuffer{cap: capBytes}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.cap - b.buf.Len()
	if room > len(p) {
		room = len(p)
	}
	if room > 0 {
		b.buf.Write(p[:room])
	}
	b.dropped += int64(len(p) - room)
	return len(p), nil
}

// Truncated reports whether any bytes were discarded.
func (b *cappedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped > 0
}

// String returns the captured output, with the truncation marker appended
// when the cap was hit.
func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dropped > 0 {
		return b.buf.String() + truncationMarker
	}
	return b.buf.String()
}
