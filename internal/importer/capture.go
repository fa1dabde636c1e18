package importer

import "fmt"

// maxCapture bounds how much of each ogr2ogr stream is kept in memory. Runs
// with --debug or per-feature warnings can print far more than this; the end
// of the stream is what explains a failure, so the tail is kept.
const maxCapture = 1 << 20

// tailBuffer is an io.Writer that keeps only the last max bytes written.
type tailBuffer struct {
	max     int
	buf     []byte
	dropped int64
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= b.max {
		b.dropped += int64(len(b.buf) + n - b.max)
		b.buf = append(b.buf[:0], p[n-b.max:]...)
		return n, nil
	}
	if over := len(b.buf) + n - b.max; over > 0 {
		b.dropped += int64(over)
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	b.buf = append(b.buf, p...)
	return n, nil
}

// Truncated reports whether earlier output was discarded.
func (b *tailBuffer) Truncated() bool { return b.dropped > 0 }

func (b *tailBuffer) String() string {
	if b.dropped == 0 {
		return string(b.buf)
	}
	return fmt.Sprintf("[%d earlier bytes dropped]\n%s", b.dropped, b.buf)
}
