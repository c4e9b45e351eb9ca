package iorouter

import (
	"os"

	"golang.org/x/sys/unix"
)

// stream wraps a pipe end already placed in O_NONBLOCK mode (spec.md §5:
// "All I/O is either non-blocking... via fcntl O_NONBLOCK"). Reads and
// writes go through golang.org/x/sys/unix directly rather than
// (*os.File).Read/Write, since the Go runtime's poller would otherwise park
// the calling goroutine instead of surfacing EAGAIN for a true single-shot
// non-blocking attempt.
type stream struct {
	file *os.File
	fd   int
}

// newStream wraps f, which the caller must already have set non-blocking.
func newStream(f *os.File) *stream {
	if f == nil {
		return nil
	}
	return &stream{file: f, fd: int(f.Fd())}
}

// tryRead attempts a single non-blocking read into buf. ok is false when the
// read would have blocked (no data currently available); it is not an
// error.
func (s *stream) tryRead(buf []byte) (n int, ok bool, err error) {
	n, err = unix.Read(s.fd, buf)
	switch {
	case err == unix.EAGAIN || err == unix.EWOULDBLOCK:
		return 0, false, nil
	case err != nil:
		return 0, false, err
	case n == 0:
		// EOF: the write end was closed.
		return 0, false, errClosedStream
	default:
		return n, true, nil
	}
}

// tryWrite attempts a single non-blocking write of buf, best-effort: a
// would-block condition is reported via ok=false, not an error (spec.md §9:
// "the source drops bytes on send failure").
func (s *stream) tryWrite(buf []byte) (n int, ok bool, err error) {
	n, err = unix.Write(s.fd, buf)
	switch {
	case err == unix.EAGAIN || err == unix.EWOULDBLOCK:
		return 0, false, nil
	case err != nil:
		return 0, false, err
	default:
		return n, true, nil
	}
}

func (s *stream) Close() error {
	return s.file.Close()
}
