// Package iorouter implements the I/O Router support thread (spec.md §4.2):
// it reads child stdout/stderr, maintains a bounded replay ring per stream,
// tees to a default sink file and an optional forwarding channel, and
// accepts stdin bytes destined for the child.
package iorouter

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/migueldar/taskmeister/internal/tlog"
)

var logger = tlog.New(os.Stdout, "iorouter")

// ErrJobNotFound indicates the request named an alias with no TeeState.
var ErrJobNotFound = errors.New("job not found")

// ErrJobAlreadyAttached indicates StartForwarding was called while a
// forwarder is already set for the alias (spec.md §4.2 attach conflict).
var ErrJobAlreadyAttached = errors.New("job already attached")

// errClosedStream is returned internally when a read observes EOF; it is
// never surfaced to callers, and pumpStream does not log it.
var errClosedStream = errors.New("stream closed")

const (
	// ringCapacity is the number of read-sized slices retained per stream
	// (spec.md §4.2 design value).
	ringCapacity = 64
	// snapshotBytes is the truncation length for ReadBuff/Status replies
	// (spec.md §4.2).
	snapshotBytes = 512
	// readChunk is the buffer size used for each non-blocking read attempt.
	readChunk = 4096
	// stopForwardingDrainIterations bounds the extra reads StopForwarding
	// performs before unsetting the forwarder (spec.md §4.2 design value).
	stopForwardingDrainIterations = 100
)

// teeState is the per-alias record the Router owns (spec.md §3 TeeState).
type teeState struct {
	stdout, stderr, stdin *stream

	defaultStdout, defaultStderr *os.File

	forwardStdout, forwardStderr chan<- []byte

	ringStdout, ringStderr *ringBuffer
}

// ReadBuffResult is the synchronous reply to a ReadBuff request.
type ReadBuffResult struct {
	Stdout []byte
	Stderr []byte
}

// Router is the I/O Router. One instance serves every supervised alias.
type Router struct {
	inbox  chan request
	tees   map[string]*teeState
	period time.Duration
}

// New creates a Router that pumps stdio at the given tick period.
func New(period time.Duration) *Router {
	return &Router{
		inbox:  make(chan request, 64),
		tees:   make(map[string]*teeState),
		period: period,
	}
}

// Run executes the Router's main loop until ctx is canceled (spec.md §4.2):
// drain the inbox, pump every live TeeState once, sleep.
func (r *Router) Run(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
		}
		r.drainInbox()
		r.pumpAll()
	}
}

func (r *Router) drainInbox() {
	for {
		select {
		case req := <-r.inbox:
			req.handle(r)
		default:
			return
		}
	}
}

func (r *Router) pumpAll() {
	for alias, t := range r.tees {
		r.pumpOne(alias, t)
	}
}

// pumpOne attempts a single non-blocking read on stdout and stderr,
// returning whether any bytes were read on either stream.
func (r *Router) pumpOne(alias string, t *teeState) bool {
	read := false
	if r.pumpStream(alias, "stdout", t.stdout, t.ringStdout, t.forwardStdout, t.defaultStdout) {
		read = true
	}
	if r.pumpStream(alias, "stderr", t.stderr, t.ringStderr, t.forwardStderr, t.defaultStderr) {
		read = true
	}
	return read
}

func (r *Router) pumpStream(
	alias, name string,
	s *stream,
	ring *ringBuffer,
	forward chan<- []byte,
	sink *os.File,
) bool {
	if s == nil {
		return false
	}

	buf := make([]byte, readChunk)
	n, ok, err := s.tryRead(buf)
	if err != nil {
		if !errors.Is(err, errClosedStream) {
			logger.Warnf("read %s %s: %v", alias, name, err)
		}
		return false
	}
	if !ok {
		return false
	}

	b := buf[:n]
	ring.Push(b)

	if forward != nil {
		select {
		case forward <- b:
		default:
			// Best-effort: drop on send failure (spec.md §9).
		}
	}

	if sink != nil {
		if _, err := sink.Write(b); err != nil {
			logger.Warnf("write default sink %s %s: %v", alias, name, err)
		}
	}

	return true
}

func (r *Router) closeAll() {
	for alias := range r.tees {
		r.closeTee(alias)
	}
}

func (r *Router) closeTee(alias string) {
	t, ok := r.tees[alias]
	if !ok {
		return
	}
	for _, s := range []*stream{t.stdout, t.stderr, t.stdin} {
		if s != nil {
			if err := s.Close(); err != nil {
				logger.Warnf("close %s stream: %v", alias, err)
			}
		}
	}
	for _, f := range []*os.File{t.defaultStdout, t.defaultStderr} {
		if f != nil {
			f.Close()
		}
	}
	delete(r.tees, alias)
}
