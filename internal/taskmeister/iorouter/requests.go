package iorouter

import (
	"os"
)

// request is the closed sum type of messages the Router's inbox accepts
// (spec.md §4.2, §9 "Tagged variants over inheritance").
type request interface {
	handle(r *Router)
}

// Create installs a new TeeState for alias. stdout/stderr/stdin must already
// be in non-blocking mode; the Orchestrator arranges that before handing
// them over (spec.md §4.3 Start).
func (r *Router) Create(
	alias string,
	stdout, stderr, stdin *os.File,
	defaultStdoutPath, defaultStderrPath string,
) {
	r.inbox <- createRequest{
		alias:             alias,
		stdout:            stdout,
		stderr:            stderr,
		stdin:             stdin,
		defaultStdoutPath: defaultStdoutPath,
		defaultStderrPath: defaultStderrPath,
	}
}

type createRequest struct {
	alias                               string
	stdout, stderr, stdin               *os.File
	defaultStdoutPath, defaultStderrPath string
}

func (req createRequest) handle(r *Router) {
	t := &teeState{
		stdout:     newStream(req.stdout),
		stderr:     newStream(req.stderr),
		stdin:      newStream(req.stdin),
		ringStdout: newRingBuffer(ringCapacity),
		ringStderr: newRingBuffer(ringCapacity),
	}

	if f, err := openSink(req.defaultStdoutPath); err != nil {
		logger.Warnf("open default stdout sink %s: %v", req.alias, err)
	} else {
		t.defaultStdout = f
	}
	if f, err := openSink(req.defaultStderrPath); err != nil {
		logger.Warnf("open default stderr sink %s: %v", req.alias, err)
	} else {
		t.defaultStderr = f
	}

	r.tees[req.alias] = t
}

// openSink opens path for appending, or returns (nil, nil) for the literal
// "null" sink (spec.md §3).
func openSink(path string) (*os.File, error) {
	if path == "" || path == "null" {
		return nil, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// Remove tears down alias's TeeState.
func (r *Router) Remove(alias string) {
	r.inbox <- removeRequest{alias: alias}
}

type removeRequest struct{ alias string }

func (req removeRequest) handle(r *Router) {
	r.closeTee(req.alias)
}

// ReadBuff synchronously retrieves the last snapshotBytes of stdout and
// stderr retained for alias.
func (r *Router) ReadBuff(alias string) ReadBuffResult {
	reply := make(chan ReadBuffResult, 1)
	r.inbox <- readBuffRequest{alias: alias, reply: reply}
	return <-reply
}

type readBuffRequest struct {
	alias string
	reply chan<- ReadBuffResult
}

func (req readBuffRequest) handle(r *Router) {
	t, ok := r.tees[req.alias]
	if !ok {
		req.reply <- ReadBuffResult{}
		return
	}
	req.reply <- ReadBuffResult{
		Stdout: t.ringStdout.Snapshot(snapshotBytes),
		Stderr: t.ringStderr.Snapshot(snapshotBytes),
	}
}

// StartForwarding attaches stdoutTx/stderrTx as the forwarding sinks for
// alias's stdout/stderr. Returns ErrJobNotFound or ErrJobAlreadyAttached on
// conflict (spec.md §4.2).
func (r *Router) StartForwarding(alias string, stdoutTx, stderrTx chan<- []byte) error {
	reply := make(chan error, 1)
	r.inbox <- startForwardingRequest{alias: alias, stdoutTx: stdoutTx, stderrTx: stderrTx, reply: reply}
	return <-reply
}

type startForwardingRequest struct {
	alias              string
	stdoutTx, stderrTx chan<- []byte
	reply              chan<- error
}

func (req startForwardingRequest) handle(r *Router) {
	t, ok := r.tees[req.alias]
	if !ok {
		req.reply <- ErrJobNotFound
		return
	}
	if t.forwardStdout != nil || t.forwardStderr != nil {
		req.reply <- ErrJobAlreadyAttached
		return
	}
	t.forwardStdout = req.stdoutTx
	t.forwardStderr = req.stderrTx
	req.reply <- nil
}

// StopForwarding detaches any forwarder set for alias, first draining
// already-buffered bytes so the attached client does not see a truncated
// tail (spec.md §4.2).
func (r *Router) StopForwarding(alias string) {
	r.inbox <- stopForwardingRequest{alias: alias}
}

type stopForwardingRequest struct{ alias string }

func (req stopForwardingRequest) handle(r *Router) {
	t, ok := r.tees[req.alias]
	if !ok {
		return
	}

	for i := 0; i < stopForwardingDrainIterations; i++ {
		if !r.pumpOne(req.alias, t) {
			break
		}
	}

	t.forwardStdout = nil
	t.forwardStderr = nil
}

// Write forwards bytes into alias's child's stdin pipe (spec.md §4.3
// Input, §9 "the stdin-forwarding path is commented out" — here it is
// wired fully).
func (r *Router) Write(alias string, data []byte) error {
	reply := make(chan error, 1)
	r.inbox <- writeRequest{alias: alias, data: data, reply: reply}
	return <-reply
}

type writeRequest struct {
	alias string
	data  []byte
	reply chan<- error
}

func (req writeRequest) handle(r *Router) {
	t, ok := r.tees[req.alias]
	if !ok {
		req.reply <- ErrJobNotFound
		return
	}
	if t.stdin == nil {
		req.reply <- nil
		return
	}

	remaining := req.data
	for len(remaining) > 0 {
		n, ok, err := t.stdin.tryWrite(remaining)
		if err != nil {
			req.reply <- err
			return
		}
		if !ok {
			// Best-effort: drop the remainder rather than block the
			// Router on a slow child (spec.md §9).
			break
		}
		remaining = remaining[n:]
	}
	req.reply <- nil
}
