// Package orchestrator implements the Orchestrator (spec.md §4.3): the
// single-threaded event loop owning the Job Table and Service Registry,
// consuming a unified stream of client Requests and Watcher Events, and
// driving the per-job state machine.
package orchestrator

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/migueldar/taskmeister/internal/taskmeister/job"
	"github.com/migueldar/taskmeister/internal/taskmeister/iorouter"
	"github.com/migueldar/taskmeister/internal/taskmeister/service"
	"github.com/migueldar/taskmeister/internal/taskmeister/watcher"
	"github.com/migueldar/taskmeister/internal/tlog"
)

var logger = tlog.New(os.Stdout, "orchestrator")

// Request-path errors (spec.md §7 "State conflict" / "Service not found").
var (
	ErrServiceNotFound        = errors.New("service not found")
	ErrJobNotFound            = errors.New("job not found")
	ErrServiceAlreadyStarted  = errors.New("service already started")
	ErrServiceAlreadyStopping = errors.New("service already stopping")
	ErrServiceStopped         = errors.New("service already stopped")
	ErrJobAlreadyAttached     = errors.New("job already attached")
	ErrJobIoError             = errors.New("job io error")
)

// Orchestrator owns the Job Table and Service Registry and drives the state
// machine described in spec.md §4.3.
type Orchestrator struct {
	inbox chan interface{}

	jobs     *job.Table
	registry *service.Registry

	watcher *watcher.Watcher
	router  *iorouter.Router

	registryPaths []string
}

// New constructs an Orchestrator. registryPaths are the directories the
// Service Registry reloads from on Reload (spec.md §4.5). The Watcher is
// supplied afterward via SetWatcher, since building a Watcher requires the
// event channel this Orchestrator's Events method provides.
func New(
	registry *service.Registry,
	r *iorouter.Router,
	registryPaths []string,
) *Orchestrator {
	return &Orchestrator{
		inbox:         make(chan interface{}, 64),
		jobs:          job.NewTable(),
		registry:      registry,
		router:        r,
		registryPaths: registryPaths,
	}
}

// SetWatcher wires the Watcher this Orchestrator drives PID probing and
// timeout arming through. Must be called once, before Run.
func (o *Orchestrator) SetWatcher(w *watcher.Watcher) {
	o.watcher = w
}

// Submit enqueues a client Request for processing (called by the Request
// Gateway, spec.md §4.4).
func (o *Orchestrator) Submit(req Request) {
	o.inbox <- req
}

// Events returns the channel the Watcher should be constructed with; the
// Orchestrator forwards every Event it receives into its own unified inbox.
func (o *Orchestrator) Events() chan<- watcher.Event {
	events := make(chan watcher.Event, 64)
	go func() {
		for e := range events {
			o.inbox <- e
		}
	}()
	return events
}

// Run executes the Orchestrator's event loop until ctx is canceled. A
// single consumer serializes every mutation, so the Job Table needs no
// lock (spec.md §4.3, §5).
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-o.inbox:
			switch m := v.(type) {
			case Request:
				o.handleRequest(m)
			case watcher.Event:
				o.handleEvent(m)
			}
		}
	}
}

// StartAlias synchronously issues a Start action and waits for its single
// reply, for use by daemon startup (spec.md §4.4: "issues a Start for every
// alias named in ... start.services, aborting startup if any fails").
func (o *Orchestrator) StartAlias(ctx context.Context, alias string) error {
	req := NewRequest(StartAction{Alias: alias})
	o.inbox <- req
	for part := range req.Reply {
		if part.IsError() {
			return errors.New(*part.Error)
		}
	}
	return nil
}

const defaultWatchPoll = 100 * time.Millisecond
