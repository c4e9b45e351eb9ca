// Package watcher implements the Watcher support thread (spec.md §4.1): it
// polls every supervised child for exit status and deadline expiry, and
// emits lifecycle Events into the Orchestrator's unified inbox.
package watcher

import (
	"context"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	ierrors "github.com/migueldar/taskmeister/internal/errors"
	"github.com/migueldar/taskmeister/internal/taskmeister/job"
	"github.com/migueldar/taskmeister/internal/tlog"
)

var logger = tlog.New(os.Stdout, "watcher")

// Event is a lifecycle notification the Watcher delivers into the
// Orchestrator's unified inbox (spec.md §4.1).
type Event struct {
	Alias  string
	Status job.Status
}

// watched is the per-live-process record owned by the Watcher (spec.md §3).
type watched struct {
	pid            int
	previousStatus job.Status
	// deadline is nil when no timeout is armed.
	deadline *time.Time
}

// Watcher polls every supervised child at a fixed period and emits Events
// on status edges. See spec.md §4.1.
type Watcher struct {
	mutex   sync.Mutex
	watched map[string]*watched

	events chan<- Event
	period time.Duration
}

// New creates a Watcher that delivers Events to events, polling every
// period.
func New(events chan<- Event, period time.Duration) *Watcher {
	return &Watcher{
		watched: make(map[string]*watched),
		events:  events,
		period:  period,
	}
}

// Install begins watching pid under alias. startTimeout, if non-zero, arms
// the startup-grace deadline (spec.md §4.3 Starting -> Running(true)).
func (w *Watcher) Install(alias string, pid int, startTimeout time.Duration) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	wd := &watched{pid: pid, previousStatus: job.Starting}
	if startTimeout > 0 {
		deadline := time.Now().Add(startTimeout)
		wd.deadline = &deadline
	}
	w.watched[alias] = wd
}

// Remove stops watching alias. Called by the Orchestrator on every Finished
// transition (spec.md §4.3), never by the Watcher itself.
func (w *Watcher) Remove(alias string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	delete(w.watched, alias)
}

// ArmTimeout (re)arms alias's deadline to fire after d, used both to start
// the startup grace period and, on Stop, the stop_wait grace period
// (spec.md §4.3).
func (w *Watcher) ArmTimeout(alias string, d time.Duration) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	wd, ok := w.watched[alias]
	if !ok {
		return
	}
	deadline := time.Now().Add(d)
	wd.deadline = &deadline
}

// ClearTimeout disarms alias's deadline, so the Watcher will not re-emit
// TimedOut for it (spec.md §4.3, the Starting/Running -> TimedOut -> healthy
// transition).
func (w *Watcher) ClearTimeout(alias string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	wd, ok := w.watched[alias]
	if !ok {
		return
	}
	wd.deadline = nil
}

// PID returns the pid currently watched for alias, if any.
func (w *Watcher) PID(alias string) (int, bool) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	wd, ok := w.watched[alias]
	if !ok {
		return 0, false
	}
	return wd.pid, true
}

// Run executes the poll loop until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

// tick performs one scan of every watched process, holding the lock for the
// whole sweep (spec.md §9: "the Watcher holds the lock only during a scan").
func (w *Watcher) tick() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	now := time.Now()
	for alias, wd := range w.watched {
		w.tickOne(alias, wd, now)
	}
}

func (w *Watcher) tickOne(alias string, wd *watched, now time.Time) {
	// 1. Deadline expiry takes priority over probing.
	if wd.deadline != nil && !now.Before(*wd.deadline) && !wd.previousStatus.IsTimedOut() {
		wd.previousStatus = job.TimedOut
		w.emit(alias, job.TimedOut)
		return
	}

	// 2. Non-blocking probe for exit status.
	status := w.probe(wd.pid)

	// 3. Emit only on edge.
	if status != wd.previousStatus {
		wd.previousStatus = status
		w.emit(alias, status)
	}
}

// probe non-blockingly checks whether pid has exited, using waitpid(2) with
// WNOHANG so the Watcher never blocks on a single child (spec.md §5).
func (w *Watcher) probe(pid int) job.Status {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
	switch {
	case err != nil:
		logger.Warnf("probe pid %d: %v", pid, ierrors.Wrap(err))
		return job.TimedOut
	case wpid == 0:
		// Still running.
		return job.Running(true)
	default:
		code := 0
		if ws.Exited() {
			code = ws.ExitStatus()
		}
		return job.Finished(code)
	}
}

func (w *Watcher) emit(alias string, status job.Status) {
	w.events <- Event{Alias: alias, Status: status}
}
