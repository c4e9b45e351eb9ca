package orchestrator

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/migueldar/taskmeister/internal/taskmeister/job"
	"github.com/migueldar/taskmeister/internal/taskmeister/service"
	"github.com/migueldar/taskmeister/internal/taskmeister/tsignal"
	"github.com/migueldar/taskmeister/internal/taskmeister/watcher"
)

// handleEvent implements spec.md §4.3 "Transitions on Events".
func (o *Orchestrator) handleEvent(e watcher.Event) {
	j, ok := o.jobs.Get(e.Alias)
	if !ok {
		// The Watched outlived its Job record (e.g. a Remove raced a tick);
		// nothing to update.
		return
	}

	switch {
	case e.Status.IsRunning():
		o.handleRunningEvent(j, e)
	case e.Status.IsFinished():
		o.handleFinishedEvent(j, e)
	case e.Status.IsTimedOut():
		o.handleTimedOutEvent(j, e)
	default:
		j.Status = e.Status
	}
}

// handleRunningEvent implements the Starting -> Running(false) edge
// (spec.md §4.1, §4.3): the Watcher only reports that the child is alive,
// never that it is healthy, so the Orchestrator — which owns the true
// health flag — withholds Running(true) until the start_time deadline
// fires as TimedOut and promotes it. The startup timeout stays armed here;
// clearing it would remove the only path that promotes to healthy.
func (o *Orchestrator) handleRunningEvent(j *job.Job, e watcher.Event) {
	if j.Status.IsStarting() {
		j.Status = job.Running(false)
	}
}

// handleFinishedEvent implements the Finished transition: tear down the
// Watched and TeeState, consume the Job's single-shot flags, and either
// honor an explicit restart, respect an explicit stop, or apply the
// Service's restart policy (spec.md §4.3, §3 restart policy).
func (o *Orchestrator) handleFinishedEvent(j *job.Job, e watcher.Event) {
	wasStopping := j.Status.IsStopping()

	o.watcher.Remove(e.Alias)
	o.router.StopForwarding(e.Alias)
	o.router.Remove(e.Alias)

	j.Status = e.Status
	j.LastExitCode = e.Status.ExitCode()

	flags := j.ConsumeFlags()

	if flags.RemoveService {
		o.jobs.Delete(e.Alias)
		if !flags.RestartJob {
			return
		}
		// Reload's Changed case: the old Job record is gone, but the new
		// Service definition should start fresh immediately.
		if err := o.startJob(e.Alias); err != nil {
			logger.Warnf("restart %s: %v", e.Alias, err)
		}
		return
	}
	if flags.RestartJob {
		if err := o.startJob(e.Alias); err != nil {
			logger.Warnf("restart %s: %v", e.Alias, err)
		}
		return
	}
	if wasStopping {
		// The user stopped this job explicitly with no restart_job flag;
		// honor that over the Service's own restart policy.
		return
	}

	svc, ok := o.registry.Get(e.Alias)
	if !ok {
		return
	}
	if policyWantsRestart(svc, j.Retries, e.Status.ExitCode()) {
		j.Retries++
		if err := o.startJob(e.Alias); err != nil {
			logger.Warnf("policy restart %s: %v", e.Alias, err)
		}
	}
}

// policyWantsRestart implements spec.md §3's restart policy: Never never
// restarts, Always restarts up to Max times, OnError restarts up to Max
// times unless the exit code is declared as non-error in exit_codes.
func policyWantsRestart(svc service.Service, retries, exitCode int) bool {
	switch svc.Restart.Kind {
	case service.RestartAlways:
		return retries < int(svc.Restart.Max)
	case service.RestartOnError:
		if _, declaredOK := svc.ExitCodes[exitCode]; declaredOK {
			return false
		}
		return retries < int(svc.Restart.Max)
	default:
		return false
	}
}

// handleTimedOutEvent implements spec.md §4.1/§4.3's dual-meaning timeout:
// the same Watched deadline serves both the unmet start_time grace period
// and the unmet stop_wait grace period, so the Orchestrator disambiguates
// on the Job's previous status rather than treating every TimedOut alike.
func (o *Orchestrator) handleTimedOutEvent(j *job.Job, e watcher.Event) {
	prev := j.Status

	switch {
	case prev.IsStarting() || prev.IsRunning():
		// start_time elapsed with the child still alive: that is success,
		// not failure. Promote to healthy and stop watching for a startup
		// deadline; no kill.
		j.Status = job.Running(true)
		o.watcher.ClearTimeout(e.Alias)

	case prev.IsTimedOut() || prev.IsStopping():
		// stop_wait elapsed (or a prior escalation's SIGKILL hasn't reaped
		// the child yet): escalate again and re-arm a fresh stop-wait
		// deadline, remaining Stopping so the eventual Finished transition
		// still honors the explicit Stop instead of the restart policy.
		j.Status = job.Stopping
		if pid, ok := o.watcher.PID(e.Alias); ok {
			if err := tsignal.Send(pid, unix.SIGKILL); err != nil {
				logger.Warnf("escalate kill %s (pid %d): %v", e.Alias, pid, err)
			}
		}
		o.watcher.ArmTimeout(e.Alias, o.stopWait(e.Alias))

	default:
		j.Status = job.TimedOut
	}
}

// stopWait looks up alias's configured stop_wait, falling back to the same
// default stopJob uses when the Service has since been removed from the
// Registry.
func (o *Orchestrator) stopWait(alias string) time.Duration {
	if svc, ok := o.registry.Get(alias); ok {
		return time.Duration(svc.StopWait) * time.Second
	}
	return 10 * time.Second
}
