package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/migueldar/taskmeister/internal/taskmeister/job"
	"github.com/migueldar/taskmeister/internal/taskmeister/protocol"
	"github.com/migueldar/taskmeister/internal/taskmeister/tsignal"
)

func (o *Orchestrator) handleRequest(req Request) {
	switch a := req.Action.(type) {
	case StartAction:
		o.handleStart(req, a)
	case StopAction:
		o.handleStop(req, a)
	case StatusAction:
		o.handleStatus(req, a)
	case AttachAction:
		o.handleAttach(req, a)
	case DetachAction:
		o.handleDetach(req, a)
	case ReloadAction:
		o.handleReload(req)
	case ListAction:
		o.handleList(req)
	case HelpAction:
		o.handleHelp(req)
	case InputAction:
		o.handleInput(req, a)
	}
}

func (o *Orchestrator) replyOK(req Request) {
	req.Reply <- protocol.Info("OK")
	close(req.Reply)
}

func (o *Orchestrator) replyErr(req Request, err error) {
	req.Reply <- protocol.Err(err.Error())
	close(req.Reply)
}

// handleStart implements spec.md §4.3 "Transitions on Requests: Start".
func (o *Orchestrator) handleStart(req Request, a StartAction) {
	if err := o.startJob(a.Alias); err != nil {
		o.replyErr(req, err)
		return
	}
	o.replyOK(req)
}

// startJob is shared by handleStart, Restart-of-an-idle-job, the Finished
// transition's restart paths, and daemon startup.
func (o *Orchestrator) startJob(alias string) error {
	svc, ok := o.registry.Get(alias)
	if !ok {
		return ErrServiceNotFound
	}

	j := o.jobs.GetOrCreate(alias)
	if j.Status.IsStarting() || j.Status.IsRunning() || j.Status.IsStopping() {
		return ErrServiceAlreadyStarted
	}
	if j.Status.IsFinished() {
		j.LastExitCode = j.Status.ExitCode()
	}

	prevStatus := j.Status
	j.Status = job.Starting
	j.StartedAt = time.Now()

	sp, err := spawnService(svc)
	if err != nil {
		j.Status = prevStatus
		return fmt.Errorf("%w: %v", ErrJobIoError, err)
	}

	startTime := time.Duration(svc.StartTime) * time.Second
	o.watcher.Install(alias, sp.pid, startTime)
	// Install leaves a zero start_time unarmed; arm it explicitly so a zero
	// grace period expires on the next Watcher tick and promotes the job.
	o.watcher.ArmTimeout(alias, startTime)
	o.router.Create(alias, sp.parentStdout, sp.parentStderr, sp.parentStdin, svc.Stdout, svc.Stderr)
	return nil
}

// handleStop implements spec.md §4.3 "Transitions on Requests: Stop" and the
// Restart command, which is Stop with restart_job set.
func (o *Orchestrator) handleStop(req Request, a StopAction) {
	err := o.stopJob(a.Alias, a.RemoveService, a.RestartJob)

	if errors.Is(err, ErrServiceStopped) && a.RestartJob {
		// Nothing to stop: the Stopping -> Finished transition that would
		// normally trigger the restart will never happen, so start it now.
		if startErr := o.startJob(a.Alias); startErr != nil {
			o.replyErr(req, startErr)
			return
		}
		o.replyOK(req)
		return
	}

	if err != nil {
		o.replyErr(req, err)
		return
	}
	o.replyOK(req)
}

// stopJob requests alias's child to exit, arming the stop_wait deadline and
// recording the single-shot flags the eventual Finished transition consumes.
func (o *Orchestrator) stopJob(alias string, removeService, restartJob bool) error {
	j, ok := o.jobs.Get(alias)
	if !ok {
		return ErrJobNotFound
	}
	if j.Status.IsStopping() {
		return ErrServiceAlreadyStopping
	}
	if !(j.Status.IsStarting() || j.Status.IsRunning()) {
		return ErrServiceStopped
	}

	stopSignal := 15 // SIGTERM
	stopWait := uint32(10)
	if svc, ok := o.registry.Get(alias); ok {
		stopSignal = svc.StopSignal
		stopWait = svc.StopWait
	}

	j.SetFlags(job.Flags{RemoveService: removeService, RestartJob: restartJob})
	j.Status = job.Stopping

	if pid, ok := o.watcher.PID(alias); ok {
		if err := tsignal.Send(pid, unix.Signal(stopSignal)); err != nil {
			logger.Warnf("send stop signal to %s (pid %d): %v", alias, pid, err)
		}
	}
	o.watcher.ArmTimeout(alias, time.Duration(stopWait)*time.Second)
	return nil
}

// handleStatus implements spec.md §4.3 Status: a text report plus the
// retained tail of stdout/stderr.
func (o *Orchestrator) handleStatus(req Request, a StatusAction) {
	j, ok := o.jobs.Get(a.Alias)
	if !ok {
		o.replyErr(req, ErrServiceNotFound)
		return
	}

	svc, hasSvc := o.registry.Get(a.Alias)
	req.Reply <- protocol.Info(renderStatus(j, svc, hasSvc))

	buff := o.router.ReadBuff(a.Alias)
	if len(buff.Stdout) > 0 {
		req.Reply <- protocol.Stream(buff.Stdout)
	}
	if len(buff.Stderr) > 0 {
		req.Reply <- protocol.Stream(buff.Stderr)
	}
	close(req.Reply)
}

// handleAttach implements spec.md §4.3/§4.2 Attach: stream stdout/stderr
// until the Gateway closes a.Cancel (peer disconnect) or a Detach arrives.
func (o *Orchestrator) handleAttach(req Request, a AttachAction) {
	stdoutTx := make(chan []byte, 16)
	stderrTx := make(chan []byte, 16)

	if err := o.router.StartForwarding(a.Alias, stdoutTx, stderrTx); err != nil {
		o.replyErr(req, err)
		return
	}

	// forwarderID distinguishes this attach session from any other in the
	// daemon log, since aliases can be re-attached many times over a
	// process's lifetime.
	forwarderID := uuid.NewString()
	logger.Infof("attach %s: forwarder %s started", a.Alias, forwarderID)
	go o.runAttachForwarder(forwarderID, a.Alias, req.Reply, stdoutTx, stderrTx, a.Cancel)
}

func (o *Orchestrator) runAttachForwarder(
	forwarderID, alias string,
	reply chan protocol.ResponsePart,
	stdoutTx, stderrTx <-chan []byte,
	cancel <-chan struct{},
) {
	defer close(reply)
	for {
		select {
		case <-cancel:
			o.router.StopForwarding(alias)
			logger.Infof("attach %s: forwarder %s stopped", alias, forwarderID)
			reply <- protocol.Info("OK")
			return
		case b := <-stdoutTx:
			reply <- protocol.Stream(b)
		case b := <-stderrTx:
			reply <- protocol.Stream(b)
		}
	}
}

// handleDetach implements spec.md §4.3 Detach: stop forwarding whichever
// client is attached to alias.
func (o *Orchestrator) handleDetach(req Request, a DetachAction) {
	o.router.StopForwarding(a.Alias)
	o.replyOK(req)
}

// handleList implements spec.md §4.3 List.
func (o *Orchestrator) handleList(req Request) {
	req.Reply <- protocol.Info(renderList(o.jobs, o.registry))
	close(req.Reply)
}

// handleHelp implements spec.md §4.3 Help.
func (o *Orchestrator) handleHelp(req Request) {
	req.Reply <- protocol.Info(helpText)
	close(req.Reply)
}

// handleInput implements spec.md §4.3/§9 Input: forward bytes to alias's
// child's stdin.
func (o *Orchestrator) handleInput(req Request, a InputAction) {
	if err := o.router.Write(a.Alias, a.Data); err != nil {
		o.replyErr(req, err)
		return
	}
	o.replyOK(req)
}
