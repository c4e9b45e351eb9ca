package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/migueldar/taskmeister/internal/taskmeister/job"
	"github.com/migueldar/taskmeister/internal/taskmeister/service"
)

// renderStatus formats the text report for the Status command (spec.md §6).
func renderStatus(j *job.Job, svc service.Service, hasSvc bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "alias: %s\n", j.Alias)
	fmt.Fprintf(&b, "status: %s\n", j.Status)
	fmt.Fprintf(&b, "retries: %d\n", j.Retries)
	fmt.Fprintf(&b, "last_exit_code: %d\n", j.LastExitCode)
	if !j.StartedAt.IsZero() {
		fmt.Fprintf(&b, "started_at: %s\n", j.StartedAt.Format(time.RFC3339))
	}

	source := "unknown"
	if hasSvc {
		source = svc.SourceFile
	}
	fmt.Fprintf(&b, "source_file: %s\n", source)

	pids := 0
	if j.Status.IsStarting() || j.Status.IsRunning() || j.Status.IsStopping() {
		pids = 1
	}
	fmt.Fprintf(&b, "pids: %d\n", pids)

	return b.String()
}

// renderList formats the text report for the List command: every known
// Service, its current status (or "not started" if no Job exists yet), and
// its source file (spec.md §6, §9 "List output includes status, retries,
// source file").
func renderList(jobs *job.Table, registry *service.Registry) string {
	var b strings.Builder

	for _, svc := range registry.All() {
		status := "not started"
		retries := 0
		if j, ok := jobs.Get(svc.Alias); ok {
			status = j.Status.String()
			retries = j.Retries
		}
		fmt.Fprintf(&b, "%s\t%s\tretries=%d\t%s\n", svc.Alias, status, retries, svc.SourceFile)
	}

	return b.String()
}

const helpText = `commands:
  start|st <alias>       start a service
  stop|sp <alias>        stop a service
  restart|rs <alias>     stop and restart a service
  status|stat <alias>    show a service's status and recent output
  attach|at <alias>      stream a service's stdout/stderr (stdin is not forwarded)
  detach|dt <alias>      stop an active attach stream
  reload|rl              reload service definitions from disk
  list|ls                list every known service
  help|?                 show this text
  stop_server            shut down the daemon
`
