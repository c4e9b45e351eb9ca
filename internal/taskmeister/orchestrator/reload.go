package orchestrator

import (
	"errors"

	"github.com/google/uuid"

	"github.com/migueldar/taskmeister/internal/taskmeister/service"
)

// handleReload implements spec.md §4.5: rebuild the Service Registry from
// disk, diff it against the live one, and synthesize a Stop or Restart
// against each affected Job. Added services are registered but never
// auto-started.
func (o *Orchestrator) handleReload(req Request) {
	// reloadID tags every diff-driven log line from this reload so operators
	// can correlate them in a daemon log carrying many interleaved requests.
	reloadID := uuid.NewString()

	next, err := service.Load(o.registryPaths)
	if err != nil {
		o.replyErr(req, err)
		return
	}

	diffs := o.registry.Diff(next)
	logger.Infof("reload %s: %d service(s) changed", reloadID, len(diffs))

	var firstErr error
	recordErr := func(err error) {
		if err == nil || errors.Is(err, ErrServiceStopped) || errors.Is(err, ErrJobNotFound) {
			return
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, d := range diffs {
		switch {
		case d.IsRemoved():
			logger.Infof("reload %s: removed %s", reloadID, d.Alias)
			o.registry.Delete(d.Alias)
			recordErr(o.stopJob(d.Alias, true, false))

		case d.IsChanged():
			logger.Infof("reload %s: changed %s", reloadID, d.Alias)
			if svc, ok := next.Get(d.Alias); ok {
				o.registry.Put(svc)
			}
			recordErr(o.stopJob(d.Alias, true, true))

		case d.IsAdded():
			logger.Infof("reload %s: added %s", reloadID, d.Alias)
			if svc, ok := next.Get(d.Alias); ok {
				o.registry.Put(svc)
			}
		}
	}

	if firstErr != nil {
		logger.Warnf("reload %s: failed: %v", reloadID, firstErr)
		o.replyErr(req, firstErr)
		return
	}
	logger.Infof("reload %s: OK", reloadID)
	o.replyOK(req)
}
