package orchestrator

import "github.com/migueldar/taskmeister/internal/taskmeister/protocol"

// Action is the closed sum type of operations a client Request decodes into
// (spec.md §4.3 "Transitions on Requests"). Gateway is responsible for
// mapping a wire protocol.Request to one of these.
type Action interface{ isAction() }

// StartAction starts alias.
type StartAction struct{ Alias string }

// StopAction stops alias, leaving the single-shot flags recorded on the Job
// for the Finished transition that follows (spec.md §4.3).
type StopAction struct {
	Alias         string
	RemoveService bool
	RestartJob    bool
}

// StatusAction produces a text status report for alias.
type StatusAction struct{ Alias string }

// AttachAction begins streaming alias's stdout/stderr to the requester.
// Cancel is closed by the Gateway when the underlying connection goes away,
// telling the forwarder goroutine to issue StopForwarding and stop
// (spec.md §4.2 "until the peer hangs up").
type AttachAction struct {
	Alias  string
	Cancel <-chan struct{}
}

// DetachAction stops forwarding alias's stdio to whichever client is
// attached.
type DetachAction struct{ Alias string }

// ReloadAction rebuilds the Service Registry from disk and reconciles Jobs
// against the diff (spec.md §4.5).
type ReloadAction struct{}

// ListAction reports every known alias and its current status.
type ListAction struct{}

// HelpAction reports static help text.
type HelpAction struct{}

// InputAction forwards bytes into alias's child's stdin (spec.md §4.3, §9).
type InputAction struct {
	Alias string
	Data  []byte
}

func (StartAction) isAction()  {}
func (StopAction) isAction()   {}
func (StatusAction) isAction() {}
func (AttachAction) isAction() {}
func (DetachAction) isAction() {}
func (ReloadAction) isAction() {}
func (ListAction) isAction()   {}
func (HelpAction) isAction()   {}
func (InputAction) isAction()  {}

// Request pairs an Action with the channel its ResponseParts should be
// written to. The Gateway closes nothing; the Orchestrator closes Reply once
// it has produced its final part (spec.md §4.4: "zero, one, or many
// ResponseParts").
type Request struct {
	Action Action
	Reply  chan protocol.ResponsePart
}

// NewRequest builds a Request with a freshly allocated reply channel.
func NewRequest(action Action) Request {
	return Request{Action: action, Reply: make(chan protocol.ResponsePart, 4)}
}
