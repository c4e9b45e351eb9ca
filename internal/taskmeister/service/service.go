// Package service provides the declarative description of a supervised
// process (Service) and the on-disk registry that loads and diffs them.
package service

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/migueldar/taskmeister/internal/taskmeister/tsignal"
)

// RestartKind is a closed sum type over the ways a Job may be restarted
// after it exits. spec.md §3 calls this `restart ∈ { Never, Always(n),
// OnError(n) }`.
type RestartKind string

const (
	// RestartNever never restarts a finished Job.
	RestartNever RestartKind = "never"
	// RestartAlways restarts a finished Job regardless of exit code, up to
	// Max times.
	RestartAlways RestartKind = "always"
	// RestartOnError restarts a finished Job whose exit code is not in
	// ExitCodes, up to Max times.
	RestartOnError RestartKind = "on_error"
)

// Restart describes the restart policy of a Service.
type Restart struct {
	Kind RestartKind
	// Max is the retry ceiling (0-255). Unused when Kind is RestartNever.
	Max uint8
}

// document is the on-disk shape of a Service definition. It mirrors
// spec.md §3 field-for-field; stop_signal is a symbolic name resolved by
// tsignal.Parse.
type document struct {
	Alias       string            `toml:"alias"`
	Cmd         string            `toml:"cmd"`
	Restart     string            `toml:"restart"`
	RestartMax  uint8             `toml:"restart_max"`
	StartTime   uint32            `toml:"start_time"`
	StopSignal  string            `toml:"stop_signal"`
	StopWait    uint32            `toml:"stop_wait"`
	ExitCodes   []int             `toml:"exit_codes"`
	Stdout      string            `toml:"stdout"`
	Stderr      string            `toml:"stderr"`
	Env         map[string]string `toml:"env"`
	WorkingDir  string            `toml:"working_dir"`
}

// Service is the immutable description of a supervised process, loaded from
// disk. See spec.md §3.
type Service struct {
	Alias      string
	Cmd        string
	Restart    Restart
	StartTime  uint32
	StopSignal int
	StopWait   uint32
	ExitCodes  map[int]struct{}
	Stdout     string
	Stderr     string
	Env        map[string]string
	WorkingDir string
	SourceFile string
}

// Null is the literal sink value meaning "discard output" (spec.md §3).
const Null = "null"

// LoadFile parses a single Service definition from the TOML file at path.
func LoadFile(path string) (*Service, error) {
	var doc document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("decode service %s: %w", path, err)
	}
	if doc.Alias == "" {
		return nil, fmt.Errorf("service %s: alias is required", path)
	}
	if doc.Cmd == "" {
		return nil, fmt.Errorf("service %s: cmd is required", path)
	}

	restart, err := parseRestart(doc.Restart, doc.RestartMax)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", path, err)
	}

	stopSignal := 15 // SIGTERM
	if doc.StopSignal != "" {
		sig, err := tsignal.Parse(doc.StopSignal)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", path, err)
		}
		stopSignal = int(sig)
	}

	exitCodes := make(map[int]struct{}, len(doc.ExitCodes))
	for _, code := range doc.ExitCodes {
		exitCodes[code] = struct{}{}
	}

	stdout := doc.Stdout
	if stdout == "" {
		stdout = Null
	}
	stderr := doc.Stderr
	if stderr == "" {
		stderr = Null
	}

	return &Service{
		Alias:      doc.Alias,
		Cmd:        doc.Cmd,
		Restart:    restart,
		StartTime:  doc.StartTime,
		StopSignal: stopSignal,
		StopWait:   doc.StopWait,
		ExitCodes:  exitCodes,
		Stdout:     stdout,
		Stderr:     stderr,
		Env:        doc.Env,
		WorkingDir: doc.WorkingDir,
		SourceFile: path,
	}, nil
}

func parseRestart(kind string, max uint8) (Restart, error) {
	switch RestartKind(kind) {
	case "", RestartNever:
		return Restart{Kind: RestartNever}, nil
	case RestartAlways:
		return Restart{Kind: RestartAlways, Max: max}, nil
	case RestartOnError:
		return Restart{Kind: RestartOnError, Max: max}, nil
	default:
		return Restart{}, fmt.Errorf("unrecognized restart kind: %q", kind)
	}
}

// Equal reports whether two Services describe the same process, ignoring
// SourceFile (which is a loader artifact, not part of the declaration
// itself). Used by Registry.Diff (spec.md §4.5).
func (s Service) Equal(other Service) bool {
	if s.Alias != other.Alias ||
		s.Cmd != other.Cmd ||
		s.Restart != other.Restart ||
		s.StartTime != other.StartTime ||
		s.StopSignal != other.StopSignal ||
		s.StopWait != other.StopWait ||
		s.Stdout != other.Stdout ||
		s.Stderr != other.Stderr ||
		s.WorkingDir != other.WorkingDir {
		return false
	}
	if len(s.ExitCodes) != len(other.ExitCodes) {
		return false
	}
	for code := range s.ExitCodes {
		if _, ok := other.ExitCodes[code]; !ok {
			return false
		}
	}
	if len(s.Env) != len(other.Env) {
		return false
	}
	for k, v := range s.Env {
		if other.Env[k] != v {
			return false
		}
	}
	return true
}
