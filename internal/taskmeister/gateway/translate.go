package gateway

import (
	"fmt"

	"github.com/migueldar/taskmeister/internal/taskmeister/orchestrator"
	"github.com/migueldar/taskmeister/internal/taskmeister/protocol"
)

// translate maps a wire protocol.Request to an orchestrator.Action
// (spec.md §6). A non-nil Stream always means interactive stdin input,
// regardless of Command, per spec.md §6 and the Attach Open Question
// resolution in SPEC_FULL.md.
func translate(r protocol.Request) (orchestrator.Action, error) {
	if len(r.Stream) > 0 {
		alias, err := soleArg(r)
		if err != nil {
			return nil, err
		}
		return orchestrator.InputAction{Alias: alias, Data: r.Stream}, nil
	}

	switch r.Command {
	case protocol.CmdStart, protocol.CmdStartShort:
		alias, err := soleArg(r)
		if err != nil {
			return nil, err
		}
		return orchestrator.StartAction{Alias: alias}, nil

	case protocol.CmdStop, protocol.CmdStopShort:
		alias, err := soleArg(r)
		if err != nil {
			return nil, err
		}
		return orchestrator.StopAction{Alias: alias}, nil

	case protocol.CmdRestart, protocol.CmdRestartShort:
		alias, err := soleArg(r)
		if err != nil {
			return nil, err
		}
		return orchestrator.StopAction{Alias: alias, RestartJob: true}, nil

	case protocol.CmdStatus, protocol.CmdStatusShort:
		alias, err := soleArg(r)
		if err != nil {
			return nil, err
		}
		return orchestrator.StatusAction{Alias: alias}, nil

	case protocol.CmdAttach, protocol.CmdAttachShort:
		alias, err := soleArg(r)
		if err != nil {
			return nil, err
		}
		return orchestrator.AttachAction{Alias: alias}, nil

	case protocol.CmdDetach, protocol.CmdDetachShort:
		alias, err := soleArg(r)
		if err != nil {
			return nil, err
		}
		return orchestrator.DetachAction{Alias: alias}, nil

	case protocol.CmdReload, protocol.CmdReloadShort:
		return orchestrator.ReloadAction{}, nil

	case protocol.CmdList, protocol.CmdListShort:
		return orchestrator.ListAction{}, nil

	case protocol.CmdHelp, protocol.CmdHelpShort:
		return orchestrator.HelpAction{}, nil

	default:
		return nil, fmt.Errorf("unrecognized command: %q", r.Command)
	}
}

func soleArg(r protocol.Request) (string, error) {
	if len(r.Args) != 1 {
		return "", fmt.Errorf("command %q requires exactly one alias argument", r.Command)
	}
	return r.Args[0], nil
}
