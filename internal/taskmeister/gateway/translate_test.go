package gateway

import (
	"testing"

	"github.com/migueldar/taskmeister/internal/taskmeister/orchestrator"
	"github.com/migueldar/taskmeister/internal/taskmeister/protocol"
)

func TestTranslate(t *testing.T) {
	tests := map[string]struct {
		req     protocol.Request
		wantErr bool
		check   func(t *testing.T, a orchestrator.Action)
	}{
		"start": {
			req: protocol.Request{Command: protocol.CmdStart, Args: []string{"web"}},
			check: func(t *testing.T, a orchestrator.Action) {
				sa, ok := a.(orchestrator.StartAction)
				if !ok || sa.Alias != "web" {
					t.Fatalf("translate() = %#v, want StartAction{web}", a)
				}
			},
		},
		"restart sets restart_job": {
			req: protocol.Request{Command: protocol.CmdRestartShort, Args: []string{"web"}},
			check: func(t *testing.T, a orchestrator.Action) {
				sa, ok := a.(orchestrator.StopAction)
				if !ok || sa.Alias != "web" || !sa.RestartJob {
					t.Fatalf("translate() = %#v, want StopAction{web, RestartJob: true}", a)
				}
			},
		},
		"stream overrides command": {
			req: protocol.Request{Command: protocol.CmdList, Args: []string{"web"}, Stream: []byte("input")},
			check: func(t *testing.T, a orchestrator.Action) {
				ia, ok := a.(orchestrator.InputAction)
				if !ok || ia.Alias != "web" || string(ia.Data) != "input" {
					t.Fatalf("translate() = %#v, want InputAction{web, input}", a)
				}
			},
		},
		"list needs no args": {
			req: protocol.Request{Command: protocol.CmdListShort},
			check: func(t *testing.T, a orchestrator.Action) {
				if _, ok := a.(orchestrator.ListAction); !ok {
					t.Fatalf("translate() = %#v, want ListAction", a)
				}
			},
		},
		"unrecognized command": {
			req:     protocol.Request{Command: "bogus", Args: []string{"web"}},
			wantErr: true,
		},
		"start requires exactly one arg": {
			req:     protocol.Request{Command: protocol.CmdStart},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			action, err := translate(tc.req)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("translate() error = nil, want an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("translate() error = %v", err)
			}
			tc.check(t, action)
		})
	}
}
