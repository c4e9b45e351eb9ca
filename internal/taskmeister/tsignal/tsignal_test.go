package tsignal

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		name    string
		want    unix.Signal
		wantErr bool
	}{
		"bare name":      {name: "TERM", want: unix.SIGTERM},
		"sig prefix":     {name: "SIGTERM", want: unix.SIGTERM},
		"lowercase":      {name: "term", want: unix.SIGTERM},
		"kill":           {name: "KILL", want: unix.SIGKILL},
		"with whitespace": {name: " HUP ", want: unix.SIGHUP},
		"unknown":        {name: "NOTASIGNAL", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(tc.name)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) error = nil, want an error", tc.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tc.name, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}
