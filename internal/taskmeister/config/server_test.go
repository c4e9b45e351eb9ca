package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/migueldar/taskmeister/internal/validator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskmeisterd.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadServer(t *testing.T) {
	tests := map[string]struct {
		body    string
		wantErr bool
		check   func(t *testing.T, cfg *Server)
	}{
		"minimal": {
			body: `
server_addr = "127.0.0.1:9090"
include.paths = ["/etc/taskmeister/services.d"]
`,
			check: func(t *testing.T, cfg *Server) {
				if cfg.ServerAddr != "127.0.0.1:9090" {
					t.Errorf("ServerAddr = %q", cfg.ServerAddr)
				}
				if len(cfg.Include.Paths) != 1 || cfg.Include.Paths[0] != "/etc/taskmeister/services.d" {
					t.Errorf("Include.Paths = %v", cfg.Include.Paths)
				}
			},
		},
		"full": {
			body: `
server_addr = "0.0.0.0:9090"
logs = "/var/log/taskmeisterd.log"
syslog = true
log_level = "debug"
include.paths = ["/etc/taskmeister/services.d", "/opt/extra"]
start.services = ["web", "worker"]
`,
			check: func(t *testing.T, cfg *Server) {
				if !cfg.Syslog || cfg.LogLevel != "debug" || cfg.Logs != "/var/log/taskmeisterd.log" {
					t.Errorf("cfg = %+v", cfg)
				}
				if len(cfg.Start.Services) != 2 || cfg.Start.Services[0] != "web" {
					t.Errorf("Start.Services = %v", cfg.Start.Services)
				}
			},
		},
		"missing server_addr": {
			body: `
include.paths = ["/etc/taskmeister/services.d"]
`,
			wantErr: true,
		},
		"missing include paths": {
			body: `
server_addr = "127.0.0.1:9090"
`,
			wantErr: true,
		},
		"malformed toml": {
			body:    `this is not = toml [[[`,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			cfg, err := LoadServer(path)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("LoadServer() error = nil, want an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadServer() error = %v", err)
			}
			tc.check(t, cfg)
		})
	}
}

func TestLoadServerMissingFile(t *testing.T) {
	if _, err := LoadServer(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("LoadServer() error = nil, want an error for a missing file")
	}
}

func TestServerValidateWrapsInvalidInput(t *testing.T) {
	cfg := Server{}
	err := cfg.validate()
	if !errors.Is(err, validator.ErrInvalidInput) {
		t.Fatalf("validate() error = %v, want it to wrap validator.ErrInvalidInput", err)
	}
}
