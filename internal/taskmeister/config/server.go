// Package config decodes the daemon's and client's TOML/flag configuration
// surfaces (spec.md §6).
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/migueldar/taskmeister/internal/validator"
)

// Include names the directories the Service Registry loads service
// definitions from (spec.md §4.5, §6).
type Include struct {
	Paths []string `toml:"paths"`
}

// Start names the aliases the daemon starts automatically on boot (spec.md
// §4.4 "issues a Start for every alias in start.services").
type Start struct {
	Services []string `toml:"services"`
}

// Server is the daemon's TOML configuration file (spec.md §6).
type Server struct {
	ServerAddr string  `toml:"server_addr"`
	Logs       string  `toml:"logs"`
	Syslog     bool    `toml:"syslog"`
	LogLevel   string  `toml:"log_level"`
	Include    Include `toml:"include"`
	Start      Start   `toml:"start"`
}

// LoadServer decodes and validates the server config at path.
func LoadServer(path string) (*Server, error) {
	var cfg Server
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("decode server config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Server) validate() error {
	v := validator.New()
	v.Assert(c.ServerAddr != "", "server_addr is required")
	v.Assert(len(c.Include.Paths) > 0, "include.paths must name at least one directory")
	return v.Err()
}
