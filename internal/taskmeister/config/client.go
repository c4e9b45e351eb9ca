package config

import (
	"os"
	"path/filepath"
)

// Client is the taskmeister CLI's resolved configuration: the daemon to
// dial and where to persist readline history (spec.md §6 client flags).
type Client struct {
	ServerAddr  string
	HistoryFile string
}

// defaultHistoryFileName is the teacher-style dotfile name under the user's
// home directory.
const defaultHistoryFileName = ".taskmeister_history"

// DefaultHistoryFile resolves the default readline history path.
func DefaultHistoryFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, defaultHistoryFileName), nil
}
