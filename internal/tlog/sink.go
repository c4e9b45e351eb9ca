package tlog

import (
	"io"
	"log/syslog"
)

// Sinks builds the io.Writer the daemon logs to, given the already-opened
// log writer (a file or stdout) and whether syslog should also receive a
// copy of every log line.
func Sinks(file io.Writer, useSyslog bool) (io.Writer, error) {
	if !useSyslog {
		return file, nil
	}

	w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "taskmeisterd")
	if err != nil {
		return nil, err
	}

	return io.MultiWriter(file, w), nil
}
