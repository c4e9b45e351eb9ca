// Package tsignal provides utilities for translating between the symbolic
// signal names used in service definitions and the POSIX signal numbers the
// kernel expects, and for delivering those signals to supervised children.
package tsignal

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// byName maps the canonical (no "SIG" prefix) signal name to its numeric
// value on this platform.
var byName = map[string]unix.Signal{
	"HUP":    unix.SIGHUP,
	"INT":    unix.SIGINT,
	"QUIT":   unix.SIGQUIT,
	"ILL":    unix.SIGILL,
	"TRAP":   unix.SIGTRAP,
	"ABRT":   unix.SIGABRT,
	"BUS":    unix.SIGBUS,
	"FPE":    unix.SIGFPE,
	"KILL":   unix.SIGKILL,
	"USR1":   unix.SIGUSR1,
	"SEGV":   unix.SIGSEGV,
	"USR2":   unix.SIGUSR2,
	"PIPE":   unix.SIGPIPE,
	"ALRM":   unix.SIGALRM,
	"TERM":   unix.SIGTERM,
	"CHLD":   unix.SIGCHLD,
	"CONT":   unix.SIGCONT,
	"STOP":   unix.SIGSTOP,
	"TSTP":   unix.SIGTSTP,
	"TTIN":   unix.SIGTTIN,
	"TTOU":   unix.SIGTTOU,
	"URG":    unix.SIGURG,
	"XCPU":   unix.SIGXCPU,
	"XFSZ":   unix.SIGXFSZ,
	"VTALRM": unix.SIGVTALRM,
	"PROF":   unix.SIGPROF,
	"WINCH":  unix.SIGWINCH,
	"IO":     unix.SIGIO,
	"SYS":    unix.SIGSYS,
}

// Parse resolves a symbolic signal name (with or without the leading "SIG",
// case-insensitive) into its numeric value. Service definitions (spec.md §6)
// carry stop_signal this way.
func Parse(name string) (unix.Signal, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "SIG")
	sig, ok := byName[trimmed]
	if !ok {
		return 0, fmt.Errorf("unrecognized signal name: %q", name)
	}
	return sig, nil
}

// Send delivers sig to the process identified by pid.
func Send(pid int, sig unix.Signal) error {
	return unix.Kill(pid, sig)
}
