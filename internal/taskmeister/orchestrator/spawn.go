package orchestrator

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	ierrors "github.com/migueldar/taskmeister/internal/errors"
	"github.com/migueldar/taskmeister/internal/taskmeister/service"
)

// spawned is the result of spawnService: the running *exec.Cmd plus the
// parent's ends of the three pipes, already set non-blocking and ready to
// hand to the I/O Router (spec.md §4.3 Start, §9 "fcntl O_NONBLOCK").
type spawned struct {
	pid                                     int
	parentStdout, parentStderr, parentStdin *os.File
}

// spawnService starts svc's command with freshly created stdout/stderr/stdin
// pipes. Unlike cmd.StdoutPipe(), the pipes are created directly so the
// parent's fds can be switched to non-blocking mode and handed to the I/O
// Router; the child's ends are closed in the parent immediately after Start
// to avoid masking the child's own EOF.
func spawnService(svc service.Service) (*spawned, error) {
	fields := strings.Fields(svc.Cmd)
	if len(fields) == 0 {
		return nil, fmt.Errorf("service %s: empty cmd", svc.Alias)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, ierrors.Wrap(fmt.Errorf("stdout pipe: %w", err))
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, ierrors.Wrap(fmt.Errorf("stderr pipe: %w", err))
	}
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		return nil, ierrors.Wrap(fmt.Errorf("stdin pipe: %w", err))
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Dir = svc.WorkingDir
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	cmd.Stdin = stdinR
	cmd.Env = mergeEnv(svc.Env)

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		stdinR.Close()
		stdinW.Close()
		return nil, ierrors.Wrap(fmt.Errorf("start %s: %w", svc.Cmd, err))
	}

	// The child inherited its own copies of these fds; close the parent's
	// so the child's exit is the only thing that can signal EOF on them.
	stdoutW.Close()
	stderrW.Close()
	stdinR.Close()

	for _, f := range []*os.File{stdoutR, stderrR, stdinW} {
		if err := unix.SetNonblock(int(f.Fd()), true); err != nil {
			logger.Warnf("service %s: set nonblock on fd %d: %v", svc.Alias, f.Fd(), err)
		}
	}

	return &spawned{
		pid:          cmd.Process.Pid,
		parentStdout: stdoutR,
		parentStderr: stderrR,
		parentStdin:  stdinW,
	}, nil
}

// mergeEnv supplements the daemon's own environment with svc's declared
// overrides (spec.md §3 Service.env).
func mergeEnv(env map[string]string) []string {
	if len(env) == 0 {
		return os.Environ()
	}
	merged := os.Environ()
	for k, v := range env {
		merged = append(merged, k+"="+v)
	}
	return merged
}
