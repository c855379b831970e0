package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/pocketsh/pocketsh/core/logger"
)

// ErrLaunchFatal wraps process-creation failures the interpreter
// cannot recover from. Everything else the launcher reports inline and
// the main loop carries on.
var ErrLaunchFatal = errors.New("cannot create processes")

// Launcher spawns external commands, waiting synchronously for
// foreground jobs and registering background jobs for the reaper.
//
// Children inherit the launcher's terminal files directly; msgw and
// errw are where the launcher's own notices and diagnostics go, which
// may be wrapped (e.g. by the session recorder).
type Launcher struct {
	state *State
	tty   TTY
	msgw  io.Writer
	errw  io.Writer
	log   *logger.Logger
	env   []string
}

// TTY holds the real terminal files unredirected foreground children
// inherit.
type TTY struct {
	In  *os.File
	Out *os.File
	Err *os.File
}

func NewLauncher(state *State, tty TTY, msgw, errw io.Writer, log *logger.Logger, env []string) *Launcher {
	return &Launcher{
		state: state,
		tty:   tty,
		msgw:  msgw,
		errw:  errw,
		log:   log,
		env:   env,
	}
}

// Launch runs one parsed invocation. The returned error is non-nil
// only for fatal conditions (see ErrLaunchFatal); ordinary command
// failures are printed and reflected in LastStatus.
func (l *Launcher) Launch(inv *Invocation) error {
	// A background request is discarded, not rejected, while
	// foreground-only mode is active.
	background := inv.Background && !l.state.ForegroundOnly()

	path, err := exec.LookPath(inv.Argv[0])
	if err != nil {
		fmt.Fprintf(l.errw, "%s: command not found\n", inv.Argv[0])
		l.log.InvalidInvocation(inv.Argv, err)
		if !background {
			l.state.LastStatus = Status{Code: 1}
		}
		return nil
	}

	stdio, err := ResolveRedirects(inv, background)
	if err != nil {
		fmt.Fprintf(l.errw, "%s\n", err)
		l.log.InvalidInvocation(inv.Argv, err)
		return nil
	}
	defer stdio.Close()

	stdin, stdout := stdio.In, stdio.Out
	if stdin == nil {
		stdin = l.tty.In
	}
	if stdout == nil {
		stdout = l.tty.Out
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   inv.Argv,
		Env:    l.env,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: l.tty.Err,
	}
	if background {
		// Detach background children into their own process group so
		// a terminal interrupt only reaches the foreground job.
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	if err := cmd.Start(); err != nil {
		if isForkFailure(err) {
			return fmt.Errorf("%w: %v", ErrLaunchFatal, err)
		}
		fmt.Fprintf(l.errw, "%s: %v\n", inv.Argv[0], err)
		l.log.InvalidInvocation(inv.Argv, err)
		if !background {
			l.state.LastStatus = Status{Code: 1}
		}
		return nil
	}

	pid := cmd.Process.Pid
	l.log.RunCommand(inv.Argv, path, pid, background)

	if background {
		fmt.Fprintf(l.msgw, "Background pid is %d\n", pid)
		l.state.AddJob(&Job{PID: pid, Argv: inv.Argv})
		return nil
	}

	l.state.ForegroundPID = pid
	status := waitForeground(pid)
	l.state.ForegroundPID = NoForegroundPID

	l.state.LastStatus = status
	if status.Signaled {
		fmt.Fprintf(l.msgw, "%s\n", status)
	}
	l.log.CommandDone(pid, status.String(), false)
	return nil
}

// waitForeground blocks until pid terminates and returns its outcome.
// The wait targets the specific pid so simultaneously finished
// background children are left for the reaper.
func waitForeground(pid int) Status {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || wpid != pid {
			return Status{Code: 1}
		}
		switch {
		case ws.Exited():
			return Status{Code: ws.ExitStatus()}
		case ws.Signaled():
			return Status{Signaled: true, Code: int(ws.Signal())}
		default:
			// Stopped or continued; keep waiting for termination.
		}
	}
}

func isForkFailure(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOMEM)
}
