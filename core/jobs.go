package core

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/pocketsh/pocketsh/core/logger"
)

// Reaper discovers finished background children. It is polled once per
// main-loop tick and never blocks; finished jobs are therefore drained
// at most one per tick.
type Reaper struct {
	state *State
	out   io.Writer
	log   *logger.Logger
}

func NewReaper(state *State, out io.Writer, log *logger.Logger) *Reaper {
	return &Reaper{state: state, out: out, log: log}
}

// Poll performs a single non-blocking wildcard wait. If a background
// child has finished, its outcome is reported and the job forgotten.
// LastStatus is never touched here.
func (r *Reaper) Poll() {
	if !r.state.HasJobs() {
		return
	}

	var ws unix.WaitStatus
	pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
	if err != nil || pid <= 0 {
		return
	}

	job := r.state.TakeJob(pid)
	if job == nil {
		// Not one of ours; nothing to report.
		return
	}

	status := Status{Code: ws.ExitStatus()}
	if ws.Signaled() {
		status = Status{Signaled: true, Code: int(ws.Signal())}
	}

	fmt.Fprintf(r.out, "background pid %d is done: %s\n", pid, status)
	r.log.CommandDone(pid, status.String(), true)
}

// KillJobs delivers sig to every tracked background job's process
// group. Used by the exit builtin to avoid orphaning children.
func (r *Reaper) KillJobs(sig unix.Signal) {
	for _, job := range r.state.Jobs() {
		// Negative pid targets the job's process group.
		unix.Kill(-job.PID, sig)
	}
}
