package core

import (
	"fmt"
	"sync/atomic"
)

// NoForegroundPID is the sentinel value for ForegroundPID when no
// foreground child is running.
const NoForegroundPID = -1

// Status is the terminal outcome of a completed process, either a
// normal exit code or the number of the signal that killed it.
type Status struct {
	Signaled bool
	Code     int
}

func (s Status) String() string {
	if s.Signaled {
		return fmt.Sprintf("terminated by signal %d", s.Code)
	}
	return fmt.Sprintf("exit value %d", s.Code)
}

// State holds the interpreter-wide mutable state shared between the
// main loop and the stop-signal handler.
//
// Every field except foregroundOnly is confined to the main loop.
// foregroundOnly is the single value crossing the asynchronous
// boundary, so it is the only one that needs atomic access.
type State struct {
	// ForegroundPID is the child currently occupying the foreground,
	// or NoForegroundPID. The kernel delivers terminal interrupts to
	// the whole foreground process group on its own, so nothing
	// consults this at signal time; it records which child the main
	// loop is committed to waiting on, for builtins and tests to
	// inspect.
	ForegroundPID int

	// LastStatus is the outcome of the most recent foreground child.
	// Background completions never touch it.
	LastStatus Status

	foregroundOnly int32

	jobs map[int]*Job
}

func NewState() *State {
	return &State{
		ForegroundPID: NoForegroundPID,
		jobs:          make(map[int]*Job),
	}
}

// ForegroundOnly reports whether the trailing background marker is
// currently ignored.
func (s *State) ForegroundOnly() bool {
	return atomic.LoadInt32(&s.foregroundOnly) != 0
}

// toggleForegroundOnly flips the foreground-only flag and returns the
// new value. Called only from the stop-signal handler.
func (s *State) toggleForegroundOnly() bool {
	for {
		old := atomic.LoadInt32(&s.foregroundOnly)
		if atomic.CompareAndSwapInt32(&s.foregroundOnly, old, 1-old) {
			return old == 0
		}
	}
}

// Job is one unreaped background child.
type Job struct {
	PID  int
	Argv []string
}

func (s *State) AddJob(j *Job) {
	s.jobs[j.PID] = j
}

// TakeJob removes and returns the job for pid, or nil if the pid is
// not a tracked background child.
func (s *State) TakeJob(pid int) *Job {
	j, ok := s.jobs[pid]
	if !ok {
		return nil
	}
	delete(s.jobs, pid)
	return j
}

// HasJobs reports whether any background children remain unreaped.
func (s *State) HasJobs() bool {
	return len(s.jobs) > 0
}

// Jobs returns the live background jobs in no particular order.
func (s *State) Jobs() []*Job {
	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out
}
