package core

import (
	"io"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

var (
	enterForegroundOnlyNotice = []byte("\nEntering foreground-only mode (& is now ignored)\n")
	exitForegroundOnlyNotice  = []byte("\nExiting foreground-only mode\n")
)

// SignalPolicy owns the interpreter's process-wide signal dispositions.
//
// The shell itself discards SIGINT so an interrupt aimed at the
// terminal's process group only ever kills the foreground child.
// SIGTSTP is claimed by the policy and toggles foreground-only mode
// instead of stopping the shell.
type SignalPolicy struct {
	state  *State
	tty    io.Writer
	prompt []byte

	sigs chan os.Signal
	done chan struct{}
}

// NewSignalPolicy returns an uninstalled policy that reports mode
// changes to tty. prompt is re-printed after each notice so the user
// isn't left staring at a blank line.
func NewSignalPolicy(state *State, tty io.Writer, prompt string) *SignalPolicy {
	return &SignalPolicy{
		state:  state,
		tty:    tty,
		prompt: []byte(prompt),
	}
}

// Install claims SIGINT and SIGTSTP and starts the watcher. Both are
// caught, not set to SIG_IGN: an ignored disposition survives exec and
// would leave every spawned child immune to Ctrl+C, while a caught one
// reverts to the default in children. Callers must eventually call
// Uninstall.
func (p *SignalPolicy) Install() {
	p.sigs = make(chan os.Signal, 4)
	p.done = make(chan struct{})
	signal.Notify(p.sigs, unix.SIGINT, unix.SIGTSTP)

	go func() {
		defer close(p.done)
		for sig := range p.sigs {
			if sig == unix.SIGTSTP {
				p.toggle()
			}
			// SIGINT is swallowed: the shell is immune, and the
			// terminal delivers the interrupt to the foreground child
			// on its own.
		}
	}()
}

// Uninstall restores default dispositions and stops the watcher.
func (p *SignalPolicy) Uninstall() {
	signal.Stop(p.sigs)
	close(p.sigs)
	<-p.done
}

// KeyboardStop handles a Ctrl+Z typed at the prompt. The line editor
// holds the terminal in raw mode while reading, so the keypress never
// becomes a SIGTSTP; it is routed here instead.
func (p *SignalPolicy) KeyboardStop() {
	p.toggle()
}

// toggle flips foreground-only mode and reports it. The notice and the
// prompt go out in a single Write so they can't interleave with other
// output.
func (p *SignalPolicy) toggle() {
	notice := exitForegroundOnlyNotice
	if p.state.toggleForegroundOnly() {
		notice = enterForegroundOnlyNotice
	}

	buf := make([]byte, 0, len(notice)+len(p.prompt))
	buf = append(buf, notice...)
	buf = append(buf, p.prompt...)
	p.tty.Write(buf)
}
