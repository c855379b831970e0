// Package core implements the interactive interpreter: the read loop,
// signal policy, redirection, process launching and background job
// reaping.
package core

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abiosoft/readline"

	"github.com/pocketsh/pocketsh/core/config"
	"github.com/pocketsh/pocketsh/core/logger"
	"github.com/pocketsh/pocketsh/core/ttylog"
)

// Shell is one interactive interpreter session bound to the current
// terminal.
type Shell struct {
	Config   *config.Configuration
	State    *State
	Readline *readline.Instance

	policy   *SignalPolicy
	launcher *Launcher
	reaper   *Reaper
	log      *logger.Logger

	msgw io.Writer
	errw io.Writer

	pid     int
	quit    bool
	toClose listCloser
}

// NewShell wires a session together from the configuration: readline
// on the terminal, the optional asciicast recorder, the signal policy
// and the process machinery.
func NewShell(cfg *config.Configuration, log *logger.Logger) (*Shell, error) {
	state := NewState()
	policy := NewSignalPolicy(state, os.Stdout, cfg.Prompt)

	var toClose listCloser
	stdin := io.Reader(os.Stdin)
	msgw := io.Writer(os.Stdout)
	errw := io.Writer(os.Stderr)

	if cfg.RecordSessions {
		name := fmt.Sprintf("%s.%s", time.Now().Format(time.RFC3339), ttylog.AsciicastFileExt)
		castFd, err := cfg.CreateSessionCast(name)
		if err != nil {
			return nil, fmt.Errorf("opening session recording: %w", err)
		}
		toClose = append(toClose, castFd)

		recorder := NewRecorder(ttylog.NewAsciicastLogSink(castFd))
		stdin = recorder.Input(stdin)
		msgw = recorder.Output(msgw)
		errw = recorder.Output(errw)
	}

	rlCfg := &readline.Config{
		Prompt:              cfg.Prompt,
		Stdin:               readline.NewCancelableStdin(stdin),
		Stdout:              msgw,
		Stderr:              errw,
		FuncFilterInputRune: keyboardStopFilter(policy),
	}
	if err := rlCfg.Init(); err != nil {
		toClose.Close()
		return nil, err
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		toClose.Close()
		return nil, err
	}
	toClose = append(toClose, rl)

	pid := os.Getpid()
	env := cfg.Environ(os.Environ())
	tty := TTY{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}

	return &Shell{
		Config:   cfg,
		State:    state,
		Readline: rl,
		policy:   policy,
		launcher: NewLauncher(state, tty, msgw, errw, log, env),
		reaper:   NewReaper(state, msgw, log),
		log:      log,
		msgw:     msgw,
		errw:     errw,
		pid:      pid,
		toClose:  toClose,
	}, nil
}

// Run reads and dispatches commands until exit or end of input. The
// returned error is non-nil only for fatal conditions; per-command
// failures are reported inline and the loop continues.
func (s *Shell) Run() error {
	s.policy.Install()
	defer s.policy.Uninstall()

	s.log.SessionStart(s.pid)

	for !s.quit {
		// One reap attempt per tick, before the prompt comes back.
		s.reaper.Poll()

		line, err := s.Readline.Readline()
		switch {
		case err == io.EOF:
			return nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupts between commands are ignored.
			continue

		case err != nil:
			return fmt.Errorf("reading input: %w", err)
		}

		s.Dispatch(line)
	}
	return nil
}

// Dispatch expands, tokenizes and routes one raw input line.
func (s *Shell) Dispatch(line string) {
	line = ExpandPID(line, s.pid)

	tokens, err := Tokenize(line)
	if err != nil {
		fmt.Fprintln(s.errw, err)
		s.log.InvalidInvocation([]string{line}, err)
		return
	}

	if IsNoop(tokens) {
		return
	}

	if builtin, ok := AllBuiltins[tokens[0]]; ok {
		s.log.BuiltinUsed(tokens[0])
		builtin.Main(s, tokens)
		return
	}

	inv, err := ParseInvocation(tokens)
	if err != nil {
		fmt.Fprintln(s.errw, err)
		s.log.InvalidInvocation(tokens, err)
		return
	}

	if err := s.launcher.Launch(inv); err != nil {
		// Process creation itself failed; without it the interpreter
		// can't do its job.
		fmt.Fprintln(s.errw, err)
		s.quit = true
	}
}

func (s *Shell) Close() error {
	return s.toClose.Close()
}

// keyboardStopFilter intercepts Ctrl+Z before readline's default
// dispatch. Readline would otherwise try to suspend the process with a
// self-sent SIGTSTP, which the signal policy catches, leaving readline
// waiting forever for a resume that never comes. The rune is dropped
// and the keypress toggles foreground-only mode like a real SIGTSTP.
func keyboardStopFilter(policy *SignalPolicy) func(rune) (rune, bool) {
	return func(r rune) (rune, bool) {
		if r == readline.CharCtrlZ {
			policy.KeyboardStop()
			return r, false
		}
		return r, true
	}
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
