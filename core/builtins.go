package core

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// AllBuiltins holds every registered shell builtin, keyed by name.
// Builtins are recognized only as the first word of a line and run in
// the interpreter's own process.
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Exit terminates the interpreter, first signaling every outstanding
// background job so nothing is orphaned.
func Exit(s *Shell, args []string) int {
	s.reaper.KillJobs(unix.SIGTERM)
	s.quit = true
	return 0
}

// PrintStatus reports the outcome of the last foreground command.
// Builtins and background jobs never change what it prints.
func PrintStatus(s *Shell, args []string) int {
	fmt.Fprintf(s.msgw, "%s\n", s.State.LastStatus)
	return 0
}

// Cd changes the working directory, defaulting to $HOME. Failures are
// reported but deliberately leave LastStatus alone.
func Cd(s *Shell, args []string) int {
	target := ""
	switch len(args) {
	case 1:
		target = os.Getenv("HOME")
		if target == "" {
			fmt.Fprintf(s.errw, "%s: HOME not set\n", args[0])
			return 1
		}
	case 2:
		target = args[1]
	default:
		fmt.Fprintf(s.errw, "%s: too many arguments\n", args[0])
		return 1
	}

	// Chdir resolves relative targets against the current working
	// directory, which is exactly the contract we want.
	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(s.errw, "%s: %s: %v\n", args[0], target, unwrapPathError(err))
		return 1
	}
	return 0
}

func unwrapPathError(err error) error {
	if pe, ok := err.(*os.PathError); ok {
		return pe.Err
	}
	return err
}

func init() {
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["status"] = ShellBuiltinFunc(PrintStatus)
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
}
