package core

import (
	"fmt"
	"os"
)

// RedirectError reports a redirection target that could not be opened.
// The launch must not proceed when one of these surfaces.
type RedirectError struct {
	Path  string
	Input bool
	Err   error
}

func (e *RedirectError) Error() string {
	dir := "output"
	if e.Input {
		dir = "input"
	}
	return fmt.Sprintf("cannot open %s for %s", e.Path, dir)
}

func (e *RedirectError) Unwrap() error { return e.Err }

// Stdio holds the standard streams a launched command will run with.
// A nil In or Out means "inherit the shell's own stream".
type Stdio struct {
	In  *os.File
	Out *os.File

	owned []*os.File
}

// Close releases the files the resolver opened. The launcher calls it
// once the child has started (or failed to); the child holds its own
// duplicated descriptors by then.
func (s *Stdio) Close() error {
	var lastErr error
	for _, fd := range s.owned {
		if err := fd.Close(); err != nil {
			lastErr = err
		}
	}
	s.owned = nil
	return lastErr
}

// ResolveRedirects opens the invocation's redirection targets.
// Unredirected streams are left inherited for foreground jobs and
// pointed at the null device for background jobs, so an unsupervised
// child can neither read from nor write to the terminal.
//
// On failure the already-opened files are closed and a *RedirectError
// is returned; the caller must not start the program.
func ResolveRedirects(inv *Invocation, background bool) (*Stdio, error) {
	stdio := &Stdio{}

	open := func(path string, input bool) (*os.File, error) {
		var fd *os.File
		var err error
		if input {
			fd, err = os.Open(path)
		} else {
			fd, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		}
		if err != nil {
			stdio.Close()
			return nil, &RedirectError{Path: path, Input: input, Err: err}
		}
		stdio.owned = append(stdio.owned, fd)
		return fd, nil
	}

	switch {
	case inv.InPath != "":
		fd, err := open(inv.InPath, true)
		if err != nil {
			return nil, err
		}
		stdio.In = fd
	case background:
		fd, err := open(os.DevNull, true)
		if err != nil {
			return nil, err
		}
		stdio.In = fd
	}

	switch {
	case inv.OutPath != "":
		fd, err := open(inv.OutPath, false)
		if err != nil {
			return nil, err
		}
		stdio.Out = fd
	case background:
		fd, err := open(os.DevNull, false)
		if err != nil {
			return nil, err
		}
		stdio.Out = fd
	}

	return stdio, nil
}
