package core

import (
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
)

const (
	backgroundMarker = "&"
	redirectIn       = "<"
	redirectOut      = ">"
	commentPrefix    = "#"
)

// Invocation is one fully parsed command line, ready to launch:
// redirection operators and the background marker have been consumed
// and the argument vector holds only the program and its arguments.
type Invocation struct {
	Argv []string

	// InPath and OutPath are the stdin/stdout redirection targets, or
	// empty when the stream was not redirected. When an operator
	// appears more than once the last occurrence wins.
	InPath  string
	OutPath string

	// Background is set when the line ended with the background
	// marker. Foreground-only mode is applied later, at launch.
	Background bool
}

// Tokenize splits a raw line into words, honoring quotes.
func Tokenize(line string) ([]string, error) {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}
	return tokens, nil
}

// IsNoop reports whether the tokenized line should be silently
// skipped: blank lines and lines whose first word is a comment.
func IsNoop(tokens []string) bool {
	return len(tokens) == 0 || strings.HasPrefix(tokens[0], commentPrefix)
}

// ParseInvocation scans tokens for the background marker and the
// redirection operators, returning the filtered invocation. The scan
// is pure: it never mutates tokens.
func ParseInvocation(tokens []string) (*Invocation, error) {
	inv := &Invocation{}

	if n := len(tokens); n > 0 && tokens[n-1] == backgroundMarker {
		inv.Background = true
		tokens = tokens[:n-1]
	}

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case redirectIn, redirectOut:
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("syntax error: expected filename after %q", tokens[i])
			}
			if tokens[i] == redirectIn {
				inv.InPath = tokens[i+1]
			} else {
				inv.OutPath = tokens[i+1]
			}
			i++
		default:
			inv.Argv = append(inv.Argv, tokens[i])
		}
	}

	if len(inv.Argv) == 0 {
		return nil, fmt.Errorf("syntax error: missing command")
	}
	return inv, nil
}
