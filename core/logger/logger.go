// Package logger writes and reads the interpreter's newline delimited
// JSON event log.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// LogEntry is one logged event. Exactly one of the event fields is
// non-nil per entry.
type LogEntry struct {
	TimestampMicros int64 `json:"timestamp_micros"`

	SessionStart      *SessionStart      `json:"session_start,omitempty"`
	RunCommand        *RunCommand        `json:"run_command,omitempty"`
	CommandDone       *CommandDone       `json:"command_done,omitempty"`
	BuiltinUsed       *BuiltinUsed       `json:"builtin_used,omitempty"`
	InvalidInvocation *InvalidInvocation `json:"invalid_invocation,omitempty"`
}

// SessionStart marks the beginning of an interactive session.
type SessionStart struct {
	Pid int `json:"pid"`
}

// RunCommand records a dispatched external command.
type RunCommand struct {
	Command    []string `json:"command"`
	Path       string   `json:"path"`
	Pid        int      `json:"pid"`
	Background bool     `json:"background"`
}

// CommandDone records the observed completion of a spawned command.
// Status is the human readable outcome ("exit value 0",
// "terminated by signal 2").
type CommandDone struct {
	Pid        int    `json:"pid"`
	Status     string `json:"status"`
	Background bool   `json:"background"`
}

// BuiltinUsed records a dispatched builtin.
type BuiltinUsed struct {
	Name string `json:"name"`
}

// InvalidInvocation records a line that could not be parsed or
// launched.
type InvalidInvocation struct {
	Command []string `json:"command"`
	Error   string   `json:"error"`
}

// Logger serializes LogEntries to a writer, one JSON object per line.
// Safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	nowMicros func() int64
}

// New creates a Logger writing to w. A nil w produces a no-op logger
// so call sites don't need to guard.
func New(w io.Writer) *Logger {
	return &Logger{
		out: w,
		nowMicros: func() int64 {
			return time.Now().UnixNano() / int64(time.Microsecond)
		},
	}
}

func (l *Logger) write(entry *LogEntry) error {
	if l.out == nil {
		return nil
	}

	entry.TimestampMicros = l.nowMicros()
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintf(l.out, "%s\n", line)
	return err
}

func (l *Logger) SessionStart(pid int) error {
	return l.write(&LogEntry{SessionStart: &SessionStart{Pid: pid}})
}

func (l *Logger) RunCommand(command []string, path string, pid int, background bool) error {
	return l.write(&LogEntry{RunCommand: &RunCommand{
		Command:    command,
		Path:       path,
		Pid:        pid,
		Background: background,
	}})
}

func (l *Logger) CommandDone(pid int, status string, background bool) error {
	return l.write(&LogEntry{CommandDone: &CommandDone{
		Pid:        pid,
		Status:     status,
		Background: background,
	}})
}

func (l *Logger) BuiltinUsed(name string) error {
	return l.write(&LogEntry{BuiltinUsed: &BuiltinUsed{Name: name}})
}

func (l *Logger) InvalidInvocation(command []string, err error) error {
	return l.write(&LogEntry{InvalidInvocation: &InvalidInvocation{
		Command: command,
		Error:   err.Error(),
	}})
}

// ReadJSONLinesLog parses a newline delimited JSON log, calling
// handler once per entry.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}
		handler(&logEntry)
	}
	return nil
}
