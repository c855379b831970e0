// Package ttylog records and replays terminal sessions in the
// asciicast v2 format.
package ttylog

import (
	"io"
	"time"
)

// FD identifies the direction of a logged chunk of terminal data.
type FD int

const (
	FDStdin  FD = 0
	FDStdout FD = 1
)

// Event is one timestamped chunk of terminal I/O.
type Event struct {
	TimestampMicros int64
	FD              FD
	Data            []byte
}

// LogSink consumes session events, e.g. writing them to a file or
// rendering them to a terminal.
type LogSink func(*Event) error

// LogSource produces session events. Next returns io.EOF when the
// session is exhausted.
type LogSource interface {
	Next() (*Event, error)
}

// Replay pumps every event from source into sink.
func Replay(source LogSource, sink LogSink) error {
	for {
		event, err := source.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink(event); err != nil {
			return err
		}
	}
}

// NewClientOutput returns a sink that renders a session's output to w,
// dropping the input side the way a watching terminal would.
func NewClientOutput(w io.Writer) LogSink {
	return func(event *Event) error {
		if event.FD != FDStdout {
			return nil
		}
		_, err := w.Write(event.Data)
		return err
	}
}

// NewRealTimePlayback wraps next so events are delivered with their
// original pacing. Gaps longer than idleTimeLimit are shortened to it;
// a zero limit disables the cap.
func NewRealTimePlayback(idleTimeLimit time.Duration, next LogSink) LogSink {
	var prevMicros int64
	started := false

	return func(event *Event) error {
		if started {
			delay := time.Duration(event.TimestampMicros-prevMicros) * time.Microsecond
			if idleTimeLimit > 0 && delay > idleTimeLimit {
				delay = idleTimeLimit
			}
			if delay > 0 {
				time.Sleep(delay)
			}
		}
		started = true
		prevMicros = event.TimestampMicros

		return next(event)
	}
}

func microsecondsToSeconds(microseconds int64) (seconds float64) {
	return (float64(microseconds) * float64(time.Microsecond)) / float64(time.Second)
}

func secondsToMicroseconds(seconds float64) (microseconds int64) {
	return int64(float64(seconds)*float64(time.Second)) / int64(time.Microsecond)
}
