package core

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketsh/pocketsh/core/ttylog"
)

func TestRecorderCapturesBothDirections(t *testing.T) {
	var events []*ttylog.Event
	recorder := NewRecorder(func(event *ttylog.Event) error {
		events = append(events, event)
		return nil
	})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recorder.now = func() time.Time { return now }

	var terminal bytes.Buffer
	out := recorder.Output(&terminal)
	in := recorder.Input(strings.NewReader("status\n"))

	_, err := out.Write([]byte(": "))
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := in.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "status\n", string(buf[:n]))

	// The wrapped writer still reaches the real terminal.
	assert.Equal(t, ": ", terminal.String())

	require.Len(t, events, 2)
	assert.Equal(t, ttylog.FDStdout, events[0].FD)
	assert.Equal(t, []byte(": "), events[0].Data)
	assert.Equal(t, ttylog.FDStdin, events[1].FD)
	assert.Equal(t, []byte("status\n"), events[1].Data)
	assert.Equal(t, now.UnixNano()/int64(time.Microsecond), events[0].TimestampMicros)
}

func TestRecorderCopiesData(t *testing.T) {
	var events []*ttylog.Event
	recorder := NewRecorder(func(event *ttylog.Event) error {
		events = append(events, event)
		return nil
	})

	out := recorder.Output(&bytes.Buffer{})
	scratch := []byte("first")
	_, err := out.Write(scratch)
	require.NoError(t, err)

	// Reusing the caller's buffer must not corrupt recorded events.
	copy(scratch, "XXXXX")
	assert.Equal(t, []byte("first"), events[0].Data)
}

func TestRecorderSinkErrorsDoNotBreakIO(t *testing.T) {
	recorder := NewRecorder(func(event *ttylog.Event) error {
		return assert.AnError
	})

	var terminal bytes.Buffer
	out := recorder.Output(&terminal)

	n, err := out.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", terminal.String())
}
