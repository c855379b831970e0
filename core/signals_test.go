package core

import (
	"bytes"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/abiosoft/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSignalPolicyToggle(t *testing.T) {
	state := NewState()
	tty := &bytes.Buffer{}
	policy := NewSignalPolicy(state, tty, ": ")

	policy.toggle()
	assert.True(t, state.ForegroundOnly())
	assert.Equal(t, "\nEntering foreground-only mode (& is now ignored)\n: ", tty.String())

	tty.Reset()
	policy.toggle()
	assert.False(t, state.ForegroundOnly())
	assert.Equal(t, "\nExiting foreground-only mode\n: ", tty.String())
}

func TestSignalPolicyNoticeIsOneWrite(t *testing.T) {
	state := NewState()
	tty := &writeCounter{}
	policy := NewSignalPolicy(state, tty, ": ")

	policy.toggle()
	assert.Equal(t, 1, tty.writes, "notice and prompt must not interleave with other output")
}

func TestSignalPolicyDelivery(t *testing.T) {
	state := NewState()
	tty := &syncBuffer{}
	policy := NewSignalPolicy(state, tty, ": ")
	policy.Install()
	defer policy.Uninstall()

	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGTSTP))
	waitForForegroundOnly(t, state, true)
	assert.Contains(t, tty.String(), "Entering foreground-only mode")

	// An interrupt must neither kill the shell nor flip the mode.
	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGINT))

	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGTSTP))
	waitForForegroundOnly(t, state, false)
	assert.Contains(t, tty.String(), "Exiting foreground-only mode")
}

// Dispositions must not leak into children: a child that signals itself
// with SIGINT dies from it, even though the shell discards the same
// signal. An ignored (rather than caught) disposition would survive
// exec and keep the child alive through the full sleep.
func TestSignalPolicyChildKeepsDefaultInterrupt(t *testing.T) {
	state := NewState()
	policy := NewSignalPolicy(state, &bytes.Buffer{}, ": ")
	policy.Install()
	defer policy.Uninstall()

	cmd := exec.Command("sh", "-c", "kill -INT $$ && sleep 30")
	err := cmd.Run()
	require.Error(t, err, "child should die from its own SIGINT")

	ws, ok := cmd.ProcessState.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.True(t, ws.Signaled())
	assert.Equal(t, syscall.SIGINT, ws.Signal())
}

// Ctrl+Z arrives at the prompt as a raw rune, not a signal. The filter
// has to swallow it, or readline suspends itself and hangs, and has to
// toggle the mode in its place.
func TestKeyboardStopFilter(t *testing.T) {
	state := NewState()
	tty := &bytes.Buffer{}
	policy := NewSignalPolicy(state, tty, ": ")
	filter := keyboardStopFilter(policy)

	r, keep := filter('a')
	assert.Equal(t, 'a', r)
	assert.True(t, keep)
	assert.False(t, state.ForegroundOnly())

	_, keep = filter(readline.CharCtrlZ)
	assert.False(t, keep)
	assert.True(t, state.ForegroundOnly())
	assert.Contains(t, tty.String(), "Entering foreground-only mode")

	_, keep = filter(readline.CharCtrlZ)
	assert.False(t, keep)
	assert.False(t, state.ForegroundOnly())
}

func waitForForegroundOnly(t *testing.T, state *State, want bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for state.ForegroundOnly() != want {
		if time.Now().After(deadline) {
			t.Fatalf("foreground-only mode never became %v", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type writeCounter struct {
	writes int
}

func (w *writeCounter) Write(p []byte) (int, error) {
	w.writes++
	return len(p), nil
}

// syncBuffer is written by the signal watcher goroutine and read by the
// test goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
