package core

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketsh/pocketsh/core/logger"
)

func newBuiltinShell() (*Shell, *bytes.Buffer, *bytes.Buffer) {
	state := NewState()
	msgw := &bytes.Buffer{}
	errw := &bytes.Buffer{}
	log := logger.New(nil)

	return &Shell{
		State:  state,
		reaper: NewReaper(state, msgw, log),
		log:    log,
		msgw:   msgw,
		errw:   errw,
		pid:    os.Getpid(),
	}, msgw, errw
}

func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"exit", "status", "cd"} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, AllBuiltins, name)
		})
	}
}

func TestStatusBuiltin(t *testing.T) {
	cases := map[string]struct {
		status Status
		want   string
	}{
		"initial":  {Status{}, "exit value 0\n"},
		"exited":   {Status{Code: 2}, "exit value 2\n"},
		"signaled": {Status{Signaled: true, Code: 15}, "terminated by signal 15\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s, msgw, _ := newBuiltinShell()
			s.State.LastStatus = tc.status

			code := PrintStatus(s, []string{"status"})
			assert.Zero(t, code)
			assert.Equal(t, tc.want, msgw.String())
		})
	}
}

func TestCdBuiltin(t *testing.T) {
	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { os.Chdir(origWd) })

	t.Run("absolute", func(t *testing.T) {
		s, _, errw := newBuiltinShell()
		target := t.TempDir()

		code := Cd(s, []string{"cd", target})
		assert.Zero(t, code)
		assert.Empty(t, errw.String())

		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, resolveSymlinks(t, target), resolveSymlinks(t, wd))
	})

	t.Run("relative", func(t *testing.T) {
		s, _, _ := newBuiltinShell()
		base := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(base, "sub"), 0755))
		require.NoError(t, os.Chdir(base))

		code := Cd(s, []string{"cd", "sub"})
		assert.Zero(t, code)

		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(resolveSymlinks(t, base), "sub"), resolveSymlinks(t, wd))
	})

	t.Run("home-default", func(t *testing.T) {
		s, _, _ := newBuiltinShell()
		home := t.TempDir()
		t.Setenv("HOME", home)

		code := Cd(s, []string{"cd"})
		assert.Zero(t, code)

		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, resolveSymlinks(t, home), resolveSymlinks(t, wd))
	})

	t.Run("home-unset", func(t *testing.T) {
		s, _, errw := newBuiltinShell()
		t.Setenv("HOME", "")

		code := Cd(s, []string{"cd"})
		assert.Equal(t, 1, code)
		assert.Equal(t, "cd: HOME not set\n", errw.String())
	})

	t.Run("nonexistent", func(t *testing.T) {
		s, _, errw := newBuiltinShell()
		s.State.LastStatus = Status{Code: 7}
		require.NoError(t, os.Chdir(origWd))

		code := Cd(s, []string{"cd", "/definitely/not/a/dir"})
		assert.Equal(t, 1, code)
		assert.Contains(t, errw.String(), "cd: /definitely/not/a/dir:")

		// Working directory and last status are untouched.
		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, origWd, wd)
		assert.Equal(t, Status{Code: 7}, s.State.LastStatus)
	})

	t.Run("too-many-arguments", func(t *testing.T) {
		s, _, errw := newBuiltinShell()

		code := Cd(s, []string{"cd", "a", "b"})
		assert.Equal(t, 1, code)
		assert.Equal(t, "cd: too many arguments\n", errw.String())
	})
}

func TestExitBuiltin(t *testing.T) {
	s, _, _ := newBuiltinShell()

	code := Exit(s, []string{"exit"})
	assert.Zero(t, code)
	assert.True(t, s.quit)
}

// resolveSymlinks normalizes tmpdir paths; on some systems TMPDIR
// lives behind a symlink (e.g. /var -> /private/var).
func resolveSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
