// Package config loads and validates the interpreter's configuration
// directory.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	CastsDirName      = "session_casts"
	CommandLogName    = "commands.log"
)

// Configuration holds everything read from config.yaml plus a handle
// on the directory it was loaded from.
type Configuration struct {
	configFs afero.Fs

	// Prompt is printed before each read, with no trailing newline.
	Prompt string `json:"prompt" validate:"required"`

	// LogPath is the directory holding the command log and session
	// casts, relative to the configuration directory. Empty means the
	// configuration directory itself.
	LogPath string `json:"log_path"`

	// RecordSessions enables the asciicast session recorder.
	RecordSessions bool `json:"record_sessions"`

	// Env holds extra environment variables exported to spawned
	// commands.
	Env map[string]string `json:"env"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

func (c *Configuration) logDir() string {
	if c.LogPath == "" {
		return "."
	}
	return c.LogPath
}

// CreateSessionCast creates a session recording with the given name.
func (c *Configuration) CreateSessionCast(name string) (afero.File, error) {
	dir := filepath.Join(c.logDir(), CastsDirName)
	if err := c.fs().MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return c.fs().Create(filepath.Join(dir, name))
}

// OpenCommandLog opens the command log in an append only state.
func (c *Configuration) OpenCommandLog() (afero.File, error) {
	if err := c.fs().MkdirAll(c.logDir(), 0700); err != nil {
		return nil, err
	}
	return c.fs().OpenFile(filepath.Join(c.logDir(), CommandLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadCommandLog opens the command log for reading.
func (c *Configuration) ReadCommandLog() (afero.File, error) {
	return c.fs().OpenFile(filepath.Join(c.logDir(), CommandLogName), os.O_RDONLY, 0600)
}

// Environ flattens the configured extra environment into KEY=VALUE
// form, appended after base so configured values win.
func (c *Configuration) Environ(base []string) []string {
	out := append([]string(nil), base...)
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
