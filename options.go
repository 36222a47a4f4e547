// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appconfig

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/z5labs/appconfig/config"
	"github.com/z5labs/appconfig/internal/noop"
)

// EnvVarMode controls how environment variables are layered on top of
// the file based settings.
type EnvVarMode int

const (
	// EnvJSON imports prefixed variables, parsing values as JSON literals.
	EnvJSON EnvVarMode = iota

	// EnvRaw imports prefixed variables as verbatim strings.
	EnvRaw

	// EnvNone skips the environment variable overlay.
	EnvNone
)

type options struct {
	fs          fs.FS
	environ     func() []string
	dotenv      []string
	defaults    bool
	defaultsSrc config.Source
	file        string
	fileEnvVar  *string
	prefix      *string
	envMode     EnvVarMode
	adapters    []Adapter
	logHandler  slog.Handler
}

// Option configures Load.
type Option func(*options)

// DefaultSettings toggles loading the conventional default settings file,
// <name>/default_config with a .yaml, .yml, .json, .toml or .env extension.
// Enabled by default. A missing file is not an error.
func DefaultSettings(b bool) Option {
	return func(o *options) {
		o.defaults = b
	}
}

// DefaultSettingsSource uses src as the default settings instead of
// looking up the conventional default settings file.
func DefaultSettingsSource(src config.Source) Option {
	return func(o *options) {
		o.defaults = true
		o.defaultsSrc = src
	}
}

// ConfigFile loads the settings file at path after the defaults.
// Failing to read or parse it is fatal.
func ConfigFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// ConfigFileEnvVar names the environment variable which may hold the path
// of an additional settings file. Defaults to <NAME>_CONFIG. An empty name
// disables the lookup.
func ConfigFileEnvVar(name string) Option {
	return func(o *options) {
		o.fileEnvVar = &name
	}
}

// EnvPrefix selects the environment variables imported on top of the files.
// Defaults to <NAME>_.
func EnvPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = &prefix
	}
}

// EnvVars sets how the prefixed environment variables are imported.
func EnvVars(mode EnvVarMode) Option {
	return func(o *options) {
		o.envMode = mode
	}
}

// DotEnv layers KEY=value files underneath the process environment.
// Variables already present in the environment are never replaced and
// earlier files take precedence over later ones. Missing files are skipped.
func DotEnv(paths ...string) Option {
	return func(o *options) {
		o.dotenv = append(o.dotenv, paths...)
	}
}

// Environ overrides the environment snapshot, which defaults to [os.Environ].
func Environ(f func() []string) Option {
	return func(o *options) {
		o.environ = f
	}
}

// FS sets the file system all settings files are read from.
// Defaults to [config.OS].
func FS(fsys fs.FS) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithAdapter registers an [Adapter] to run once every source has been
// merged. Adapters run in registration order.
func WithAdapter(a Adapter) Option {
	return func(o *options) {
		o.adapters = append(o.adapters, a)
	}
}

// LogHandler sets the handler for the debug records emitted while loading.
// Records are discarded by default.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

func newOptions(opts ...Option) *options {
	o := &options{
		fs:         config.OS,
		environ:    os.Environ,
		defaults:   true,
		envMode:    EnvJSON,
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
