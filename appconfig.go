// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package appconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/z5labs/appconfig/config"
	"github.com/z5labs/appconfig/internal/slogfield"
	"github.com/z5labs/appconfig/internal/try"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Adapter rewrites the merged settings once every source has been applied,
// e.g. to translate hosting platform conventions into application keys.
type Adapter interface {
	Adapt(ctx context.Context, environ []string, s *config.Settings) error
}

// AdapterFunc is a functional implementation of the [Adapter] interface.
type AdapterFunc func(context.Context, []string, *config.Settings) error

// Adapt implements the [Adapter] interface.
func (f AdapterFunc) Adapt(ctx context.Context, environ []string, s *config.Settings) error {
	return f(ctx, environ, s)
}

var defaultSettingsExts = []string{".yaml", ".yml", ".json", ".toml", ".env"}

// Load resolves the settings of the named application by applying, in order:
//
//  1. the default settings
//  2. the file given by [ConfigFile]
//  3. the file named by the [ConfigFileEnvVar] environment variable
//  4. the environment variables starting with the [EnvPrefix]
//  5. every [Adapter] registered with [WithAdapter]
//
// Later steps override keys set by earlier ones.
func Load(ctx context.Context, name string, opts ...Option) (_ *config.Settings, err error) {
	o := newOptions(opts...)

	spanCtx, span := otel.Tracer("appconfig").Start(ctx, "Load", trace.WithAttributes(
		attribute.String("appconfig.name", name),
	))
	defer span.End()
	defer recordError(span, &err)

	l := &loader{
		name: name,
		opts: o,
		log:  slog.New(o.logHandler).With(slogfield.String("app", name)),
	}

	environ, err := l.environ(spanCtx)
	if err != nil {
		return nil, err
	}

	s := config.NewSettings()
	stages := []struct {
		name  string
		apply func(context.Context, []string, *config.Settings) error
	}{
		{name: "defaults", apply: l.applyDefaults},
		{name: "file", apply: l.applyFile},
		{name: "env_file", apply: l.applyEnvFile},
		{name: "env", apply: l.applyEnv},
		{name: "adapters", apply: l.applyAdapters},
	}
	for _, stage := range stages {
		err = spanCtx.Err()
		if err != nil {
			return nil, err
		}

		err = runStage(spanCtx, stage.name, func(ctx context.Context) error {
			return stage.apply(ctx, environ, s)
		})
		if err != nil {
			l.log.DebugContext(
				spanCtx,
				"failed to apply settings",
				slogfield.String("stage", stage.name),
				slogfield.Error(err),
			)
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("appconfig.keys", s.Len()))
	l.log.DebugContext(spanCtx, "loaded settings", slogfield.Int("count", s.Len()))
	return s, nil
}

func runStage(ctx context.Context, name string, f func(context.Context) error) (err error) {
	spanCtx, span := otel.Tracer("appconfig").Start(ctx, name)
	defer span.End()
	defer recordError(span, &err)

	return f(spanCtx)
}

func recordError(span trace.Span, err *error) {
	if *err == nil {
		return
	}
	span.RecordError(*err)
	span.SetStatus(codes.Error, (*err).Error())
}

type loader struct {
	name string
	opts *options
	log  *slog.Logger
}

func (l *loader) prefix() string {
	if l.opts.prefix != nil {
		return *l.opts.prefix
	}
	return strings.ToUpper(l.name) + "_"
}

func (l *loader) fileEnvVar() string {
	if l.opts.fileEnvVar != nil {
		return *l.opts.fileEnvVar
	}
	return strings.ToUpper(l.name) + "_CONFIG"
}

// environ snapshots the process environment with the dotenv files
// layered underneath it.
func (l *loader) environ(ctx context.Context) ([]string, error) {
	environ := l.opts.environ()
	if len(l.opts.dotenv) == 0 {
		return environ, nil
	}

	seen := make(map[string]bool, len(environ))
	for _, pair := range environ {
		k, _, _ := strings.Cut(pair, "=")
		seen[k] = true
	}

	layered := make([]string, 0, len(environ))
	for _, path := range l.opts.dotenv {
		vars, err := readDotEnv(l.opts.fs, path)
		if errors.Is(err, fs.ErrNotExist) {
			l.log.DebugContext(ctx, "skipping missing dotenv file", slogfield.Path(path))
			continue
		}
		if err != nil {
			return nil, DotEnvError{Path: path, Cause: err}
		}

		names := make([]string, 0, len(vars))
		for k := range vars {
			names = append(names, k)
		}
		slices.Sort(names)

		for _, k := range names {
			if seen[k] {
				continue
			}
			seen[k] = true
			layered = append(layered, k+"="+vars[k])
		}
		l.log.DebugContext(ctx, "loaded dotenv file", slogfield.Path(path))
	}
	return append(layered, environ...), nil
}

func readDotEnv(fsys fs.FS, path string) (_ map[string]string, err error) {
	r := config.NewFileReader(fsys, path)
	defer try.Close(&err, r)

	return godotenv.Parse(r)
}

func (l *loader) applyDefaults(ctx context.Context, _ []string, s *config.Settings) error {
	if !l.opts.defaults {
		return nil
	}

	if l.opts.defaultsSrc != nil {
		err := l.opts.defaultsSrc.Apply(s)
		if err != nil {
			return DefaultSettingsError{Cause: err}
		}
		l.log.DebugContext(ctx, "applied default settings source")
		return nil
	}

	for _, ext := range defaultSettingsExts {
		path := l.name + "/default_config" + ext
		err := config.FromFile(l.opts.fs, path).Apply(s)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return DefaultSettingsError{Path: path, Cause: err}
		}
		l.log.DebugContext(ctx, "applied default settings", slogfield.Path(path))
		return nil
	}

	l.log.DebugContext(ctx, "no default settings found")
	return nil
}

func (l *loader) applyFile(ctx context.Context, _ []string, s *config.Settings) error {
	if len(l.opts.file) == 0 {
		return nil
	}
	return l.loadFile(ctx, l.opts.file, s)
}

func (l *loader) applyEnvFile(ctx context.Context, environ []string, s *config.Settings) error {
	name := l.fileEnvVar()
	if len(name) == 0 {
		return nil
	}

	path, ok := lookup(environ, name)
	if !ok {
		return nil
	}
	if len(path) == 0 {
		return EmptyConfigFileEnvVarError{Name: name}
	}
	return l.loadFile(ctx, path, s)
}

func (l *loader) loadFile(ctx context.Context, path string, s *config.Settings) error {
	err := config.FromFile(l.opts.fs, path).Apply(s)
	if err != nil {
		return ConfigFileError{Path: path, Cause: err}
	}
	l.log.DebugContext(ctx, "applied settings file", slogfield.Path(path))
	return nil
}

func (l *loader) applyEnv(ctx context.Context, environ []string, s *config.Settings) error {
	if l.opts.envMode == EnvNone {
		return nil
	}

	prefix := l.prefix()
	src := config.FromEnv(
		config.Prefix(prefix),
		config.DecodeJSON(l.opts.envMode == EnvJSON),
		config.Environ(func() []string {
			return environ
		}),
	)
	err := src.Apply(s)
	if err != nil {
		return err
	}
	l.log.DebugContext(
		ctx,
		"applied environment variables",
		slogfield.String("prefix", prefix),
		slogfield.Bool("json", l.opts.envMode == EnvJSON),
	)
	return nil
}

func (l *loader) applyAdapters(ctx context.Context, environ []string, s *config.Settings) error {
	for _, a := range l.opts.adapters {
		err := a.Adapt(ctx, environ, s)
		if err != nil {
			return AdapterError{Name: fmt.Sprintf("%T", a), Cause: err}
		}
	}
	return nil
}

// lookup returns the last value of name in environ, like os.Getenv does.
func lookup(environ []string, name string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, pair := range environ {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k != name {
			continue
		}
		value = v
		found = true
	}
	return value, found
}

// DefaultSettingsError occurs when the default settings exist but can not be applied.
type DefaultSettingsError struct {
	Path  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e DefaultSettingsError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("failed to apply default settings: %s", e.Cause)
	}
	return fmt.Sprintf("failed to apply default settings from %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e DefaultSettingsError) Unwrap() error {
	return e.Cause
}

// ConfigFileError occurs when an explicitly requested settings file
// is missing or can not be parsed.
type ConfigFileError struct {
	Path  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigFileError) Error() string {
	return fmt.Sprintf("failed to load settings file %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigFileError) Unwrap() error {
	return e.Cause
}

// EmptyConfigFileEnvVarError occurs when the settings file environment
// variable is set but empty.
type EmptyConfigFileEnvVarError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e EmptyConfigFileEnvVarError) Error() string {
	return fmt.Sprintf("environment variable %s is set but does not name a settings file", e.Name)
}

// DotEnvError occurs when a dotenv file exists but can not be parsed.
type DotEnvError struct {
	Path  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e DotEnvError) Error() string {
	return fmt.Sprintf("failed to load dotenv file %s: %s", e.Path, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e DotEnvError) Unwrap() error {
	return e.Cause
}

// AdapterError wraps the failure of an [Adapter]. Name is the
// adapter's Go type.
type AdapterError struct {
	Name  string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e AdapterError) Error() string {
	return fmt.Sprintf("adapter %s failed: %s", e.Name, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e AdapterError) Unwrap() error {
	return e.Cause
}
