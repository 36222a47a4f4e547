// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"slices"
	"strings"

	"github.com/z5labs/appconfig/config/key"
)

// EnvPair maps a single environment variable to a setting key.
type EnvPair struct {
	Name string
	Key  string
}

// EnvMapping is an ordered list of environment variable to setting key
// pairs. When multiple pairs target the same key the last set variable wins.
type EnvMapping []EnvPair

// Names returns an identity mapping, each variable is imported under its own name.
func Names(names ...string) EnvMapping {
	m := make(EnvMapping, len(names))
	for i, name := range names {
		m[i] = EnvPair{Name: name, Key: name}
	}
	return m
}

// Rename returns a mapping from environment variable names to setting keys.
// Pairs are ordered by environment variable name.
func Rename(names map[string]string) EnvMapping {
	m := make(EnvMapping, 0, len(names))
	for name, k := range names {
		m = append(m, EnvPair{Name: name, Key: k})
	}
	slices.SortFunc(m, func(a, b EnvPair) int {
		return strings.Compare(a.Name, b.Name)
	})
	return m
}

// Pairs returns a mapping from alternating environment variable names and
// setting keys, kept in the given order. Pairs panics if given an odd
// number of arguments.
func Pairs(nameKeys ...string) EnvMapping {
	if len(nameKeys)%2 == 1 {
		panic("config.Pairs: odd argument count")
	}
	m := make(EnvMapping, 0, len(nameKeys)/2)
	for i := 0; i < len(nameKeys); i += 2 {
		m = append(m, EnvPair{Name: nameKeys[i], Key: nameKeys[i+1]})
	}
	return m
}

// Env represents a Source where its underlying values
// are extracted from environment variables.
type Env struct {
	environ    func() []string
	prefix     string
	mapping    EnvMapping
	decodeJSON bool
}

// EnvOption configures an [Env] source.
type EnvOption func(*Env)

// Prefix selects every environment variable starting with p. The prefix
// is stripped from the variable name to form the setting key. Prefix is
// ignored when an explicit [Mapping] is given.
func Prefix(p string) EnvOption {
	return func(e *Env) {
		e.prefix = p
	}
}

// Mapping selects exactly the environment variables named by m. A nil
// mapping falls back to the [Prefix] scan. An empty non-nil mapping
// selects nothing.
func Mapping(m EnvMapping) EnvOption {
	return func(e *Env) {
		e.mapping = m
	}
}

// DecodeJSON toggles parsing values as JSON literals. Enabled by default.
func DecodeJSON(b bool) EnvOption {
	return func(e *Env) {
		e.decodeJSON = b
	}
}

// Environ overrides the environment snapshot, which defaults to [os.Environ].
func Environ(f func() []string) EnvOption {
	return func(e *Env) {
		e.environ = f
	}
}

// FromEnv returns a Source which will apply its config
// from the environment variables available to the
// current process.
func FromEnv(opts ...EnvOption) Env {
	e := Env{
		environ:    os.Environ,
		decodeJSON: true,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// ImportEnv copies the environment variables selected by prefix, or by
// mapping when it is non-nil, from the current process into store.
func ImportEnv(store Store, prefix string, mapping EnvMapping, decodeJSON bool) error {
	src := FromEnv(
		Prefix(prefix),
		Mapping(mapping),
		DecodeJSON(decodeJSON),
	)
	return src.Apply(store)
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	names, values := snapshot(src.environ())

	mapping := src.mapping
	if mapping == nil {
		mapping = prefixed(names, src.prefix)
	}

	for _, pair := range mapping {
		v, ok := values[pair.Name]
		if !ok {
			continue
		}

		var val any = v
		if src.decodeJSON {
			val = Literal(v)
		}

		err := store.Set(key.Name(pair.Key), val)
		if err != nil {
			return err
		}
	}
	return nil
}

// snapshot indexes KEY=VALUE pairs. Names are returned in order of first
// appearance and a repeated name takes its last value.
func snapshot(environ []string) ([]string, map[string]string) {
	names := make([]string, 0, len(environ))
	values := make(map[string]string, len(environ))
	for _, pair := range environ {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if _, seen := values[k]; !seen {
			names = append(names, k)
		}
		values[k] = v
	}
	return names, values
}

func prefixed(names []string, prefix string) EnvMapping {
	m := make(EnvMapping, 0, len(names))
	for _, name := range names {
		k, ok := strings.CutPrefix(name, prefix)
		if !ok || len(k) == 0 {
			continue
		}
		m = append(m, EnvPair{Name: name, Key: k})
	}
	return m
}
