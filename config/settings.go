// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"iter"

	"github.com/z5labs/appconfig/config/key"
)

// UnknownKeyerError
type UnknownKeyerError struct {
	key key.Keyer
}

// Error implements the error interface.
func (e UnknownKeyerError) Error() string {
	return fmt.Sprintf("config source tried setting config value with unknown key.Keyer: %s", e.key.Key())
}

// EmptyKeyChainError
type EmptyKeyChainError struct {
	Value any
}

// Error implements the error interface.
func (e EmptyKeyChainError) Error() string {
	return fmt.Sprintf("attempted to set value to an empty key chain: %v", e.Value)
}

// Settings is an ordered, string keyed configuration store. Top level keys
// are iterated in the order they were first set; overwriting a key keeps
// its original position. Nested keys, set with a [key.Chain], live in
// map[string]any values under their top level key.
//
// Settings is not safe for concurrent use.
type Settings struct {
	keys   []string
	values map[string]any
}

// NewSettings returns an empty Settings.
func NewSettings() *Settings {
	return &Settings{
		values: make(map[string]any),
	}
}

// Set implements the [Store] interface.
func (s *Settings) Set(k key.Keyer, v any) error {
	switch x := k.(type) {
	case key.Name:
		s.Put(string(x), v)
	case key.Chain:
		return s.setKeyChain(x, v)
	default:
		return UnknownKeyerError{key: k}
	}
	return nil
}

// Put sets a top level key.
func (s *Settings) Put(name string, v any) {
	if _, exists := s.values[name]; !exists {
		s.keys = append(s.keys, name)
	}
	s.values[name] = v
}

// Lookup returns the value of the top level key and whether it was set.
// A key explicitly set to nil is reported as present.
func (s *Settings) Lookup(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Get returns the value of the top level key or nil if it was never set.
func (s *Settings) Get(name string) any {
	return s.values[name]
}

// Has reports whether the top level key has been set.
func (s *Settings) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Keys returns the top level keys in insertion order.
func (s *Settings) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// All iterates over the top level keys and their values in insertion order.
func (s *Settings) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range s.keys {
			if !yield(k, s.values[k]) {
				return
			}
		}
	}
}

// Len returns the number of top level keys.
func (s *Settings) Len() int {
	return len(s.keys)
}

// Map returns a shallow copy of the top level keys and their values.
func (s *Settings) Map() map[string]any {
	m := make(map[string]any, len(s.values))
	for k, v := range s.values {
		m[k] = v
	}
	return m
}

// Apply implements the [Source] interface so a resolved Settings
// can be layered underneath, or on top of, other sources. Nested maps
// and slices are copied so the receiving store never shares them.
func (s *Settings) Apply(store Store) error {
	for _, k := range s.keys {
		err := store.Set(key.Name(k), cloneValue(s.values[k]))
		if err != nil {
			return err
		}
	}
	return nil
}

// setKeyChain replaces a non-map value found along the chain with a new map.
func (s *Settings) setKeyChain(chain key.Chain, v any) error {
	if len(chain) == 0 {
		return EmptyKeyChainError{Value: v}
	}

	root := chain[0]
	if len(chain) == 1 {
		return s.Set(root, v)
	}

	subM, ok := s.values[root.Key()].(map[string]any)
	if !ok {
		subM = make(map[string]any)
		s.Put(root.Key(), subM)
	}
	return set(subM, chain[1:], v)
}

func set(m map[string]any, k key.Keyer, v any) error {
	switch x := k.(type) {
	case key.Name:
		m[string(x)] = v
	case key.Chain:
		return setNested(m, x, v)
	default:
		return UnknownKeyerError{key: k}
	}
	return nil
}

func setNested(m map[string]any, chain key.Chain, v any) error {
	if len(chain) == 0 {
		return EmptyKeyChainError{Value: v}
	}

	root := chain[0]
	if len(chain) == 1 {
		return set(m, root, v)
	}

	subM, ok := m[root.Key()].(map[string]any)
	if !ok {
		subM = make(map[string]any)
		m[root.Key()] = subM
	}
	return set(subM, chain[1:], v)
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		l := make([]any, len(x))
		for i, e := range x {
			l[i] = cloneValue(e)
		}
		return l
	default:
		return v
	}
}
