// Copyright (c) 2023 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package slogfield provides the slog.Attr constructors shared by
// the loader and the platform adapters.
package slogfield

import (
	"log/slog"
)

// Error returns an slog.Attr for a error.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// String returns an slog.Attr for a string.
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Int returns an slog.Attr for a int.
func Int(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Bool returns an slog.Attr for a bool.
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Path returns an slog.Attr for the path of a settings file.
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Key returns an slog.Attr for a setting key. Values are never
// logged since they routinely carry credentials.
func Key(k string) slog.Attr {
	return slog.String("key", k)
}

// Keys returns an slog.Attr for a list of setting keys.
func Keys(ks []string) slog.Attr {
	return slog.Any("keys", ks)
}
