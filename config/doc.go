// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides the configuration store and the sources which
// can be merged into it.
//
// # Core Concepts
//
// [Settings] is an ordered, string keyed store. Keys keep the position of
// their first insertion and are only ever added or overwritten, never removed.
//
// A [Source] knows how to write itself into a [Store]. Sources are applied
// in order and later sources override earlier ones for the same key:
//
//	s, err := config.Read(
//	    config.FromFile(config.OS, "defaults.yaml"),
//	    config.FromEnv(config.Prefix("MYAPP_")),
//	)
//
// # Environment Variables
//
// [Env] imports environment variables either by prefix, in which case the
// prefix is stripped to form the key, or by an explicit [EnvMapping]. Values
// are parsed as JSON literals unless disabled with [DecodeJSON], falling back
// to the raw string when the value is not valid JSON:
//
//	MYAPP_DEBUG=true     -> DEBUG = true
//	MYAPP_WORKERS=4      -> WORKERS = int64(4)
//	MYAPP_NAME=frontend  -> NAME = "frontend"
//
// # Files
//
// [FromFile] picks a decoder from the file extension: YAML (.yaml, .yml),
// JSON (.json), TOML (.toml) and key=value (anything else). YAML keys are
// applied in document order, the keys of the other formats in sorted order.
package config
