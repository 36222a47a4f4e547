// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package appconfig resolves an application's settings from layered sources.
//
// [Load] builds a single ordered [config.Settings] from, lowest precedence first:
//
//   - the default settings, either a [config.Source] or the first of
//     <name>/default_config.{yaml,yml,json,toml,env} found
//   - an explicit settings file given by [ConfigFile]
//   - a settings file named by the <NAME>_CONFIG environment variable
//   - environment variables starting with <NAME>_, parsed as JSON literals
//     when possible
//   - adapters, such as the Heroku conventions in the heroku subpackage
//
// A later source overwrites any key set by an earlier one.
//
// # Environment Variables
//
// With the default [EnvJSON] mode a variable is parsed as a JSON literal and
// falls back to its raw string when that fails:
//
//	APP_PORT=42         -> 42
//	APP_DEBUG=true      -> true
//	APP_HOSTS=["a","b"] -> []any{"a", "b"}
//	APP_NAME=hello      -> "hello"
//
// [DotEnv] layers key=value files underneath the process environment so a
// variable exported by the process always wins.
package appconfig
