// Package config loads, mutates, and persists the redisctl configuration
// file: a TOML document holding named connection profiles, per-platform
// default-profile slots, and the optional support-package upload key.
//
// The file lives at ~/.config/redisctl/config.toml on Linux (and on macOS
// when that directory exists, for cross-machine portability), falling back to
// the platform-native config directory. Environment references of the form
// ${VAR} and ${VAR:-default} are expanded over the raw text at read time;
// unresolved references pass through verbatim so one broken profile never
// blocks the others.
//
// Saves are atomic (write-temp + rename). Concurrent invocations race with
// last-writer-wins semantics; the file is tiny and this is accepted.
package config
