// Package config resolves tool settings from built-in defaults, an optional
// YAML configuration file, and CLI flags, in that order of precedence.
//
// A resolved Settings value is immutable and passed by value to each
// orchestrator; nothing else in the tool reads configuration sources
// directly.
package config
