// Package config loads, validates and persists experiment
// configuration.
//
// Configuration is plain YAML merged over defaults, with a small set of
// DUET_* environment overrides applied last. Validation happens once,
// before a run starts, so downstream packages can assume a well-formed
// setup.
package config
