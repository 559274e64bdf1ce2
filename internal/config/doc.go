// Package config loads, normalizes, and validates Shuttle's TOML
// configuration.
//
// Configuration resolves from an explicit --config path, then
// ~/.config/shuttle/config.toml, then ./shuttle.toml, falling back to
// defaults when no file exists. Path fields are expanded (~ and relative
// forms) during normalization so the rest of the code only ever sees
// absolute paths.
package config
