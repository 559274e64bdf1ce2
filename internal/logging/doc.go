// Package logging assembles the structured slog loggers shared across
// Shuttle components.
//
// It owns the console and JSON handlers, the standard field names, and a
// progress sampler that keeps checkpoint spam out of the logs. The no-op
// logger exists for tests and wiring code that cannot fail. Prefer these
// constructors over hand-rolled slog setup so every component emits the same
// shape.
package logging
