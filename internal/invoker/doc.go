// Package invoker launches the uploader CLI for single-shot operations and
// classifies the result deterministically.
//
// Every invocation yields a typed Outcome rather than an error: a missing
// binary, an exceeded deadline, unparseable stdout, or an explicit machine
// failure flag are all normal, user-actionable occurrences for a tool that
// shells out for credentials and network access, not programming defects.
// Classification order is fixed — NotFound, TimedOut, BadJSON, NonZeroExit,
// Success — and an explicit success:false flag in the payload overrides a
// zero process exit code.
package invoker
