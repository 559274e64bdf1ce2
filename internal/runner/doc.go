// Package runner executes streaming uploader CLI operations.
//
// Unlike the single-shot invoker, the runner does not wait for process exit:
// it resolves as soon as the stream carries a terminal record, forwarding
// every phase record to the caller in decode order along the way. The live
// process handle is registered in a Registry keyed by job id before any
// reads begin and removed unconditionally on every exit path, so out-of-band
// cancellation by id works exactly while a job is alive and is a no-op
// afterwards.
//
// A process that exits without ever emitting a terminal record is a failure
// regardless of its exit code. A zero exit with no terminal marker usually
// means the CLI was interrupted mid-stream, and trusting it would report
// phantom successes.
package runner
