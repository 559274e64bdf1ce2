// Package uploader is the caller-facing service that ties the queue, the
// streaming runner, and the progress interpolator together.
//
// Callers enqueue files, then drain the queue: one subprocess at a time,
// continue-on-error, raw phase records and smoothed display updates fanned
// out through plain callbacks. Single-shot operations (auth checks, version
// probes) go through RunOnce with the machine-readable flag prepended. A
// file lock guards against two sessions draining at once.
package uploader
