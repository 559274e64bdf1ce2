// Package ndjson splits raw subprocess output into newline-delimited JSON
// records without assuming chunk boundaries align with record boundaries.
//
// The Decoder buffers the undelimited trailing fragment of each chunk and
// retries it when more bytes arrive, so callers can feed whatever read sizes
// the pipe hands them. Lines that fail to parse are dropped silently: the
// uploader CLI interleaves buffered writes, and a garbled intermediate line
// is expected stream noise rather than an error. Only the terminal record
// matters for correctness, and that is the caller's concern.
package ndjson
