// Package protocol models the machine-readable JSON surface of the uploader
// CLI: the terminal success/error envelope shared by single-shot and
// streaming operations, and the open-ended phase records streamed during
// uploads.
//
// The phase vocabulary is deliberately open. The CLI grows new phases without
// a protocol version bump, so Phase keeps a typed core (discriminant plus the
// byte counters the progress layer needs) and carries everything else in an
// untyped field bag for forwarding. Validation of unknown phases is nobody's
// job; forwarding them is.
package protocol
