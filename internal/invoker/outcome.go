package invoker

import (
	"encoding/json"
	"strings"
)

// Kind classifies an invocation result.
type Kind string

const (
	KindSuccess     Kind = "success"
	KindNotFound    Kind = "not_found"
	KindTimedOut    Kind = "timed_out"
	KindBadJSON     Kind = "bad_json"
	KindNonZeroExit Kind = "non_zero_exit"
	KindUnknown     Kind = "unknown"
)

// Outcome is the terminal, never-mutated result of one invocation.
type Outcome struct {
	Kind     Kind
	Payload  json.RawMessage
	ExitCode int
	Message  string
	Hint     string
	Stderr   string
}

// OK reports whether the invocation succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Guidance maps an outcome kind to the user-facing recovery category the
// presentation layer shows. The message itself stays machine-supplied and
// never includes stdin content.
func (o Outcome) Guidance() string {
	switch o.Kind {
	case KindNotFound:
		return "uploader CLI is not installed; reinstall it"
	case KindTimedOut:
		return "operation timed out; retry"
	case KindBadJSON:
		return "unexpected response from the uploader CLI; retry"
	case KindNonZeroExit:
		return "network or credential issue; retry"
	case KindUnknown:
		return "unexpected failure launching the uploader CLI; retry"
	default:
		return ""
	}
}

// Describe renders a short one-line summary for logs and CLI output.
func (o Outcome) Describe() string {
	if o.OK() {
		return "success"
	}
	parts := []string{string(o.Kind)}
	if msg := strings.TrimSpace(o.Message); msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, ": ")
}
