package protocol

import (
	"encoding/json"
	"strings"
)

// MachineFlag asks the uploader CLI for JSON output instead of human text.
// It is always the first argument, before the operation name.
const MachineFlag = "--porcelain"

// Envelope is the terminal success/error shape. Single-shot operations emit
// exactly one as their whole stdout; streaming operations emit one as their
// final line.
type Envelope struct {
	Success *bool        `json:"success"`
	AssetID string       `json:"asset_id"`
	Error   *ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-supplied failure description.
type ErrorDetail struct {
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`
	Hint     string `json:"hint"`
}

// IsTerminal reports whether the envelope carries an explicit success flag.
func (e Envelope) IsTerminal() bool {
	return e.Success != nil
}

// Failed reports whether the envelope carries an explicit failure flag.
func (e Envelope) Failed() bool {
	return e.Success != nil && !*e.Success
}

// ParseEnvelope decodes a record as a terminal envelope. The boolean result
// is false when the record is not valid JSON or lacks a success flag.
func ParseEnvelope(record json.RawMessage) (Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal(record, &env); err != nil {
		return Envelope{}, false
	}
	return env, env.IsTerminal()
}

// Phase is one streamed progress record. Name is the discriminant; the byte
// counters are populated when present; Fields holds the full decoded record
// so unknown phases travel intact to the caller.
type Phase struct {
	Name       string
	BytesSent  int64
	TotalBytes int64
	ChunkIndex int
	ChunkCount int
	Fields     map[string]any
	Raw        json.RawMessage
}

// Well-known phase names. The set is open; these are only the ones the
// progress layer reacts to.
const (
	PhaseValidating     = "validating"
	PhasePrepared       = "prepared"
	PhaseUploadingChunk = "uploading_chunk"
	PhaseComplete       = "complete"
)

// ParsePhase decodes a record as a phase. The boolean result is false when
// the record carries no phase discriminant; such records are either terminal
// envelopes or noise, and neither is a phase.
func ParsePhase(record json.RawMessage) (Phase, bool) {
	var fields map[string]any
	if err := json.Unmarshal(record, &fields); err != nil {
		return Phase{}, false
	}
	name, ok := fields["phase"].(string)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Phase{}, false
	}
	phase := Phase{
		Name:       name,
		BytesSent:  intField(fields, "bytes_sent"),
		TotalBytes: intField(fields, "total_bytes"),
		ChunkIndex: int(intField(fields, "chunk_index")),
		ChunkCount: int(intField(fields, "chunk_count")),
		Fields:     fields,
		Raw:        record,
	}
	return phase, true
}

func intField(fields map[string]any, key string) int64 {
	value, ok := fields[key]
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0
		}
		return int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil || parsed < 0 {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
