package ndjson

import (
	"bytes"
	"encoding/json"
)

// Decoder accumulates raw bytes and emits one json.RawMessage per complete,
// well-formed line. It is not safe for concurrent use; each stream gets its
// own Decoder.
type Decoder struct {
	rest []byte
}

// NewDecoder constructs an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk and returns the JSON records completed by it, in
// stream order. A line is complete once its trailing newline has been seen;
// the final undelimited fragment is retained for the next call.
func (d *Decoder) Feed(chunk []byte) []json.RawMessage {
	if len(chunk) == 0 {
		return nil
	}
	d.rest = append(d.rest, chunk...)

	var records []json.RawMessage
	for {
		idx := bytes.IndexByte(d.rest, '\n')
		if idx < 0 {
			break
		}
		line := d.rest[:idx]
		d.rest = d.rest[idx+1:]
		if record, ok := parseLine(line); ok {
			records = append(records, record)
		}
	}
	return records
}

// Flush parses whatever trailing fragment remains after the stream ended.
// A process that exits without terminating its last line still gets that
// line considered once.
func (d *Decoder) Flush() []json.RawMessage {
	if len(d.rest) == 0 {
		return nil
	}
	line := d.rest
	d.rest = nil
	if record, ok := parseLine(line); ok {
		return []json.RawMessage{record}
	}
	return nil
}

// Pending reports how many buffered bytes await a newline.
func (d *Decoder) Pending() int {
	return len(d.rest)
}

func parseLine(line []byte) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil, false
	}
	if !json.Valid(trimmed) {
		return nil, false
	}
	record := make(json.RawMessage, len(trimmed))
	copy(record, trimmed)
	return record, true
}
