package ndjson

import (
	"encoding/json"
	"testing"
)

func TestDecoderEmitsCompleteLines(t *testing.T) {
	dec := NewDecoder()
	records := dec.Feed([]byte("{\"phase\":\"validating\"}\n{\"phase\":\"prepared\"}\n"))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	var first struct {
		Phase string `json:"phase"`
	}
	if err := json.Unmarshal(records[0], &first); err != nil {
		t.Fatalf("unmarshal first record: %v", err)
	}
	if first.Phase != "validating" {
		t.Fatalf("expected phase validating, got %q", first.Phase)
	}
}

func TestDecoderRetainsPartialFragment(t *testing.T) {
	dec := NewDecoder()
	if records := dec.Feed([]byte("{\"phase\":\"uploa")); len(records) != 0 {
		t.Fatalf("expected no records from partial line, got %d", len(records))
	}
	if dec.Pending() == 0 {
		t.Fatal("expected partial fragment to be buffered")
	}
	records := dec.Feed([]byte("ding_chunk\",\"bytes_sent\":1}\n"))
	if len(records) != 1 {
		t.Fatalf("expected 1 record after completion, got %d", len(records))
	}
}

func TestDecoderDropsMalformedLines(t *testing.T) {
	dec := NewDecoder()
	records := dec.Feed([]byte("not-json\n{\"ok\":true}\n{broken\n"))
	if len(records) != 1 {
		t.Fatalf("expected 1 valid record, got %d", len(records))
	}
}

func TestDecoderSkipsBlankLines(t *testing.T) {
	dec := NewDecoder()
	records := dec.Feed([]byte("\n  \n{\"ok\":true}\n"))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestDecoderFlushParsesTrailingLine(t *testing.T) {
	dec := NewDecoder()
	if records := dec.Feed([]byte("{\"success\":true}")); len(records) != 0 {
		t.Fatalf("expected unterminated line to wait, got %d records", len(records))
	}
	records := dec.Flush()
	if len(records) != 1 {
		t.Fatalf("expected flush to yield 1 record, got %d", len(records))
	}
	if dec.Pending() != 0 {
		t.Fatal("expected buffer to be drained after flush")
	}
}

func TestDecoderArbitrarySplitsMatchWholeLines(t *testing.T) {
	input := "{\"phase\":\"validating\"}\n" +
		"{\"phase\":\"uploading_chunk\",\"bytes_sent\":1048576,\"total_bytes\":10485760}\n" +
		"{\"success\":true,\"asset_id\":\"a1\"}\n"

	whole := NewDecoder().Feed([]byte(input))

	for _, size := range []int{1, 2, 3, 7, 16, 64} {
		dec := NewDecoder()
		var split []json.RawMessage
		data := []byte(input)
		for start := 0; start < len(data); start += size {
			end := start + size
			if end > len(data) {
				end = len(data)
			}
			split = append(split, dec.Feed(data[start:end])...)
		}
		split = append(split, dec.Flush()...)

		if len(split) != len(whole) {
			t.Fatalf("chunk size %d: expected %d records, got %d", size, len(whole), len(split))
		}
		for i := range whole {
			if string(split[i]) != string(whole[i]) {
				t.Fatalf("chunk size %d: record %d mismatch: %s vs %s", size, i, split[i], whole[i])
			}
		}
	}
}
