package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseEnvelopeSuccess(t *testing.T) {
	env, ok := ParseEnvelope(json.RawMessage(`{"success":true,"asset_id":"a1"}`))
	if !ok {
		t.Fatal("expected terminal envelope")
	}
	if env.Failed() {
		t.Fatal("expected success envelope")
	}
	if env.AssetID != "a1" {
		t.Fatalf("expected asset id a1, got %q", env.AssetID)
	}
}

func TestParseEnvelopeFailure(t *testing.T) {
	env, ok := ParseEnvelope(json.RawMessage(`{"success":false,"error":{"message":"bad token","exit_code":2,"hint":"re-run login"}}`))
	if !ok {
		t.Fatal("expected terminal envelope")
	}
	if !env.Failed() {
		t.Fatal("expected failure envelope")
	}
	if env.Error == nil || env.Error.Message != "bad token" {
		t.Fatalf("expected machine error message, got %+v", env.Error)
	}
	if env.Error.Hint != "re-run login" {
		t.Fatalf("expected hint to survive, got %q", env.Error.Hint)
	}
}

func TestParseEnvelopeRejectsRecordsWithoutFlag(t *testing.T) {
	if _, ok := ParseEnvelope(json.RawMessage(`{"phase":"validating"}`)); ok {
		t.Fatal("phase record must not parse as terminal envelope")
	}
}

func TestParsePhaseKnownFields(t *testing.T) {
	record := json.RawMessage(`{"phase":"uploading_chunk","bytes_sent":1048576,"total_bytes":10485760,"chunk_index":1,"chunk_count":10,"upload_id":"u-7"}`)
	phase, ok := ParsePhase(record)
	if !ok {
		t.Fatal("expected phase record")
	}
	if phase.Name != PhaseUploadingChunk {
		t.Fatalf("expected uploading_chunk, got %q", phase.Name)
	}
	if phase.BytesSent != 1048576 || phase.TotalBytes != 10485760 {
		t.Fatalf("unexpected byte counters: %d/%d", phase.BytesSent, phase.TotalBytes)
	}
	if phase.ChunkIndex != 1 || phase.ChunkCount != 10 {
		t.Fatalf("unexpected chunk counters: %d/%d", phase.ChunkIndex, phase.ChunkCount)
	}
	if phase.Fields["upload_id"] != "u-7" {
		t.Fatal("expected unknown fields to travel in the bag")
	}
}

func TestParsePhaseToleratesUnknownPhases(t *testing.T) {
	phase, ok := ParsePhase(json.RawMessage(`{"phase":"thumbnailing","frame":3}`))
	if !ok {
		t.Fatal("unknown phase names must still parse")
	}
	if phase.Name != "thumbnailing" {
		t.Fatalf("expected thumbnailing, got %q", phase.Name)
	}
}

func TestParsePhaseRejectsMissingDiscriminant(t *testing.T) {
	if _, ok := ParsePhase(json.RawMessage(`{"success":true,"asset_id":"a1"}`)); ok {
		t.Fatal("terminal envelope must not parse as phase")
	}
	if _, ok := ParsePhase(json.RawMessage(`{"phase":""}`)); ok {
		t.Fatal("blank discriminant must not parse as phase")
	}
}
