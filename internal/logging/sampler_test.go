package logging

import "testing"

func TestSamplerEmitsOnPhaseChange(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldLog(0, "validating") {
		t.Fatal("first event should log")
	}
	if s.ShouldLog(0, "validating") {
		t.Fatal("repeat event in same bucket should be suppressed")
	}
	if !s.ShouldLog(0, "uploading_chunk") {
		t.Fatal("phase change should log")
	}
}

func TestSamplerEmitsOnBucketBoundary(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(1, "uploading_chunk")
	if s.ShouldLog(4.9, "uploading_chunk") {
		t.Fatal("same bucket should be suppressed")
	}
	if !s.ShouldLog(5.1, "uploading_chunk") {
		t.Fatal("crossing a bucket boundary should log")
	}
	if !s.ShouldLog(100, "uploading_chunk") {
		t.Fatal("completion should log")
	}
}

func TestSamplerNegativePercentMeansUnknown(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldLog(-1, "validating") {
		t.Fatal("phase change with unknown percent should log")
	}
	if s.ShouldLog(-1, "validating") {
		t.Fatal("repeated unknown percent should be suppressed")
	}
}

func TestSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "uploading_chunk")
	s.Reset()
	if !s.ShouldLog(1, "uploading_chunk") {
		t.Fatal("reset sampler should log the next event")
	}
}

func TestNilSamplerAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(10, "x") {
		t.Fatal("nil sampler must not suppress")
	}
	s.Reset()
}
