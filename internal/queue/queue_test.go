package queue

import (
	"errors"
	"fmt"
	"testing"
)

func TestEnqueueAndCounts(t *testing.T) {
	q := New()
	items := q.Enqueue(
		Descriptor{SourcePath: "/videos/a.mkv"},
		Descriptor{SourcePath: "/videos/b.mkv"},
	)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	counts := q.Counts()
	if counts.Waiting != 2 || counts.Total != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestStartNextPopsOldestFirst(t *testing.T) {
	q := New()
	q.Enqueue(Descriptor{SourcePath: "first"}, Descriptor{SourcePath: "second"})

	item, err := q.StartNext()
	if err != nil {
		t.Fatalf("StartNext returned error: %v", err)
	}
	if item == nil || item.Descriptor.SourcePath != "first" {
		t.Fatalf("expected oldest item first, got %+v", item)
	}
	if item.Status != StatusRunning {
		t.Fatalf("expected running status, got %s", item.Status)
	}
}

func TestStartNextRejectsSecondRunner(t *testing.T) {
	q := New()
	q.Enqueue(Descriptor{}, Descriptor{})

	if _, err := q.StartNext(); err != nil {
		t.Fatalf("first StartNext: %v", err)
	}
	if _, err := q.StartNext(); !errors.Is(err, ErrItemRunning) {
		t.Fatalf("expected ErrItemRunning, got %v", err)
	}
}

func TestMarkCompletedRequiresRunningItem(t *testing.T) {
	q := New()
	if err := q.MarkCompleted("a1"); !errors.Is(err, ErrNoRunningItem) {
		t.Fatalf("expected ErrNoRunningItem, got %v", err)
	}
	if err := q.MarkFailed("boom"); !errors.Is(err, ErrNoRunningItem) {
		t.Fatalf("expected ErrNoRunningItem, got %v", err)
	}
}

func TestContinueOnErrorProcessesAllItems(t *testing.T) {
	q := New()
	const total = 5
	for i := 0; i < total; i++ {
		q.Enqueue(Descriptor{SourcePath: fmt.Sprintf("video-%d", i)})
	}

	processed := 0
	for {
		item, err := q.StartNext()
		if err != nil {
			t.Fatalf("StartNext: %v", err)
		}
		if item == nil {
			break
		}
		processed++
		if processed%2 == 0 {
			if err := q.MarkFailed("upload failed"); err != nil {
				t.Fatalf("MarkFailed: %v", err)
			}
		} else {
			if err := q.MarkCompleted(fmt.Sprintf("asset-%d", processed)); err != nil {
				t.Fatalf("MarkCompleted: %v", err)
			}
		}
	}

	if processed != total {
		t.Fatalf("expected %d processed items, got %d", total, processed)
	}
	counts := q.Counts()
	if counts.Waiting != 0 {
		t.Fatalf("expected empty waiting set, got %d", counts.Waiting)
	}
	if counts.Completed+counts.Failed != total {
		t.Fatalf("expected completed+failed == %d, got %+v", total, counts)
	}
	if !counts.Idle() {
		t.Fatal("expected idle queue after drain")
	}
}

func TestCancelRemovesWaitingOnly(t *testing.T) {
	q := New()
	items := q.Enqueue(Descriptor{}, Descriptor{})

	running, err := q.StartNext()
	if err != nil {
		t.Fatalf("StartNext: %v", err)
	}
	if q.Cancel(running.ID) {
		t.Fatal("running item must not be removable")
	}
	if !q.Cancel(items[1].ID) {
		t.Fatal("waiting item should be removable")
	}
	if q.Cancel(items[1].ID) {
		t.Fatal("second cancel for the same id must be a no-op")
	}
	if q.Cancel("unknown-id") {
		t.Fatal("unknown id must be a no-op")
	}
}

func TestClearKeepsRunningItem(t *testing.T) {
	q := New()
	q.Enqueue(Descriptor{}, Descriptor{}, Descriptor{})
	if _, err := q.StartNext(); err != nil {
		t.Fatalf("StartNext: %v", err)
	}

	if removed := q.Clear(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	counts := q.Counts()
	if counts.Running != 1 || counts.Total != 1 {
		t.Fatalf("expected running item to survive clear, got %+v", counts)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus(" Waiting "); !ok || status != StatusWaiting {
		t.Fatalf("expected waiting, got %q ok=%v", status, ok)
	}
	if _, ok := ParseStatus("paused"); ok {
		t.Fatal("unknown status must not parse")
	}
}
