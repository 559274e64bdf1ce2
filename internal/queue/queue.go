package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrItemRunning is returned by StartNext while another item is running.
var ErrItemRunning = errors.New("queue: an item is already running")

// ErrNoRunningItem is returned when completing or failing without a running item.
var ErrNoRunningItem = errors.New("queue: no running item")

// Option configures a Queue.
type Option func(*Queue)

// WithClock injects a time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// Queue is an ordered, strictly sequential scheduler of upload jobs.
type Queue struct {
	mu    sync.Mutex
	items []*Item
	now   func() time.Time
}

// New constructs an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{now: time.Now}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue admits jobs in order and returns snapshots of the created items.
func (q *Queue) Enqueue(descriptors ...Descriptor) []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	created := make([]Item, 0, len(descriptors))
	for _, desc := range descriptors {
		now := q.now()
		item := &Item{
			ID:         uuid.NewString(),
			Descriptor: desc,
			Status:     StatusWaiting,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		q.items = append(q.items, item)
		created = append(created, *item)
	}
	return created
}

// StartNext pops the oldest waiting item into running state. It returns nil
// when the queue is idle, and ErrItemRunning when the previous item was
// never marked completed or failed.
func (q *Queue) StartNext() (*Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.runningLocked() != nil {
		return nil, ErrItemRunning
	}
	for _, item := range q.items {
		if item.Status == StatusWaiting {
			item.Status = StatusRunning
			item.UpdatedAt = q.now()
			snapshot := *item
			return &snapshot, nil
		}
	}
	return nil, nil
}

// MarkCompleted finishes the running item with its result identifier.
func (q *Queue) MarkCompleted(assetID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := q.runningLocked()
	if item == nil {
		return ErrNoRunningItem
	}
	item.Status = StatusCompleted
	item.AssetID = assetID
	item.UpdatedAt = q.now()
	return nil
}

// MarkFailed finishes the running item with an error message. The queue
// continues: the next StartNext call proceeds to the following item.
func (q *Queue) MarkFailed(message string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := q.runningLocked()
	if item == nil {
		return ErrNoRunningItem
	}
	item.Status = StatusFailed
	item.ErrorMessage = message
	item.UpdatedAt = q.now()
	return nil
}

// Cancel removes a waiting item. Running items cannot be removed from the
// queue; their process is killed through the runner instead. Returns whether
// an item was removed.
func (q *Queue) Cancel(itemID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for idx, item := range q.items {
		if item.ID != itemID {
			continue
		}
		if item.Status != StatusWaiting {
			return false
		}
		q.items = append(q.items[:idx], q.items[idx+1:]...)
		return true
	}
	return false
}

// Clear removes every item except a running one and returns the count of
// removed entries.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	removed := 0
	for _, item := range q.items {
		if item.Status == StatusRunning {
			kept = append(kept, item)
			continue
		}
		removed++
	}
	q.items = kept
	return removed
}

// Items returns an ordered snapshot of all entries.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := make([]Item, 0, len(q.items))
	for _, item := range q.items {
		snapshot = append(snapshot, *item)
	}
	return snapshot
}

// Counts returns aggregate totals per status.
func (q *Queue) Counts() Counts {
	q.mu.Lock()
	defer q.mu.Unlock()

	var counts Counts
	for _, item := range q.items {
		switch item.Status {
		case StatusWaiting:
			counts.Waiting++
		case StatusRunning:
			counts.Running++
		case StatusCompleted:
			counts.Completed++
		case StatusFailed:
			counts.Failed++
		}
	}
	counts.Total = len(q.items)
	return counts
}

func (q *Queue) runningLocked() *Item {
	for _, item := range q.items {
		if item.Status == StatusRunning {
			return item
		}
	}
	return nil
}
