package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusWaiting,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether a status ends an item's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Descriptor describes one upload job: the invocation to run plus the
// metadata the progress layer needs. Immutable once enqueued.
type Descriptor struct {
	Binary     string
	Args       []string
	Stdin      []byte
	Deadline   time.Duration
	SourcePath string
	TotalBytes int64
}

// Item is one queue entry. Items returned from Queue methods are copies;
// the queue owns the canonical state.
type Item struct {
	ID           string
	Descriptor   Descriptor
	Status       Status
	AssetID      string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Counts aggregates queue state per status.
type Counts struct {
	Waiting   int
	Running   int
	Completed int
	Failed    int
	Total     int
}

// Idle reports whether nothing is waiting or running.
func (c Counts) Idle() bool {
	return c.Waiting == 0 && c.Running == 0
}
