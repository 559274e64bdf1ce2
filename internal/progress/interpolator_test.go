package progress

import (
	"testing"
	"time"
)

type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

const (
	testTotal = int64(10 * 1024 * 1024)
	testChunk = int64(1024 * 1024)
)

func newTestInterpolator(clock *fakeClock, sink Sink) *Interpolator {
	return New(testTotal, sink,
		WithClock(clock.Now),
		WithChunkSize(testChunk),
	)
}

func TestDisplayNeverBelowTruthNorAtBoundary(t *testing.T) {
	clock := newFakeClock()
	interp := newTestInterpolator(clock, nil)

	// Establish an expected interval of ~1s between checkpoints.
	interp.UpdateTruth(testChunk)
	clock.Advance(time.Second)
	interp.UpdateTruth(2 * testChunk)

	boundary := 3 * testChunk
	for step := 0; step < 50; step++ {
		clock.Advance(100 * time.Millisecond)
		interp.Tick()
		display := interp.DisplayBytes()
		if display < interp.TruthBytes() {
			t.Fatalf("step %d: display %d fell below truth %d", step, display, interp.TruthBytes())
		}
		if display >= boundary {
			t.Fatalf("step %d: display %d reached boundary %d", step, display, boundary)
		}
	}
}

func TestDisplayIsMonotonic(t *testing.T) {
	clock := newFakeClock()
	var emitted []int64
	interp := newTestInterpolator(clock, func(bytes int64, _ float64) {
		emitted = append(emitted, bytes)
	})

	interp.UpdateTruth(testChunk)
	clock.Advance(800 * time.Millisecond)
	interp.UpdateTruth(2 * testChunk)
	for step := 0; step < 30; step++ {
		clock.Advance(100 * time.Millisecond)
		interp.Tick()
	}
	interp.UpdateTruth(3 * testChunk)

	for i := 1; i < len(emitted); i++ {
		if emitted[i] < emitted[i-1] {
			t.Fatalf("display moved backward: %d then %d", emitted[i-1], emitted[i])
		}
	}
}

func TestEaseOutAdvancesQuicklyThenDecelerates(t *testing.T) {
	clock := newFakeClock()
	interp := newTestInterpolator(clock, nil)

	interp.UpdateTruth(testChunk)
	clock.Advance(time.Second)
	interp.UpdateTruth(2 * testChunk)

	clock.Advance(100 * time.Millisecond)
	interp.Tick()
	early := interp.DisplayBytes() - interp.TruthBytes()

	clock.Advance(800 * time.Millisecond)
	interp.Tick()
	late := interp.DisplayBytes() - interp.TruthBytes()

	clock.Advance(100 * time.Millisecond)
	interp.Tick()
	final := interp.DisplayBytes() - interp.TruthBytes()

	// First 10% of the interval should cover more than 10% of the span.
	if early <= testChunk/10 {
		t.Fatalf("expected fast early advance, got %d of %d", early, testChunk)
	}
	if late-early <= 0 {
		t.Fatal("expected continued advance through the interval")
	}
	// The last 10% of the interval advances less than the first 10%.
	if final-late >= early {
		t.Fatalf("expected deceleration near the boundary: first=%d last=%d", early, final-late)
	}
}

func TestTruthUpdateIgnoresBackwardValues(t *testing.T) {
	clock := newFakeClock()
	interp := newTestInterpolator(clock, nil)

	interp.UpdateTruth(2 * testChunk)
	interp.UpdateTruth(testChunk)
	if interp.TruthBytes() != 2*testChunk {
		t.Fatalf("truth moved backward to %d", interp.TruthBytes())
	}
}

func TestReachingTotalSnapsAndStops(t *testing.T) {
	clock := newFakeClock()
	var emitted []int64
	interp := newTestInterpolator(clock, func(bytes int64, _ float64) {
		emitted = append(emitted, bytes)
	})

	interp.UpdateTruth(9 * testChunk)
	clock.Advance(time.Second)
	interp.UpdateTruth(testTotal)

	if !interp.Done() {
		t.Fatal("expected interpolation to stop at total")
	}
	if interp.DisplayBytes() != testTotal {
		t.Fatalf("expected display snapped to total, got %d", interp.DisplayBytes())
	}
	if interp.DisplayPercent() != 100 {
		t.Fatalf("expected 100 percent, got %f", interp.DisplayPercent())
	}

	// Ticking after completion is a no-op.
	count := len(emitted)
	clock.Advance(time.Second)
	if interp.Tick() {
		t.Fatal("tick after completion must not advance")
	}
	if len(emitted) != count {
		t.Fatal("tick after completion must not emit")
	}
}

func TestIdleTimeoutFreezesEstimate(t *testing.T) {
	clock := newFakeClock()
	interp := New(testTotal, nil,
		WithClock(clock.Now),
		WithChunkSize(testChunk),
		WithIdleTimeout(2*time.Second),
	)

	interp.UpdateTruth(testChunk)
	clock.Advance(time.Second)
	interp.UpdateTruth(2 * testChunk)
	clock.Advance(500 * time.Millisecond)
	interp.Tick()
	frozen := interp.DisplayBytes()

	clock.Advance(5 * time.Second)
	if interp.Tick() {
		t.Fatal("stale estimate must not advance")
	}
	if interp.DisplayBytes() != frozen {
		t.Fatalf("expected display frozen at %d, got %d", frozen, interp.DisplayBytes())
	}
}

func TestNoTickBeforeFirstTruth(t *testing.T) {
	clock := newFakeClock()
	interp := newTestInterpolator(clock, nil)

	clock.Advance(time.Second)
	if interp.Tick() {
		t.Fatal("tick without a checkpoint must not advance")
	}
	if interp.DisplayBytes() != 0 {
		t.Fatalf("expected zero display, got %d", interp.DisplayBytes())
	}
}

func TestBoundaryFallsBackToTotalWithoutChunkSize(t *testing.T) {
	clock := newFakeClock()
	interp := New(testTotal, nil, WithClock(clock.Now))

	interp.UpdateTruth(testTotal / 2)
	clock.Advance(time.Second)
	interp.UpdateTruth(testTotal/2 + 1)

	for step := 0; step < 100; step++ {
		clock.Advance(100 * time.Millisecond)
		interp.Tick()
		if interp.DisplayBytes() >= testTotal {
			t.Fatalf("display %d reached total before confirmation", interp.DisplayBytes())
		}
	}
}

func TestResetClearsState(t *testing.T) {
	clock := newFakeClock()
	interp := newTestInterpolator(clock, nil)

	interp.UpdateTruth(testTotal)
	if !interp.Done() {
		t.Fatal("expected done after total")
	}
	interp.Reset()
	if interp.Done() || interp.TruthBytes() != 0 || interp.DisplayBytes() != 0 {
		t.Fatal("expected clean state after reset")
	}

	interp.UpdateTruth(testChunk)
	if interp.TruthBytes() != testChunk {
		t.Fatal("expected interpolator to be reusable after reset")
	}
}

func TestSmoothingTracksFasterCheckpoints(t *testing.T) {
	clock := newFakeClock()
	interp := newTestInterpolator(clock, nil)

	interp.UpdateTruth(testChunk)
	clock.Advance(4 * time.Second)
	interp.UpdateTruth(2 * testChunk)
	slowExpected := interp.expected

	clock.Advance(500 * time.Millisecond)
	interp.UpdateTruth(3 * testChunk)
	if interp.expected >= slowExpected {
		t.Fatalf("expected EMA to shrink after faster checkpoint: %s -> %s", slowExpected, interp.expected)
	}
}
