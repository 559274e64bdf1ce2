package progress

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultTick is the display update cadence.
	DefaultTick = 100 * time.Millisecond
	// DefaultSmoothing is the EMA factor for the expected checkpoint
	// interval. Larger reacts faster to changing transfer speed.
	DefaultSmoothing = 0.3
	// DefaultMargin is the fraction of each interval held back so the
	// estimate never touches the boundary before the real checkpoint.
	DefaultMargin = 0.015
	// DefaultIdleTimeout freezes estimation when no checkpoint arrives.
	DefaultIdleTimeout = 30 * time.Second

	// fallbackExpected seeds the estimate before two checkpoints exist.
	fallbackExpected = time.Second
)

// Sink receives smoothed display updates. Values are synthetic and never
// correspond to a literal line from the stream.
type Sink func(displayBytes int64, percent float64)

// Option configures an Interpolator.
type Option func(*Interpolator)

// WithTick overrides the tick interval.
func WithTick(d time.Duration) Option {
	return func(i *Interpolator) {
		if d > 0 {
			i.tick = d
		}
	}
}

// WithSmoothing overrides the EMA smoothing factor. Values outside (0,1)
// are ignored.
func WithSmoothing(alpha float64) Option {
	return func(i *Interpolator) {
		if alpha > 0 && alpha < 1 {
			i.smoothing = alpha
		}
	}
}

// WithMargin overrides the reserved boundary fraction. Values outside (0,1)
// are ignored.
func WithMargin(margin float64) Option {
	return func(i *Interpolator) {
		if margin > 0 && margin < 1 {
			i.margin = margin
		}
	}
}

// WithIdleTimeout overrides the stale-estimate cutoff.
func WithIdleTimeout(d time.Duration) Option {
	return func(i *Interpolator) {
		if d > 0 {
			i.idleMax = d
		}
	}
}

// WithChunkSize sets the fixed chunk size so intra-file boundaries fall on
// chunk edges instead of the file total.
func WithChunkSize(size int64) Option {
	return func(i *Interpolator) {
		if size > 0 {
			i.chunkSize = size
		}
	}
}

// WithClock injects a time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(i *Interpolator) {
		if now != nil {
			i.now = now
		}
	}
}

// Interpolator is a per-job estimator. Instances are not shared between
// jobs; Reset prepares one for reuse.
type Interpolator struct {
	total     int64
	chunkSize int64
	tick      time.Duration
	smoothing float64
	margin    float64
	idleMax   time.Duration
	sink      Sink
	now       func() time.Time

	mu        sync.Mutex
	truth     int64
	display   int64
	lastTruth time.Time
	expected  time.Duration
	haveTruth bool
	done      bool
}

// New constructs an interpolator for a job of totalBytes. The sink may be
// nil when the caller only polls the derived values.
func New(totalBytes int64, sink Sink, opts ...Option) *Interpolator {
	interp := &Interpolator{
		total:     totalBytes,
		tick:      DefaultTick,
		smoothing: DefaultSmoothing,
		margin:    DefaultMargin,
		idleMax:   DefaultIdleTimeout,
		sink:      sink,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(interp)
	}
	return interp
}

// UpdateTruth records an externally confirmed checkpoint. Stale or backward
// values are ignored; truth only moves forward. Reaching the total snaps the
// display and stops interpolation for good.
func (i *Interpolator) UpdateTruth(confirmedBytes int64) {
	i.mu.Lock()
	if i.done || confirmedBytes <= i.truth {
		i.mu.Unlock()
		return
	}

	now := i.now()
	if i.haveTruth {
		if elapsed := now.Sub(i.lastTruth); elapsed > 0 {
			if i.expected <= 0 {
				i.expected = elapsed
			} else {
				i.expected = time.Duration(i.smoothing*float64(elapsed) + (1-i.smoothing)*float64(i.expected))
			}
		}
	}
	i.truth = confirmedBytes
	i.lastTruth = now
	i.haveTruth = true
	if i.display < i.truth {
		i.display = i.truth
	}
	if i.total > 0 && i.truth >= i.total {
		i.truth = i.total
		i.display = i.total
		i.done = true
	}
	display, percent := i.display, i.percentLocked()
	sink := i.sink
	i.mu.Unlock()

	if sink != nil {
		sink(display, percent)
	}
}

// Tick advances the display estimate once and reports whether it moved.
// Run calls this on the tick interval; tests call it directly with an
// injected clock.
func (i *Interpolator) Tick() bool {
	i.mu.Lock()
	if i.done || !i.haveTruth {
		i.mu.Unlock()
		return false
	}

	elapsed := i.now().Sub(i.lastTruth)
	if i.idleMax > 0 && elapsed > i.idleMax {
		// Stale: freeze at the last value rather than guess indefinitely.
		i.mu.Unlock()
		return false
	}

	boundary := i.nextBoundaryLocked()
	span := boundary - i.truth
	if span <= 0 {
		i.mu.Unlock()
		return false
	}

	expected := i.expected
	if expected <= 0 {
		expected = fallbackExpected
	}
	t := float64(elapsed) / float64(expected)
	if t > 1 {
		t = 1
	}
	if t < 0 {
		t = 0
	}
	eased := 1 - (1-t)*(1-t)*(1-t)

	candidate := i.truth + int64(float64(span)*eased*(1-i.margin))
	if candidate >= boundary {
		candidate = boundary - 1
	}
	if candidate <= i.display {
		i.mu.Unlock()
		return false
	}
	i.display = candidate
	display, percent := i.display, i.percentLocked()
	sink := i.sink
	i.mu.Unlock()

	if sink != nil {
		sink(display, percent)
	}
	return true
}

// Run ticks until the context ends or the job reaches its total.
func (i *Interpolator) Run(ctx context.Context) {
	ticker := time.NewTicker(i.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.Tick()
			if i.Done() {
				return
			}
		}
	}
}

// Reset clears all estimator state for reuse on a new job.
func (i *Interpolator) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.truth = 0
	i.display = 0
	i.lastTruth = time.Time{}
	i.expected = 0
	i.haveTruth = false
	i.done = false
}

// TruthBytes returns the last confirmed checkpoint.
func (i *Interpolator) TruthBytes() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.truth
}

// DisplayBytes returns the current smoothed value.
func (i *Interpolator) DisplayBytes() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.display
}

// DisplayPercent returns the smoothed value as a percentage of the total,
// or 0 when the total is unknown.
func (i *Interpolator) DisplayPercent() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.percentLocked()
}

// Done reports whether truth reached the total and interpolation ceased.
func (i *Interpolator) Done() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.done
}

// nextBoundaryLocked returns the smallest known upper checkpoint strictly
// greater than truth: the next chunk edge when a chunk size is known,
// otherwise the total.
func (i *Interpolator) nextBoundaryLocked() int64 {
	if i.chunkSize > 0 {
		boundary := (i.truth/i.chunkSize + 1) * i.chunkSize
		if i.total > 0 && boundary > i.total {
			boundary = i.total
		}
		return boundary
	}
	return i.total
}

func (i *Interpolator) percentLocked() float64 {
	if i.total <= 0 {
		return 0
	}
	return float64(i.display) / float64(i.total) * 100
}
