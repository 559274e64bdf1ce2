package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"shuttle/internal/config"
	"shuttle/internal/invoker"
	"shuttle/internal/logging"
	"shuttle/internal/progress"
	"shuttle/internal/protocol"
	"shuttle/internal/queue"
	"shuttle/internal/runner"
)

// streamRunner is the slice of runner.Runner the service needs; tests swap
// in fakes to avoid spawning processes.
type streamRunner interface {
	Run(ctx context.Context, req runner.Request, onPhase runner.PhaseFunc) runner.Result
	Cancel(jobID string) bool
}

type invokeFunc func(ctx context.Context, req invoker.Request) invoker.Outcome

// Callbacks receive per-item events during a drain. Either field may be
// nil. OnDisplay is synthetic interpolator output and may be invoked from
// the tick goroutine; OnPhase delivers raw records in decode order.
type Callbacks struct {
	OnPhase   func(itemID string, phase protocol.Phase)
	OnDisplay func(itemID string, displayBytes int64, percent float64)
}

// Option configures the service.
type Option func(*Service)

// WithStreamRunner injects a custom streaming runner (primarily for tests).
func WithStreamRunner(run streamRunner) Option {
	return func(s *Service) {
		if run != nil {
			s.run = run
		}
	}
}

// WithInvoker injects a custom single-shot invoker (primarily for tests).
func WithInvoker(invoke invokeFunc) Option {
	return func(s *Service) {
		if invoke != nil {
			s.invoke = invoke
		}
	}
}

// Service orchestrates uploads through the external uploader CLI.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger
	queue  *queue.Queue
	run    streamRunner
	invoke invokeFunc
}

// New constructs a service. The registry is shared with whoever needs
// out-of-band cancellation; pass nil to own a private one.
func New(cfg *config.Config, logger *slog.Logger, registry *runner.Registry, opts ...Option) *Service {
	svc := &Service{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "uploader"),
		queue:  queue.New(),
		run:    runner.New(registry, logger),
		invoke: invoker.Invoke,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Queue exposes the underlying queue for listing and cancellation.
func (s *Service) Queue() *queue.Queue {
	return s.queue
}

// RunOnce executes a single-shot uploader CLI operation with the machine
// flag prepended and the configured deadline applied.
func (s *Service) RunOnce(ctx context.Context, args []string, stdin []byte) invoker.Outcome {
	req := invoker.Request{
		Binary:   s.cfg.Uploader.Binary,
		Args:     append([]string{protocol.MachineFlag}, args...),
		Stdin:    stdin,
		Deadline: s.cfg.Deadline(),
	}
	outcome := s.invoke(ctx, req)
	if outcome.OK() {
		s.logger.Debug("single-shot operation succeeded", logging.String(logging.FieldOutcome, string(outcome.Kind)))
	} else {
		s.logger.Warn("single-shot operation failed",
			logging.String(logging.FieldOutcome, string(outcome.Kind)),
			logging.String("detail", outcome.Describe()),
			logging.String(logging.FieldErrorHint, outcome.Guidance()),
		)
	}
	return outcome
}

// Enqueue stats each file and admits an upload job for it. Files must exist
// up front; a queue full of doomed jobs helps nobody.
func (s *Service) Enqueue(paths ...string) ([]queue.Item, error) {
	descriptors := make([]queue.Descriptor, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat upload source: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("upload source %q is a directory", path)
		}
		descriptors = append(descriptors, queue.Descriptor{
			Binary:     s.cfg.Uploader.Binary,
			Args:       []string{protocol.MachineFlag, "upload", path},
			SourcePath: path,
			TotalBytes: info.Size(),
		})
	}
	items := s.queue.Enqueue(descriptors...)
	s.logger.Info("jobs enqueued", logging.Int("count", len(items)))
	return items, nil
}

// Drain processes the queue sequentially until empty. A failed item records
// its error and the drain moves on; the aggregate counts tell the story.
func (s *Service) Drain(ctx context.Context, cb Callbacks) (queue.Counts, error) {
	lock, err := s.acquireLock()
	if err != nil {
		return queue.Counts{}, err
	}
	defer s.releaseLock(lock)

	for {
		if err := ctx.Err(); err != nil {
			return s.queue.Counts(), err
		}
		item, err := s.queue.StartNext()
		if err != nil {
			return s.queue.Counts(), err
		}
		if item == nil {
			break
		}

		result := s.runItem(ctx, item, cb)
		if result.OK() {
			if err := s.queue.MarkCompleted(result.AssetID); err != nil {
				return s.queue.Counts(), err
			}
			s.logger.Info("upload completed",
				logging.String(logging.FieldItemID, item.ID),
				logging.String(logging.FieldAssetID, result.AssetID),
				logging.String(logging.FieldSource, item.Descriptor.SourcePath),
			)
			continue
		}
		if err := s.queue.MarkFailed(result.Outcome.Describe()); err != nil {
			return s.queue.Counts(), err
		}
		s.logger.Error("upload failed",
			logging.String(logging.FieldItemID, item.ID),
			logging.String(logging.FieldSource, item.Descriptor.SourcePath),
			logging.String(logging.FieldOutcome, string(result.Outcome.Kind)),
			logging.Int(logging.FieldExitCode, result.Outcome.ExitCode),
			logging.String("detail", result.Outcome.Describe()),
			logging.String(logging.FieldErrorHint, result.Outcome.Guidance()),
		)
	}
	return s.queue.Counts(), nil
}

// Cancel stops an item wherever it lives: a running item gets its process
// killed, a waiting item is removed from the queue. Idempotent.
func (s *Service) Cancel(itemID string) bool {
	if s.run.Cancel(itemID) {
		return true
	}
	return s.queue.Cancel(itemID)
}

func (s *Service) runItem(ctx context.Context, item *queue.Item, cb Callbacks) runner.Result {
	itemID := item.ID
	desc := item.Descriptor

	var sink progress.Sink
	if cb.OnDisplay != nil {
		sink = func(bytes int64, percent float64) {
			cb.OnDisplay(itemID, bytes, percent)
		}
	}
	interp := progress.New(desc.TotalBytes, sink,
		progress.WithChunkSize(s.cfg.ChunkSize()),
		progress.WithTick(s.cfg.TickInterval()),
		progress.WithSmoothing(s.cfg.Progress.Smoothing),
		progress.WithMargin(s.cfg.Progress.Margin),
		progress.WithIdleTimeout(s.cfg.IdleTimeout()),
	)
	tickCtx, stopTicking := context.WithCancel(ctx)
	defer stopTicking()
	go interp.Run(tickCtx)

	sampler := logging.NewProgressSampler(5)
	onPhase := func(phase protocol.Phase) {
		if phase.Name == protocol.PhaseUploadingChunk && phase.BytesSent > 0 {
			interp.UpdateTruth(phase.BytesSent)
		}
		if sampler.ShouldLog(interp.DisplayPercent(), phase.Name) {
			s.logger.Debug("upload progress",
				logging.String(logging.FieldItemID, itemID),
				logging.String(logging.FieldPhase, phase.Name),
				logging.Int64(logging.FieldProgressBytes, interp.TruthBytes()),
			)
		}
		if cb.OnPhase != nil {
			cb.OnPhase(itemID, phase)
		}
	}

	s.logger.Info("upload started",
		logging.String(logging.FieldItemID, itemID),
		logging.String(logging.FieldSource, desc.SourcePath),
		logging.Int64("total_bytes", desc.TotalBytes),
	)
	return s.run.Run(ctx, runner.Request{
		Binary: desc.Binary,
		Args:   desc.Args,
		Stdin:  desc.Stdin,
		JobID:  itemID,
	}, onPhase)
}

// ErrSessionBusy indicates another shuttle session holds the upload lock.
var ErrSessionBusy = errors.New("another shuttle session is uploading")
