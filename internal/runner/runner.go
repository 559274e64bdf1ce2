package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"shuttle/internal/invoker"
	"shuttle/internal/logging"
	"shuttle/internal/ndjson"
	"shuttle/internal/protocol"
)

var commandContext = exec.CommandContext

// Request describes one streaming operation.
type Request struct {
	Binary string
	Args   []string
	Stdin  []byte
	// JobID overrides the generated id; mainly for callers that hand the
	// id out before dispatch.
	JobID string
}

// Result is the terminal resolution of a streaming run.
type Result struct {
	JobID   string
	AssetID string
	Outcome invoker.Outcome
}

// OK reports whether the run resolved with a success record.
func (r Result) OK() bool {
	return r.Outcome.OK()
}

// PhaseFunc receives raw phase records in decode order.
type PhaseFunc func(protocol.Phase)

// Runner drives streaming uploader operations against a shared registry.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
}

// New constructs a runner. The registry is required; the logger may be nil.
func New(registry *Registry, logger *slog.Logger) *Runner {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Runner{
		registry: registry,
		logger:   logging.NewComponentLogger(logger, "runner"),
	}
}

// Registry exposes the shared registry for cancellation paths.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Cancel kills a live job by id. Idempotent; never an error.
func (r *Runner) Cancel(jobID string) bool {
	cancelled := r.registry.Cancel(jobID)
	if cancelled {
		r.logger.Info("upload cancelled", logging.String(logging.FieldJobID, jobID))
	}
	return cancelled
}

// Run spawns the uploader CLI and resolves on the first terminal record in
// its stdout stream, without waiting for process exit. Phase records are
// forwarded to onPhase as they decode. If the process exits before a
// terminal record appears, the run fails with the exit code and captured
// stderr as diagnostic detail.
func (r *Runner) Run(ctx context.Context, req Request, onPhase PhaseFunc) Result {
	jobID := strings.TrimSpace(req.JobID)
	if jobID == "" {
		jobID = uuid.NewString()
	}
	result := Result{JobID: jobID}

	binary := strings.TrimSpace(req.Binary)
	if binary == "" {
		result.Outcome = invoker.Outcome{Kind: invoker.KindNotFound, Message: "uploader binary not configured"}
		return result
	}

	cmd := commandContext(ctx, binary, req.Args...) //nolint:gosec
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if len(req.Stdin) > 0 {
		cmd.Stdin = bytes.NewReader(req.Stdin)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		result.Outcome = invoker.Outcome{Kind: invoker.KindUnknown, Message: fmt.Sprintf("stdout pipe: %v", err)}
		return result
	}

	if err := cmd.Start(); err != nil {
		result.Outcome = classifySpawnError(err)
		return result
	}

	r.registry.add(jobID, cmd.Process)
	r.logger.Debug("upload started",
		logging.String(logging.FieldJobID, jobID),
		logging.Int("arg_count", len(req.Args)),
	)

	records := make(chan json.RawMessage, 16)
	go decodeStream(stdout, records)

	for record := range records {
		if phase, ok := protocol.ParsePhase(record); ok && onPhase != nil {
			onPhase(phase)
		}
		env, ok := protocol.ParseEnvelope(record)
		if !ok {
			continue
		}
		// Terminal record: resolve now, reap the process in the background.
		go r.reap(jobID, cmd, records)
		result.AssetID = env.AssetID
		result.Outcome = envelopeOutcome(env)
		return result
	}

	// Stream ended without a terminal record.
	waitErr := cmd.Wait()
	r.registry.remove(jobID)

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	switch {
	case waitErr != nil && !isExitError(waitErr):
		result.Outcome = invoker.Outcome{Kind: invoker.KindUnknown, Message: waitErr.Error(), ExitCode: exitCode, Stderr: trimmed(stderr)}
	default:
		result.Outcome = invoker.Outcome{
			Kind:     invoker.KindNonZeroExit,
			ExitCode: exitCode,
			Message:  fmt.Sprintf("uploader exited (status %d) without a terminal record", exitCode),
			Stderr:   trimmed(stderr),
		}
	}
	return result
}

// reap drains the remaining stream, waits for process exit, and removes the
// registry entry. Runs after the terminal record resolved the caller.
func (r *Runner) reap(jobID string, cmd *exec.Cmd, records <-chan json.RawMessage) {
	for range records {
	}
	_ = cmd.Wait()
	r.registry.remove(jobID)
	r.logger.Debug("upload process reaped", logging.String(logging.FieldJobID, jobID))
}

func decodeStream(stdout io.Reader, records chan<- json.RawMessage) {
	defer close(records)
	decoder := ndjson.NewDecoder()
	buf := make([]byte, 32*1024)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			for _, record := range decoder.Feed(buf[:n]) {
				records <- record
			}
		}
		if err != nil {
			for _, record := range decoder.Flush() {
				records <- record
			}
			return
		}
	}
}

func envelopeOutcome(env protocol.Envelope) invoker.Outcome {
	if !env.Failed() {
		return invoker.Outcome{Kind: invoker.KindSuccess}
	}
	outcome := invoker.Outcome{Kind: invoker.KindNonZeroExit, Message: "uploader reported failure"}
	if env.Error != nil {
		if msg := strings.TrimSpace(env.Error.Message); msg != "" {
			outcome.Message = msg
		}
		outcome.Hint = strings.TrimSpace(env.Error.Hint)
		outcome.ExitCode = env.Error.ExitCode
	}
	return outcome
}

func classifySpawnError(err error) invoker.Outcome {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return invoker.Outcome{Kind: invoker.KindNotFound, Message: "uploader binary not found"}
	}
	return invoker.Outcome{Kind: invoker.KindUnknown, Message: err.Error()}
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

func trimmed(buf bytes.Buffer) string {
	return strings.TrimSpace(buf.String())
}
