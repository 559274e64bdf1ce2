package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"shuttle/internal/protocol"
)

var commandContext = exec.CommandContext

const waitDelay = 5 * time.Second

// Request describes one single-shot invocation of the uploader CLI. The
// caller prepends the machine-readable flag; the invoker runs the argument
// list exactly as given.
type Request struct {
	Binary   string
	Args     []string
	Stdin    []byte
	Deadline time.Duration
}

// Invoke runs the uploader CLI once with stdio fully captured and classifies
// the result. The returned Outcome is terminal; expected failure modes never
// surface as errors.
func Invoke(ctx context.Context, req Request) Outcome {
	binary := strings.TrimSpace(req.Binary)
	if binary == "" {
		return Outcome{Kind: KindNotFound, Message: "uploader binary not configured"}
	}

	runCtx := ctx
	if req.Deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Deadline)
		defer cancel()
	}

	cmd := commandContext(runCtx, binary, req.Args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(req.Stdin) > 0 {
		cmd.Stdin = bytes.NewReader(req.Stdin)
	}
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return classifyStartError(err)
	}

	waitErr := cmd.Wait()

	// The deadline kill supersedes whatever state the process exited in.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Outcome{Kind: KindTimedOut, Message: fmt.Sprintf("deadline %s exceeded", req.Deadline), Stderr: diagnostic(stderr)}
	}

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return Outcome{Kind: KindUnknown, Message: waitErr.Error(), ExitCode: exitCode, Stderr: diagnostic(stderr)}
		}
	}

	payload := bytes.TrimSpace(stdout.Bytes())
	if len(payload) == 0 || !json.Valid(payload) {
		return Outcome{Kind: KindBadJSON, ExitCode: exitCode, Message: "stdout is not a JSON document", Stderr: diagnostic(stderr)}
	}

	if env, ok := protocol.ParseEnvelope(payload); ok && env.Failed() {
		outcome := Outcome{Kind: KindNonZeroExit, ExitCode: exitCode, Message: "uploader reported failure", Stderr: diagnostic(stderr)}
		if env.Error != nil {
			if msg := strings.TrimSpace(env.Error.Message); msg != "" {
				outcome.Message = msg
			}
			outcome.Hint = strings.TrimSpace(env.Error.Hint)
			if env.Error.ExitCode != 0 {
				outcome.ExitCode = env.Error.ExitCode
			}
		}
		return outcome
	}

	if exitCode != 0 {
		return Outcome{
			Kind:     KindNonZeroExit,
			ExitCode: exitCode,
			Message:  fmt.Sprintf("uploader exited with status %d", exitCode),
			Stderr:   diagnostic(stderr),
		}
	}

	raw := make(json.RawMessage, len(payload))
	copy(raw, payload)
	return Outcome{Kind: KindSuccess, Payload: raw}
}

func classifyStartError(err error) Outcome {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return Outcome{Kind: KindNotFound, Message: "uploader binary not found"}
	}
	return Outcome{Kind: KindUnknown, Message: err.Error()}
}

func diagnostic(buf bytes.Buffer) string {
	return strings.TrimSpace(buf.String())
}
