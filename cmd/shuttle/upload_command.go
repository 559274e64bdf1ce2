package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"shuttle/internal/protocol"
	"shuttle/internal/queue"
	"shuttle/internal/uploader"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload one or more files through the uploader CLI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			items, err := svc.Enqueue(args...)
			if err != nil {
				return err
			}

			tracker := newUploadTracker(cmd, items, ctx.jsonMode())
			counts, drainErr := svc.Drain(runCtx, uploader.Callbacks{
				OnPhase:   tracker.onPhase,
				OnDisplay: tracker.onDisplay,
			})
			tracker.finish(svc.Queue().Items(), counts)

			if drainErr != nil {
				return drainErr
			}
			if counts.Failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", counts.Failed, counts.Failed+counts.Completed)
			}
			return nil
		},
	}
	return cmd
}

// uploadTracker turns callback events into terminal output: a rewritten
// progress line per running item in human mode, NDJSON events in JSON mode.
type uploadTracker struct {
	cmd  *cobra.Command
	json bool
	tty  bool

	mu        sync.Mutex
	totals    map[string]int64
	names     map[string]string
	phases    map[string]string
	lineWidth int
}

func newUploadTracker(cmd *cobra.Command, items []queue.Item, jsonMode bool) *uploadTracker {
	t := &uploadTracker{
		cmd:    cmd,
		json:   jsonMode,
		tty:    isTerminal(cmd.OutOrStdout()),
		totals: make(map[string]int64, len(items)),
		names:  make(map[string]string, len(items)),
		phases: make(map[string]string, len(items)),
	}
	for _, item := range items {
		t.totals[item.ID] = item.Descriptor.TotalBytes
		t.names[item.ID] = filepath.Base(item.Descriptor.SourcePath)
	}
	return t
}

func (t *uploadTracker) onPhase(itemID string, phase protocol.Phase) {
	t.mu.Lock()
	t.phases[itemID] = phase.Name
	t.mu.Unlock()

	if t.json {
		_ = writeJSON(t.cmd, map[string]any{
			"event":   "phase",
			"item_id": itemID,
			"phase":   phase.Name,
			"bytes":   phase.BytesSent,
		})
	}
}

func (t *uploadTracker) onDisplay(itemID string, displayBytes int64, percent float64) {
	if t.json {
		_ = writeJSON(t.cmd, map[string]any{
			"event":   "progress",
			"item_id": itemID,
			"bytes":   displayBytes,
			"percent": percent,
		})
		return
	}

	t.mu.Lock()
	line := progressLine(t.names[itemID], t.phases[itemID], displayBytes, t.totals[itemID], percent)
	t.rewriteLocked(line)
	t.mu.Unlock()
}

// rewriteLocked redraws the in-place progress line on a terminal, or
// appends a plain line otherwise. Caller holds t.mu.
func (t *uploadTracker) rewriteLocked(line string) {
	out := t.cmd.OutOrStdout()
	if !t.tty {
		fmt.Fprintln(out, line)
		return
	}
	padding := ""
	if w := len(line); w < t.lineWidth {
		padding = strings.Repeat(" ", t.lineWidth-w)
	}
	t.lineWidth = len(line)
	fmt.Fprintf(out, "\r%s%s", line, padding)
}

func (t *uploadTracker) finish(items []queue.Item, counts queue.Counts) {
	if t.json {
		_ = writeJSON(t.cmd, map[string]any{
			"event":     "done",
			"completed": counts.Completed,
			"failed":    counts.Failed,
			"items":     items,
		})
		return
	}

	out := t.cmd.OutOrStdout()
	t.mu.Lock()
	if t.tty && t.lineWidth > 0 {
		fmt.Fprint(out, "\r", strings.Repeat(" ", t.lineWidth), "\r")
	}
	t.mu.Unlock()

	color := t.tty
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		status := string(item.Status)
		detail := ""
		switch item.Status {
		case queue.StatusCompleted:
			status = colorize("completed", ansiGreen, color)
		case queue.StatusFailed:
			status = colorize("failed", ansiRed, color)
			detail = item.ErrorMessage
		default:
			status = colorize(status, ansiYellow, color)
		}
		rows = append(rows, []string{
			filepath.Base(item.Descriptor.SourcePath),
			status,
			byteCount(item.Descriptor.TotalBytes),
			item.AssetID,
			detail,
		})
	}
	fmt.Fprintln(out, renderSummaryTable(rows))
	fmt.Fprintf(out, "%d completed, %d failed\n", counts.Completed, counts.Failed)
}
