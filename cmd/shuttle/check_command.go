package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shuttle/internal/invoker"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the uploader CLI is installed and responsive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()

			outcome := svc.RunOnce(cmd.Context(), []string{"version"}, nil)

			if ctx.jsonMode() {
				return writeJSON(cmd, checkReport(cfg.Uploader.Binary, outcome))
			}

			out := cmd.OutOrStdout()
			color := isTerminal(out)
			if outcome.OK() {
				version := uploaderVersion(outcome.Payload)
				fmt.Fprintf(out, "%s %s %s\n", colorize("OK", ansiGreen, color), cfg.Uploader.Binary, version)
				return nil
			}

			fmt.Fprintf(out, "%s %s: %s\n", colorize("FAIL", ansiRed, color), cfg.Uploader.Binary, outcome.Describe())
			if hint := outcome.Guidance(); hint != "" {
				fmt.Fprintf(out, "  %s\n", hint)
			}
			return fmt.Errorf("uploader check failed (%s)", outcome.Kind)
		},
	}
}

func checkReport(binary string, outcome invoker.Outcome) map[string]any {
	report := map[string]any{
		"binary": binary,
		"ok":     outcome.OK(),
		"kind":   outcome.Kind,
	}
	if !outcome.OK() {
		report["detail"] = outcome.Describe()
		report["guidance"] = outcome.Guidance()
	}
	if len(outcome.Payload) > 0 {
		report["payload"] = json.RawMessage(outcome.Payload)
	}
	return report
}

// uploaderVersion digs the version string out of the probe payload; an
// uploader that reports nothing still checks out as installed.
func uploaderVersion(payload json.RawMessage) string {
	if len(payload) == 0 {
		return "(version unknown)"
	}
	var body struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || strings.TrimSpace(body.Version) == "" {
		return "(version unknown)"
	}
	return body.Version
}
