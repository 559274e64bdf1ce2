package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAccountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the uploader account currently signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			outcome := svc.RunOnce(cmd.Context(), []string{"auth", "status"}, nil)

			if ctx.jsonMode() {
				if outcome.OK() && len(outcome.Payload) > 0 {
					return writeJSON(cmd, json.RawMessage(outcome.Payload))
				}
				return writeJSON(cmd, map[string]any{
					"ok":       outcome.OK(),
					"kind":     outcome.Kind,
					"detail":   outcome.Describe(),
					"guidance": outcome.Guidance(),
				})
			}

			out := cmd.OutOrStdout()
			if !outcome.OK() {
				fmt.Fprintf(out, "Not signed in: %s\n", outcome.Describe())
				if hint := outcome.Guidance(); hint != "" {
					fmt.Fprintf(out, "  %s\n", hint)
				}
				return fmt.Errorf("account lookup failed (%s)", outcome.Kind)
			}

			var body struct {
				Account string `json:"account"`
				Email   string `json:"email"`
			}
			_ = json.Unmarshal(outcome.Payload, &body)
			label := strings.TrimSpace(body.Account)
			if label == "" {
				label = strings.TrimSpace(body.Email)
			}
			if label == "" {
				fmt.Fprintln(out, "Signed in")
				return nil
			}
			fmt.Fprintf(out, "Signed in as %s\n", label)
			return nil
		},
	}
}
