package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecalibrateCmd() *cobra.Command {
	var (
		serverURL string
		score     float64
		operator  string
		note      string
	)

	cmd := &cobra.Command{
		Use:   "recalibrate <project-id>",
		Short: "Manually override a project's composite score",
		Long: `Pins a project's composite score to a hand-set value and records the
override in the score history. The next scheduled recompute replaces it
with a fresh evidence-based score.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"score": score, "operator": operator, "note": note}

			var resp struct {
				Previous float64 `json:"previous_score"`
				Score    float64 `json:"score"`
				Liveness string  `json:"liveness"`
			}
			path := "/api/projects/" + args[0] + "/recalibrate"
			if err := newAPIClient(serverURL).do("POST", path, req, &resp); err != nil {
				return err
			}
			fmt.Printf("Recalibrated: %.1f -> %.1f  [%s]\n", resp.Previous, resp.Score, resp.Liveness)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "pulsed base URL (default: PULSE_API_URL or localhost:8080)")
	cmd.Flags().Float64Var(&score, "score", 0, "New composite score, 0-100 (required)")
	cmd.Flags().StringVar(&operator, "operator", "", "Operator name for the audit trail (required)")
	cmd.Flags().StringVar(&note, "note", "", "Reason for the override")
	_ = cmd.MarkFlagRequired("score")
	_ = cmd.MarkFlagRequired("operator")

	return cmd
}
