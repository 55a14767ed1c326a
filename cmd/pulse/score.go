package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsecheck/pulsecheck/pkg/config"
	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

func newScoreCmd() *cobra.Command {
	var (
		metricsPath string
		policyPath  string
		outputFmt   string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Evaluate a metrics bundle offline",
		Long: `Reads a JSON metrics bundle and prints the resulting resilience score
without touching a database or any upstream API. Useful for tuning a
scoring policy before deploying it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(metricsPath, policyPath, outputFmt)
		},
	}

	cmd.Flags().StringVar(&metricsPath, "metrics", "", "Path to metrics bundle JSON (required)")
	cmd.Flags().StringVar(&policyPath, "policy", "pulsecheck.yaml", "Path to scoring policy file")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("metrics")

	return cmd
}

func runScore(metricsPath, policyPath, outputFmt string) error {
	data, err := os.ReadFile(metricsPath)
	if err != nil {
		return fmt.Errorf("reading metrics bundle: %w", err)
	}

	var m scoring.Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parsing metrics bundle: %w", err)
	}

	cfg, err := config.Load(policyPath)
	if err != nil {
		return err
	}

	engine := scoring.NewEngine(cfg.Policy())
	result := engine.Evaluate(m, scoring.Subscores{}, time.Time{}, time.Now().UTC())

	switch outputFmt {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		renderResult(os.Stdout, &result)
		return nil
	}
}

func renderResult(w io.Writer, r *scoring.Result) {
	fmt.Fprintf(w, "Composite score: %.1f  [%s]\n", r.Composite, r.Liveness)
	if r.Breakdown.FloorApplied {
		fmt.Fprintln(w, "  (evidence floor applied)")
	}
	fmt.Fprintln(w)
	for _, d := range r.Breakdown.Dimensions {
		sub := "n/a"
		if d.Subscore != nil {
			sub = fmt.Sprintf("%.1f", *d.Subscore)
		}
		fmt.Fprintf(w, "  %-12s %6s  (weight %.0f%%, contributes %.1f)\n",
			d.Key, sub, d.EffectiveWeight*100, d.Contribution)
	}
	if !r.LastActivity.IsZero() {
		fmt.Fprintf(w, "\nLast activity: %s\n", r.LastActivity.UTC().Format(time.RFC3339))
	}
}
