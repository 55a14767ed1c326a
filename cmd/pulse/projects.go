package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type projectListEntry struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	CompositeScore float64  `json:"composite_score"`
	Liveness       string   `json:"liveness"`
	LastScoredAt   *string  `json:"last_scored_at"`
	CodeScore      *float64 `json:"code_score"`
	DepsScore      *float64 `json:"deps_score"`
	GovScore       *float64 `json:"gov_score"`
	EconScore      *float64 `json:"econ_score"`
}

func newProjectsCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage registered projects",
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "pulsed base URL (default: PULSE_API_URL or localhost:8080)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects and their scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			var projects []projectListEntry
			if err := newAPIClient(serverURL).do("GET", "/api/projects", nil, &projects); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSCORE\tLIVENESS\tCODE\tDEPS\tGOV\tECON\tID")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\t%s\t%s\t%s\n",
					p.Name, p.CompositeScore, p.Liveness,
					fmtSubscore(p.CodeScore), fmtSubscore(p.DepsScore),
					fmtSubscore(p.GovScore), fmtSubscore(p.EconScore), p.ID)
			}
			return tw.Flush()
		},
	}

	var (
		name           string
		category       string
		repoFullName   string
		registryName   string
		governanceAddr string
		tvlSlug        string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a project for scoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"name": name, "category": category}
			for key, v := range map[string]string{
				"repo_full_name":  repoFullName,
				"registry_name":   registryName,
				"governance_addr": governanceAddr,
				"tvl_slug":        tvlSlug,
			} {
				if v != "" {
					req[key] = v
				}
			}

			var created projectListEntry
			if err := newAPIClient(serverURL).do("POST", "/api/projects", req, &created); err != nil {
				return err
			}
			fmt.Printf("Registered %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Project name (required)")
	addCmd.Flags().StringVar(&category, "category", "library", "Project category")
	addCmd.Flags().StringVar(&repoFullName, "repo", "", "Code repository (owner/name)")
	addCmd.Flags().StringVar(&registryName, "registry", "", "Package registry name")
	addCmd.Flags().StringVar(&governanceAddr, "governance", "", "Governance contract address")
	addCmd.Flags().StringVar(&tvlSlug, "tvl-slug", "", "TVL aggregator protocol slug")
	_ = addCmd.MarkFlagRequired("name")

	cmd.AddCommand(listCmd, addCmd)
	return cmd
}

func fmtSubscore(s *float64) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *s)
}
