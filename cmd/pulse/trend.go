package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type trendSnapshot struct {
	ID             string   `json:"id"`
	SnapshotAt     string   `json:"snapshot_at"`
	CompositeScore float64  `json:"composite_score"`
	Source         string   `json:"source"`
	Operator       *string  `json:"operator"`
	Note           *string  `json:"note"`
	CodeScore      *float64 `json:"code_score"`
	DepsScore      *float64 `json:"deps_score"`
	GovScore       *float64 `json:"gov_score"`
	EconScore      *float64 `json:"econ_score"`
}

type trendPage struct {
	Snapshots []trendSnapshot `json:"snapshots"`
	Cursor    string          `json:"cursor"`
}

func newTrendCmd() *cobra.Command {
	var (
		serverURL string
		since     string
		limit     int
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "trend <project-id>",
		Short: "Show a project's score history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverURL)

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tSCORE\tSOURCE\tCODE\tDEPS\tGOV\tECON\tNOTE")

			cursor := ""
			for {
				q := url.Values{}
				if since != "" {
					q.Set("since", since)
				}
				if limit > 0 {
					q.Set("limit", strconv.Itoa(limit))
				}
				if cursor != "" {
					q.Set("cursor", cursor)
				}
				path := "/api/projects/" + url.PathEscape(args[0]) + "/history"
				if enc := q.Encode(); enc != "" {
					path += "?" + enc
				}

				var page trendPage
				if err := client.do("GET", path, nil, &page); err != nil {
					return err
				}
				for _, sn := range page.Snapshots {
					note := ""
					if sn.Note != nil {
						note = *sn.Note
					}
					fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\t%s\t%s\t%s\n",
						sn.SnapshotAt, sn.CompositeScore, sn.Source,
						fmtSubscore(sn.CodeScore), fmtSubscore(sn.DepsScore),
						fmtSubscore(sn.GovScore), fmtSubscore(sn.EconScore), note)
				}

				cursor = page.Cursor
				if cursor == "" || !all {
					break
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "pulsed base URL (default: PULSE_API_URL or localhost:8080)")
	cmd.Flags().StringVar(&since, "since", "", "Only snapshots at or after this RFC 3339 timestamp")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size (server default when 0)")
	cmd.Flags().BoolVar(&all, "all", false, "Follow pagination to the end of the history")

	return cmd
}
