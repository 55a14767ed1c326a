package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

// CodeHosting collects code-activity metrics from the code-hosting
// activity API.
type CodeHosting struct {
	BaseURL    string
	Token      string
	WindowDays int
	HTTPClient *http.Client
}

// NewCodeHosting creates a code-activity collector.
func NewCodeHosting(baseURL, token string) *CodeHosting {
	return &CodeHosting{
		BaseURL:    baseURL,
		Token:      token,
		WindowDays: 30,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type codeActivityResponse struct {
	Days []struct {
		Date   string         `json:"date"`
		Counts map[string]int `json:"counts"`
	} `json:"days"`
	IsFork               bool   `json:"is_fork"`
	DistinctContributors int    `json:"distinct_contributors"`
	LastPush             string `json:"last_push"`
}

// Collect fetches the trailing activity window for a repository.
func (c *CodeHosting) Collect(ctx context.Context, repoFullName string) (*scoring.CodeMetrics, error) {
	u := fmt.Sprintf("%s/repos/%s/activity?window_days=%d",
		c.BaseURL, url.PathEscape(repoFullName), c.WindowDays)

	headers := map[string]string{}
	if c.Token != "" {
		headers["Authorization"] = "Bearer " + c.Token
	}

	var resp codeActivityResponse
	if err := getJSON(ctx, c.HTTPClient, "code", u, headers, &resp); err != nil {
		return nil, err
	}

	m := &scoring.CodeMetrics{
		IsFork:               resp.IsFork,
		DistinctContributors: resp.DistinctContributors,
	}
	for _, d := range resp.Days {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, Transient("code", fmt.Errorf("malformed day %q: %w", d.Date, err))
		}
		counts := make(map[scoring.EventType]int, len(d.Counts))
		for typ, n := range d.Counts {
			counts[scoring.EventType(typ)] = n
		}
		m.Days = append(m.Days, scoring.ActivityDay{Date: date, Counts: counts})
	}
	if resp.LastPush != "" {
		lp, err := time.Parse(time.RFC3339, resp.LastPush)
		if err != nil {
			return nil, Transient("code", fmt.Errorf("malformed last_push %q: %w", resp.LastPush, err))
		}
		m.LastPush = lp
	}
	return m, nil
}
