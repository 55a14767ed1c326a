package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

// DepRegistry collects dependency-health metrics from the package
// registry advisory API.
type DepRegistry struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewDepRegistry creates a dependency-health collector.
func NewDepRegistry(baseURL string) *DepRegistry {
	return &DepRegistry{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type depHealthResponse struct {
	Outdated         int     `json:"outdated"`
	Vulnerable       int     `json:"vulnerable"`
	AvgStalenessDays float64 `json:"avg_staleness_days"`
}

// Collect fetches the dependency report for a registry package.
func (c *DepRegistry) Collect(ctx context.Context, registryName string) (*scoring.DependencyMetrics, error) {
	u := fmt.Sprintf("%s/packages/%s/health", c.BaseURL, url.PathEscape(registryName))

	var resp depHealthResponse
	if err := getJSON(ctx, c.HTTPClient, "deps", u, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Outdated < 0 || resp.Vulnerable < 0 || resp.AvgStalenessDays < 0 {
		return nil, Transient("deps", fmt.Errorf("negative counts in report for %s", registryName))
	}
	return &scoring.DependencyMetrics{
		Outdated:         resp.Outdated,
		Vulnerable:       resp.Vulnerable,
		AvgStalenessDays: resp.AvgStalenessDays,
	}, nil
}
