package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

// TVLFeed collects economic metrics from the TVL aggregator.
type TVLFeed struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewTVLFeed creates an economic collector.
func NewTVLFeed(baseURL string) *TVLFeed {
	return &TVLFeed{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type tvlResponse struct {
	TVLUSD float64 `json:"tvl_usd"`
}

// Collect fetches current locked value for a protocol slug.
func (c *TVLFeed) Collect(ctx context.Context, slug string) (*scoring.EconomicMetrics, error) {
	u := fmt.Sprintf("%s/protocols/%s/tvl", c.BaseURL, url.PathEscape(slug))

	var resp tvlResponse
	if err := getJSON(ctx, c.HTTPClient, "economic", u, nil, &resp); err != nil {
		return nil, err
	}
	if resp.TVLUSD < 0 {
		return nil, Transient("economic", fmt.Errorf("negative tvl for %s", slug))
	}
	return &scoring.EconomicMetrics{TVLUSD: resp.TVLUSD}, nil
}
