package collect

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

// ChainReader collects governance metrics from a chain indexer. Projects
// without a governance contract never reach this collector; the service
// treats a nil governance address as inapplicable upstream.
type ChainReader struct {
	BaseURL    string
	WindowDays int
	HTTPClient *http.Client
}

// NewChainReader creates a governance collector.
func NewChainReader(baseURL string) *ChainReader {
	return &ChainReader{
		BaseURL:    baseURL,
		WindowDays: 90,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type governanceResponse struct {
	RecentTxCount     int    `json:"recent_tx_count"`
	LastAction        string `json:"last_action"`
	SignerCount       int    `json:"signer_count"`
	ApprovalThreshold int    `json:"approval_threshold"`
}

// Collect fetches multisig activity for a governance address.
func (c *ChainReader) Collect(ctx context.Context, addr string) (*scoring.GovernanceMetrics, error) {
	u := fmt.Sprintf("%s/accounts/%s/governance?window_days=%d", c.BaseURL, addr, c.WindowDays)

	var resp governanceResponse
	if err := getJSON(ctx, c.HTTPClient, "governance", u, nil, &resp); err != nil {
		return nil, err
	}

	m := &scoring.GovernanceMetrics{
		RecentTxCount:     resp.RecentTxCount,
		SignerCount:       resp.SignerCount,
		ApprovalThreshold: resp.ApprovalThreshold,
	}
	if resp.LastAction != "" {
		la, err := time.Parse(time.RFC3339, resp.LastAction)
		if err != nil {
			return nil, Transient("governance", fmt.Errorf("malformed last_action %q: %w", resp.LastAction, err))
		}
		m.LastAction = la
	}
	return m, nil
}
