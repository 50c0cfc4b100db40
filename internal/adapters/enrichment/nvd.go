package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/uwillc/netposture/internal/core/domain"
)

const userAgent = "netposture/0.4.0 (+https://github.com/uwillc/netposture)"

// NVDClient fetches enrichment fragments from an NVD-style JSON endpoint:
// GET <base>/cve/<id> returning the fragment document.
//
// Any non-200 response, transport error, deadline or malformed payload is
// reported as an error; callers treat all of them as provider unavailable.
type NVDClient struct {
	base *url.URL
	c    *http.Client
}

// NewNVDClient creates a client for the given feed base URL. A nil client
// uses http.DefaultClient; request deadlines come from the caller context.
func NewNVDClient(base string, c *http.Client) (*NVDClient, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}
	if c == nil {
		c = http.DefaultClient
	}
	return &NVDClient{base: u, c: c}, nil
}

// Fetch implements ports.EnrichmentSource.
func (n *NVDClient) Fetch(ctx context.Context, cveID string) (*domain.EnrichmentFragment, error) {
	u, err := n.base.Parse("cve/" + url.PathEscape(cveID))
	if err != nil {
		return nil, fmt.Errorf("building feed URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var frag domain.EnrichmentFragment
	if err := json.NewDecoder(resp.Body).Decode(&frag); err != nil {
		return nil, fmt.Errorf("malformed provider payload: %w", err)
	}
	if frag.ID == "" {
		frag.ID = cveID
	}
	return &frag, nil
}
