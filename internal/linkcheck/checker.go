// Package linkcheck probes bookmark URLs for the clean engine. The
// verdict is deliberately black-box: a URL is broken when the server
// answers with a hard error or not at all.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPChecker verifies URLs with a HEAD request, falling back to GET
// for servers that reject HEAD.
type HTTPChecker struct {
	client *http.Client
}

// New creates a checker. timeout bounds each probe; zero means 10s.
func New(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		client: &http.Client{Timeout: timeout},
	}
}

// Check reports nil when the URL resolves. 4xx and 5xx statuses are
// broken, except 405 and 429: the former only rejects the method, the
// latter is the server pushing back, not the link rotting.
func (c *HTTPChecker) Check(ctx context.Context, url string) error {
	status, err := c.probe(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = c.probe(ctx, http.MethodGet, url)
	}
	if err != nil {
		return fmt.Errorf("probe %s: %w", url, err)
	}

	switch {
	case status == http.StatusMethodNotAllowed, status == http.StatusTooManyRequests:
		return nil
	case status >= 400:
		return fmt.Errorf("probe %s: status %d", url, status)
	}
	return nil
}

func (c *HTTPChecker) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
