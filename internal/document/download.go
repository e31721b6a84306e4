package document

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Retry policy for image downloads: bounded attempts with exponential
// backoff, retrying transient server errors only.
const (
	fetchRetries        = 3
	fetchBackoffFactor  = 0.3
	fetchConnectTimeout = 10 * time.Second
	fetchReadTimeout    = 30 * time.Second
)

func retryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// fetchBackoff returns the sleep before retry attempt n (1-indexed).
func fetchBackoff(attempt int) time.Duration {
	return time.Duration(fetchBackoffFactor * float64(uint(1)<<uint(attempt-1)) * float64(time.Second))
}

// Fetcher downloads a document image over HTTP. Unlike the model-API
// path, downloads are retried.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the default retry policy and
// timeouts.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: fetchConnectTimeout,
				}).DialContext,
				ResponseHeaderTimeout: fetchReadTimeout,
			},
		},
	}
}

// NewFetcherWithClient creates a Fetcher around a custom client, used by
// tests.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads the image at url, retrying up to fetchRetries times on
// connection errors and HTTP 500/502/504. It returns the body and the
// response Content-Type.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	var lastErr error

	for attempt := 0; attempt <= fetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(fetchBackoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, "", fmt.Errorf("creating request: %w", err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("downloading image: %w", err)
			continue
		}

		if retryableStatus(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("downloading image: status %d", resp.StatusCode)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("downloading image: status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading image body: %w", err)
			continue
		}

		return data, resp.Header.Get("Content-Type"), nil
	}

	return nil, "", lastErr
}
