// Package remote resolves shared calendar links and keeps saved
// comparison subscriptions refreshed.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Fetcher resolves a shareable calendar URL to its raw data token.
type Fetcher struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewFetcher creates a new share-link fetcher.
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// FetchToken extracts the data token from a shared calendar URL. When
// the URL carries the token directly in its data query parameter, no
// network round trip happens. Otherwise the URL is fetched and the
// final post-redirect URL is inspected, which resolves shortened links.
func (f *Fetcher) FetchToken(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing share URL: %w", err)
	}

	if token := u.Query().Get("data"); token != "" {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building share request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching share URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("share URL returned status %d", resp.StatusCode)
	}

	if token := resp.Request.URL.Query().Get("data"); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("no calendar data found in URL %q", rawURL)
}
