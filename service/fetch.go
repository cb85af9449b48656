package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher downloads documents by URL.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

// Fetch returns the body and content type of url. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("failed to download document: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read document: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
