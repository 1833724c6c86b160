package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const _maxBodySize = 32 << 20 // 32 MiB

// Fetcher downloads external image bytes with a bounded per-request timeout.
// A timeout or a non-2xx upstream response is a fetch failure; the caller
// marks the entity failed, never hung.
type Fetcher struct {
	client *http.Client
}

func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("Fetcher - Fetch - http.NewRequestWithContext: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Fetcher - Fetch - f.client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Fetcher - Fetch - unexpected status %d from upstream", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, _maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("Fetcher - Fetch - io.ReadAll: %w", err)
	}

	return data, nil
}
