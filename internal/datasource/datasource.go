// Package datasource downloads daily closing prices from Yahoo Finance and
// assembles them into the analyzer's price-table format. It replaces the
// manual "export a CSV from somewhere" step: fetch the stocks and the
// benchmark index in one call, date-aligned and ready for analysis.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors.
var (
	// ErrSymbolNotFound is returned when Yahoo has no data for a symbol.
	ErrSymbolNotFound = fmt.Errorf("symbol not found")
)

// ErrHTTP wraps a non-2xx response.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// defaultUserAgent is sent on every request; Yahoo rejects the Go default.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// httpClient is the shared pre-configured HTTP client.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET with browser-ish headers, returning the body. The
// caller closes the returned ReadCloser.
func doGet(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}
	return resp.Body, nil
}
