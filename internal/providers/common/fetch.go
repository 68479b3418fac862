package common

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"
)

const (
	fetchMaxRetries = 3
	fetchMaxBody    = 4 * 1024 * 1024
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Fetcher retrieves retail search pages with rotating browser-like headers.
// Block responses (403, 429, 503) are retried with exponential backoff.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

func (f *Fetcher) Get(ctx context.Context, rawURL string) (string, error) {
	var lastStatus int
	var lastErr error
	for attempt := 1; attempt <= fetchMaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return "", err
		}
		applyBrowserHeaders(req)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt == fetchMaxRetries {
				break
			}
			if waitErr := sleepCtx(ctx, retryDelay(attempt)); waitErr != nil {
				return "", waitErr
			}
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			payload, readErr := io.ReadAll(io.LimitReader(resp.Body, fetchMaxBody))
			resp.Body.Close()
			if readErr != nil {
				return "", readErr
			}
			return string(payload), nil
		case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			lastStatus = resp.StatusCode
			if attempt == fetchMaxRetries {
				break
			}
			if waitErr := sleepCtx(ctx, retryDelay(attempt)); waitErr != nil {
				return "", waitErr
			}
		default:
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			return "", fmt.Errorf("fetch HTTP %d: %s", resp.StatusCode, CleanHTMLText(string(payload)))
		}
	}
	if lastStatus != 0 {
		return "", fmt.Errorf("fetch blocked after %d attempts (last HTTP %d)", fetchMaxRetries, lastStatus)
	}
	return "", fmt.Errorf("fetch failed after %d attempts: %w", fetchMaxRetries, lastErr)
}

func applyBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Sec-CH-UA", `"Chromium";v="120", "Not A;Brand";v="99"`)
}

// retryDelay grows as 1.5^attempt seconds with up to 500ms of jitter.
func retryDelay(attempt int) time.Duration {
	base := 1.0
	for i := 0; i < attempt; i++ {
		base *= 1.5
	}
	return time.Duration((base + rand.Float64()*0.5) * float64(time.Second))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
