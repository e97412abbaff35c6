// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil fetches remote reference tables over HTTP.
package httputil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

// RetryBaseDelay is the first backoff step. Tests override it to avoid
// real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// retryable reports whether a status is worth another attempt.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes req and retries on 429, 502, 503, and 504 with
// exponential backoff starting at RetryBaseDelay. A Retry-After header in
// seconds takes precedence over the computed delay. After maxRetries the
// last response is returned as-is so the caller can inspect it. If ctx is
// cancelled during a wait, ctx.Err() is returned.
func DoWithRetry(ctx context.Context, log *slog.Logger, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
			backoff = time.Duration(s) * time.Second
		}
		log.Warn("retrying request",
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode),
			slog.Duration("backoff", backoff),
			slog.Int("attempt", attempt+1),
			slog.Int("max_retries", maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Fetcher downloads reference tables.
type Fetcher struct {
	log    *slog.Logger
	client *http.Client
	cfg    types.HTTPConfig
}

// NewFetcher builds a fetcher with cfg's timeout. A nil client gets a new
// http.Client.
func NewFetcher(log *slog.Logger, client *http.Client, cfg types.HTTPConfig) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{log: log, client: client, cfg: cfg}
}

// Get downloads url and returns its body. Any final status other than 200
// is an error.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	if f.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.cfg.Token)
	}

	resp, err := DoWithRetry(ctx, f.log, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	f.log.Debug("fetched source", slog.String("url", url), slog.Int("bytes", len(data)))
	return data, nil
}
