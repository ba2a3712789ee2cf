// Package fetch retrieves remote resources over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ubuntu/app-showcase/internal/constants"
)

// ErrFetchFailure is returned when a resource could not be retrieved, either due to a network error or a non-2xx status code.
var ErrFetchFailure = errors.New("fetch failed")

// Fetcher retrieves the body of the resource at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is a Fetcher issuing plain GET requests.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64

	log *slog.Logger
}

type options struct {
	responseTimeout time.Duration
	userAgent       string
	maxBytes        int64
	logger          *slog.Logger
}

// Options represents an optional function to override HTTPFetcher default values.
type Options func(*options)

// WithResponseTimeout sets the time to wait for a complete response.
func WithResponseTimeout(d time.Duration) Options {
	return func(o *options) {
		o.responseTimeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Options {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithLogger sets the logger used by the fetcher.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.logger = l
	}
}

// NewHTTPFetcher returns a new HTTPFetcher.
func NewHTTPFetcher(args ...Options) *HTTPFetcher {
	opts := options{
		responseTimeout: constants.DefaultResponseTimeout,
		userAgent:       constants.CmdName,
		maxBytes:        constants.MaxResponseBytes,
		logger:          slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.responseTimeout},
		userAgent: opts.userAgent,
		maxBytes:  opts.maxBytes,
		log:       opts.logger,
	}
}

// Fetch returns the body of the resource at url.
func (f HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.log.Debug("Fetching remote resource", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailure, fmt.Errorf("failed to send HTTP request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Join(ErrFetchFailure, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	// Read one extra byte to detect oversized bodies.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, errors.Join(ErrFetchFailure, fmt.Errorf("failed to read response body: %v", err))
	}
	if int64(len(data)) > f.maxBytes {
		return nil, errors.Join(ErrFetchFailure, fmt.Errorf("response body exceeds %d bytes", f.maxBytes))
	}

	f.log.Debug("Fetched remote resource", "url", url, "size", len(data))
	return data, nil
}
