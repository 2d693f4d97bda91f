package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"ArticleEnricher/internal/domain"
	"ArticleEnricher/internal/ports"
)

const maxBodyBytes = 10 << 20

// Options configure the HTTP fetcher.
type Options struct {
	Timeout            time.Duration
	InsecureSkipVerify bool
	UserAgent          string
}

// HTTPFetcher retrieves pages over plain HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.PageFetcher = (*HTTPFetcher)(nil)

// New builds a fetcher; timeout defaults to 30s.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ArticleEnricher/1.0"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
	}
}

// Fetch returns the body of pageURL; any non-200 status is a FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &domain.FetchError{URL: pageURL, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &domain.FetchError{URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return string(body), nil
}
