// Package http provides an HTTP-based implementation of corpus.Fetcher.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/corpus"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultGetTimeout bounds a full download.
	DefaultGetTimeout = 20 * time.Second

	// DefaultHeadTimeout bounds a freshness probe.
	DefaultHeadTimeout = 10 * time.Second

	// DefaultUserAgent identifies the crawler to origin servers.
	DefaultUserAgent = "MAI-CarCrawler/1.0"

	// MaxBodySize is the largest response body accepted. Larger bodies
	// are rejected rather than truncated.
	MaxBodySize = 10 << 20
)

// Ensure Fetcher implements corpus.Fetcher at compile time.
var _ corpus.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves documents with plain HTTP requests. Every request
// carries the same User-Agent.
type Fetcher struct {
	client      *http.Client
	getTimeout  time.Duration
	headTimeout time.Duration
	userAgent   string
	limiter     corpus.DomainLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets both the GET and the HEAD timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.getTimeout = d
		f.headTimeout = d
	}
}

// WithGetTimeout sets the timeout for full downloads.
// Defaults to DefaultGetTimeout (20s) if not specified.
func WithGetTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.getTimeout = d
	}
}

// WithHeadTimeout sets the timeout for freshness probes.
// Defaults to DefaultHeadTimeout (10s) if not specified.
func WithHeadTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.headTimeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLimiter makes every request wait for a per-domain token first.
func WithLimiter(l corpus.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithClient replaces the underlying HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{},
		getTimeout:  DefaultGetTimeout,
		headTimeout: DefaultHeadTimeout,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get downloads the document at rawURL and decodes its body to UTF-8.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*corpus.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.getTimeout)
	defer cancel()

	resp, err := f.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "GET %s: HTTP %d", rawURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "GET %s: read body: %v", rawURL, err)
	}
	if len(raw) > MaxBodySize {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "GET %s: body exceeds %d bytes", rawURL, MaxBodySize)
	}

	r, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "GET %s: %v", rawURL, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "GET %s: decode body: %v", rawURL, err)
	}

	res := result(rawURL, resp)
	res.Body = string(body)
	return res, nil
}

// Head probes the document at rawURL for its validators.
func (f *Fetcher) Head(ctx context.Context, rawURL string) (*corpus.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.headTimeout)
	defer cancel()

	resp, err := f.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "HEAD %s: HTTP %d", rawURL, resp.StatusCode)
	}
	return result(rawURL, resp), nil
}

func (f *Fetcher) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	if f.limiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, corpus.Errorf(corpus.EINVALID, "invalid url %q", rawURL)
		}
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return nil, corpus.Errorf(corpus.EUNAVAILABLE, "%s %s: rate limit: %v", method, rawURL, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, corpus.Errorf(corpus.EINVALID, "%s %s: %v", method, rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, corpus.Errorf(corpus.EUNAVAILABLE, "%s %s: %v", method, rawURL, err)
	}
	return resp, nil
}

func result(rawURL string, resp *http.Response) *corpus.FetchResult {
	return &corpus.FetchResult{
		URL:          rawURL,
		StatusCode:   resp.StatusCode,
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
	}
}

// String implements fmt.Stringer for log output.
func (f *Fetcher) String() string {
	return fmt.Sprintf("http.Fetcher(ua=%q)", f.userAgent)
}
