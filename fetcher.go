package corpus

import "context"

// FetchResult holds one HTTP exchange. Body is empty for HEAD probes.
// It is consumed once by the crawl driver and never persisted as is.
type FetchResult struct {
	URL          string
	StatusCode   int
	Body         string
	LastModified string
	ETag         string
}

// Fetcher retrieves documents over HTTP with a fixed client identity.
// Both methods return EUNAVAILABLE on network failure or a non-200 status,
// so callers can treat any error as "skip this item for this run".
type Fetcher interface {
	// Get downloads the full document body.
	Get(ctx context.Context, url string) (*FetchResult, error)

	// Head probes the document and returns its validators only.
	Head(ctx context.Context, url string) (*FetchResult, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
