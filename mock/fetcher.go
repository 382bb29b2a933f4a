package mock

import (
	"context"

	"github.com/fwojciec/corpus"
)

var _ corpus.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of corpus.Fetcher.
type Fetcher struct {
	GetFn  func(ctx context.Context, url string) (*corpus.FetchResult, error)
	HeadFn func(ctx context.Context, url string) (*corpus.FetchResult, error)
}

func (f *Fetcher) Get(ctx context.Context, url string) (*corpus.FetchResult, error) {
	return f.GetFn(ctx, url)
}

func (f *Fetcher) Head(ctx context.Context, url string) (*corpus.FetchResult, error) {
	return f.HeadFn(ctx, url)
}

var _ corpus.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of corpus.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
