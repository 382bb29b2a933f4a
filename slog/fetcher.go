// Package slog provides logging decorators for the corpus interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/corpus"
)

// Ensure LoggingFetcher implements corpus.Fetcher.
var _ corpus.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging of every request.
type LoggingFetcher struct {
	next   corpus.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next corpus.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Get delegates to the wrapped fetcher and logs size and duration.
func (f *LoggingFetcher) Get(ctx context.Context, url string) (*corpus.FetchResult, error) {
	begin := time.Now()
	res, err := f.next.Get(ctx, url)
	f.log(ctx, "get", url, begin, res, err)
	return res, err
}

// Head delegates to the wrapped fetcher and logs the returned validators.
func (f *LoggingFetcher) Head(ctx context.Context, url string) (*corpus.FetchResult, error) {
	begin := time.Now()
	res, err := f.next.Head(ctx, url)
	f.log(ctx, "head", url, begin, res, err)
	return res, err
}

func (f *LoggingFetcher) log(ctx context.Context, op, url string, begin time.Time, res *corpus.FetchResult, err error) {
	if err != nil {
		f.logger.DebugContext(ctx, op,
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
		return
	}
	f.logger.DebugContext(ctx, op,
		"url", url,
		"bytes", len(res.Body),
		"etag", res.ETag,
		"last_modified", res.LastModified,
		"duration", time.Since(begin),
	)
}
