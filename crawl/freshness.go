package crawl

import (
	"context"

	"github.com/fwojciec/corpus"
)

// FreshnessState is the verdict of the freshness check for one URL.
type FreshnessState int

const (
	// FreshnessUnknown means no record exists; a full fetch is required.
	FreshnessUnknown FreshnessState = iota
	// FreshnessUnchanged means a stored validator matched the probe.
	FreshnessUnchanged
	// FreshnessStale means the probe matched no stored validator.
	FreshnessStale
	// FreshnessAborted means the store or the probe failed; the item is
	// skipped for this run.
	FreshnessAborted
)

func (s FreshnessState) String() string {
	switch s {
	case FreshnessUnknown:
		return "unknown"
	case FreshnessUnchanged:
		return "unchanged"
	case FreshnessStale:
		return "stale"
	default:
		return "aborted"
	}
}

// Freshness is the result of Oracle.Check.
type Freshness struct {
	State FreshnessState

	// Stored is the metadata of the existing record, nil when unknown.
	Stored *corpus.Metadata

	// MatchedOn names the validator that matched ("last-modified" or "etag").
	MatchedOn string

	// Err explains an aborted check.
	Err error
}

// Oracle decides whether a known document needs a full re-fetch, using the
// stored validators and a HEAD probe. No GET is ever issued by the oracle.
type Oracle struct {
	Documents corpus.DocumentStore
	Fetcher   corpus.Fetcher
}

// Check runs the freshness check for url.
func (o *Oracle) Check(ctx context.Context, url string) Freshness {
	exists, err := o.Documents.DocumentExists(ctx, url)
	if err != nil {
		return Freshness{State: FreshnessAborted, Err: err}
	}
	if !exists {
		return Freshness{State: FreshnessUnknown}
	}

	stored, err := o.Documents.FindMetadata(ctx, url)
	if err != nil {
		return Freshness{State: FreshnessAborted, Err: err}
	}

	probe, err := o.Fetcher.Head(ctx, url)
	if err != nil {
		return Freshness{State: FreshnessAborted, Stored: stored, Err: err}
	}

	if on, ok := ValidatorsMatch(stored, probe); ok {
		return Freshness{State: FreshnessUnchanged, Stored: stored, MatchedOn: on}
	}
	return Freshness{State: FreshnessStale, Stored: stored}
}

// ValidatorsMatch reports whether the probe repeats a stored validator.
// Either Last-Modified or ETag matching exactly is enough; empty values
// never match.
func ValidatorsMatch(stored *corpus.Metadata, probe *corpus.FetchResult) (string, bool) {
	if stored == nil || probe == nil {
		return "", false
	}
	if stored.LastModified != "" && stored.LastModified == probe.LastModified {
		return "last-modified", true
	}
	if stored.ETag != "" && stored.ETag == probe.ETag {
		return "etag", true
	}
	return "", false
}
