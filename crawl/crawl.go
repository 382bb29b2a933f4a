// Package crawl provides the incremental crawl-and-update engine.
// It walks a fixed list of item identifiers in order, probes known
// documents before downloading them again, extracts and fingerprints their
// text, writes each document at most once per URL and checkpoints its
// position after every item so an interrupted run can resume.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/corpus"
)

// Crawler drives one sequential crawl over a list of item identifiers.
// Items are processed strictly in list order; each item's requests finish
// before the next item begins.
type Crawler struct {
	Resolver  corpus.Resolver
	Extractor corpus.Extractor
	Fetcher   corpus.Fetcher
	Documents corpus.DocumentStore
	Ledger    corpus.ProgressLedger

	// MaxDocs bounds the documents accepted in one run. Zero means no limit.
	MaxDocs int

	// MinWords is the smallest accepted text; shorter text is rejected.
	MinWords int

	// Delay is the politeness pause after every accepted item.
	Delay time.Duration

	Policy      corpus.ChangePolicy
	KeepRawHTML bool

	// Restart ignores the stored cursor and begins at the first item.
	// The cumulative download count is kept.
	Restart bool

	// Pause defaults to Sleep. Now defaults to time.Now.
	Pause PauseFunc
	Now   func() time.Time
}

// Status classifies the outcome of one item.
type Status int

const (
	// StatusSkipped: transient failure or malformed identifier. Retried next run.
	StatusSkipped Status = iota
	// StatusRejected: extracted text below the minimum length.
	StatusRejected
	// StatusInserted: first record written for the URL.
	StatusInserted
	// StatusUpdated: stored record replaced in place.
	StatusUpdated
	// StatusUnchanged: probe matched a stored validator; nothing downloaded.
	StatusUnchanged
	// StatusIdentical: downloaded again but nothing needed writing.
	StatusIdentical
)

func (s Status) String() string {
	switch s {
	case StatusRejected:
		return "rejected"
	case StatusInserted:
		return "inserted"
	case StatusUpdated:
		return "updated"
	case StatusUnchanged:
		return "unchanged"
	case StatusIdentical:
		return "identical"
	default:
		return "skipped"
	}
}

// Accepted reports whether the status counts as an accepted document.
func (s Status) Accepted() bool {
	switch s {
	case StatusInserted, StatusUpdated, StatusUnchanged, StatusIdentical:
		return true
	}
	return false
}

// Outcome is the tagged result of processing one item.
type Outcome struct {
	ID     string
	Item   corpus.Item
	URL    string
	Status Status
	Reason string
	Err    error
	Words  int
}

func skip(o Outcome, reason string, err error) Outcome {
	o.Status = StatusSkipped
	o.Reason = reason
	o.Err = err
	return o
}

// Result summarizes a crawl run.
type Result struct {
	StartIndex int
	Processed  int
	Accepted   int
	Inserted   int
	Updated    int
	Unchanged  int
	Identical  int
	Rejected   int
	Skipped    int

	// TotalDownloaded is the ledger's cumulative count after the run.
	TotalDownloaded int

	// Canceled is set when the run stopped early because ctx ended.
	Canceled bool
}

func (r *Result) add(o Outcome) {
	r.Processed++
	switch o.Status {
	case StatusInserted:
		r.Inserted++
	case StatusUpdated:
		r.Updated++
	case StatusUnchanged:
		r.Unchanged++
	case StatusIdentical:
		r.Identical++
	case StatusRejected:
		r.Rejected++
	default:
		r.Skipped++
	}
	if o.Status.Accepted() {
		r.Accepted++
	}
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressItem
	ProgressFinished
)

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type ProgressType

	// Index is the position of the item in the list; Total is the list length.
	Index int
	Total int

	// CursorLost is set on ProgressStarted when the stored cursor was not
	// found in the list and the crawl fell back to the first item.
	CursorLost bool

	Outcome *Outcome
	Result  *Result
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Run processes ids starting after the stored cursor. It stops after the
// last id, after MaxDocs accepted documents, or at the first item boundary
// after ctx is canceled. A canceled context never interrupts an item that
// is already in flight. The returned error is non-nil only for ledger
// failures; per-item failures are reported as outcomes.
func (c *Crawler) Run(ctx context.Context, ids []string, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	pause := c.Pause
	if pause == nil {
		pause = Sleep
	}

	p, err := c.Ledger.LoadProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if p == nil {
		p = &corpus.Progress{}
	}
	if c.Restart {
		p.LastProcessed = ""
	}

	start, found := p.ResumeIndex(ids)
	result := &Result{StartIndex: start, TotalDownloaded: p.TotalDownloaded}
	progress(ProgressEvent{Type: ProgressStarted, Index: start, Total: len(ids), CursorLost: !found})

	for i := start; i < len(ids); i++ {
		if c.MaxDocs > 0 && result.Accepted >= c.MaxDocs {
			break
		}
		if ctx.Err() != nil {
			result.Canceled = true
			break
		}

		// The item runs to completion even if ctx is canceled meanwhile.
		outcome := c.processItem(context.WithoutCancel(ctx), ids[i])
		result.add(outcome)

		p.LastProcessed = ids[i]
		if outcome.Status.Accepted() {
			p.TotalDownloaded++
		}
		result.TotalDownloaded = p.TotalDownloaded
		if err := c.Ledger.SaveProgress(context.WithoutCancel(ctx), p); err != nil {
			return result, fmt.Errorf("save progress: %w", err)
		}

		progress(ProgressEvent{Type: ProgressItem, Index: i, Total: len(ids), Outcome: &outcome})

		if outcome.Status.Accepted() {
			if err := pause(ctx, c.Delay); err != nil {
				result.Canceled = true
				break
			}
		}
	}

	progress(ProgressEvent{Type: ProgressFinished, Total: len(ids), Result: result})
	return result, nil
}

// processItem runs one item through probe, fetch, extract, fingerprint and write.
func (c *Crawler) processItem(ctx context.Context, id string) Outcome {
	o := Outcome{ID: id}

	item, err := corpus.ParseItem(id)
	if err != nil {
		return skip(o, "malformed item id", err)
	}
	o.Item = item

	url, err := c.Resolver.Resolve(item)
	if err != nil {
		return skip(o, "unknown source", err)
	}
	o.URL = url

	oracle := &Oracle{Documents: c.Documents, Fetcher: c.Fetcher}
	fresh := oracle.Check(ctx, url)
	switch fresh.State {
	case FreshnessAborted:
		return skip(o, "freshness check failed", fresh.Err)
	case FreshnessUnchanged:
		o.Status = StatusUnchanged
		o.Reason = "not modified (" + fresh.MatchedOn + ")"
		return o
	}

	res, err := c.Fetcher.Get(ctx, url)
	if err != nil {
		return skip(o, "fetch failed", err)
	}

	text, err := c.Extractor.Extract(item.Source, res.Body)
	if err != nil {
		return skip(o, "extraction failed", err)
	}
	o.Words = corpus.WordCount(text)
	if o.Words < c.MinWords {
		o.Status = StatusRejected
		o.Reason = fmt.Sprintf("text too short (%d words)", o.Words)
		return o
	}

	hash := Fingerprint(text)
	action := Decide(fresh.Stored, hash, res, c.Policy)
	if action == ActionNone {
		o.Status = StatusIdentical
		o.Reason = "content unchanged"
		return o
	}

	doc := &corpus.Document{
		URL:          url,
		Title:        item.Title,
		Source:       item.Source,
		Text:         text,
		ContentHash:  hash,
		LastModified: res.LastModified,
		ETag:         res.ETag,
		FetchedAt:    c.now(),
	}
	if c.KeepRawHTML {
		doc.RawHTML = res.Body
	}

	if action == ActionInsert {
		if err := c.Documents.InsertDocument(ctx, doc); err != nil {
			return skip(o, "insert failed", err)
		}
		o.Status = StatusInserted
		o.Reason = "new document"
		return o
	}

	if err := c.Documents.UpdateDocument(ctx, url, doc); err != nil {
		return skip(o, "update failed", err)
	}
	o.Status = StatusUpdated
	if fresh.Stored.ContentHash != hash {
		o.Reason = "content changed"
	} else {
		o.Reason = "validators refreshed"
	}
	return o
}

func (c *Crawler) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}
