package corpus

import "context"

// Progress is the durable resumption cursor of a crawl.
// It is a cache of progress, not a transactional ledger: it may drift from
// what the document store actually holds.
type Progress struct {
	// LastProcessed is the identifier line of the last item the crawl moved past.
	LastProcessed string `json:"last_processed_title"`

	// TotalDownloaded counts accepted documents across all runs.
	TotalDownloaded int `json:"total_downloaded"`
}

// ResumeIndex returns the index in ids at which a crawl should continue.
// The second return value is false when a stored cursor could not be found
// in ids; the crawl then restarts from zero.
func (p *Progress) ResumeIndex(ids []string) (int, bool) {
	if p == nil || p.LastProcessed == "" {
		return 0, true
	}
	for i, id := range ids {
		if id == p.LastProcessed {
			return i + 1, true
		}
	}
	return 0, false
}

// ProgressLedger persists the crawl cursor between runs.
type ProgressLedger interface {
	// LoadProgress returns the stored progress, or zero progress if none exists.
	LoadProgress(ctx context.Context) (*Progress, error)

	// SaveProgress replaces the stored progress.
	SaveProgress(ctx context.Context, p *Progress) error
}
