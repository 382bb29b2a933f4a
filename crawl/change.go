package crawl

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/corpus"
)

// Fingerprint returns the content hash of extracted text as 16 hex digits.
// It depends on the text only, so it is stable across runs and platforms.
func Fingerprint(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// Action is the write decision for freshly extracted content.
type Action int

const (
	// ActionNone leaves the stored document untouched.
	ActionNone Action = iota
	// ActionInsert creates the first record for a URL.
	ActionInsert
	// ActionUpdate replaces the stored record in place.
	ActionUpdate
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	default:
		return "none"
	}
}

// Decide compares freshly fetched content against what is stored.
// stored is nil when no record exists for the URL. fetched carries the
// validators of the new response; it is only consulted under
// ChangePolicyHeaders.
func Decide(stored *corpus.Metadata, newHash string, fetched *corpus.FetchResult, policy corpus.ChangePolicy) Action {
	if stored == nil {
		return ActionInsert
	}
	if stored.ContentHash != newHash {
		return ActionUpdate
	}
	if policy == corpus.ChangePolicyHeaders && fetched != nil {
		if stored.ETag != fetched.ETag || stored.LastModified != fetched.LastModified {
			return ActionUpdate
		}
	}
	return ActionNone
}
