package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/fwojciec/corpus"
)

// Ensure ProgressLedger implements corpus.ProgressLedger at compile time.
var _ corpus.ProgressLedger = (*ProgressLedger)(nil)

// ProgressLedger stores the crawl cursor as a small JSON file that is
// replaced atomically on every save.
type ProgressLedger struct {
	path string
}

// NewProgressLedger creates a ProgressLedger backed by the file at path.
func NewProgressLedger(path string) *ProgressLedger {
	return &ProgressLedger{path: path}
}

// LoadProgress returns the stored progress. A missing file is zero progress.
func (l *ProgressLedger) LoadProgress(_ context.Context) (*corpus.Progress, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return &corpus.Progress{}, nil
	}
	if err != nil {
		return nil, err
	}

	var p corpus.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, corpus.Errorf(corpus.EMALFORMED, "invalid progress file %s: %v", l.path, err)
	}
	return &p, nil
}

// SaveProgress replaces the stored progress.
func (l *ProgressLedger) SaveProgress(_ context.Context, p *corpus.Progress) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(l.path, data)
}
