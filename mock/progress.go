package mock

import (
	"context"

	"github.com/fwojciec/corpus"
)

var _ corpus.ProgressLedger = (*ProgressLedger)(nil)

// ProgressLedger is a mock implementation of corpus.ProgressLedger.
type ProgressLedger struct {
	LoadProgressFn func(ctx context.Context) (*corpus.Progress, error)
	SaveProgressFn func(ctx context.Context, p *corpus.Progress) error
}

func (l *ProgressLedger) LoadProgress(ctx context.Context) (*corpus.Progress, error) {
	return l.LoadProgressFn(ctx)
}

func (l *ProgressLedger) SaveProgress(ctx context.Context, p *corpus.Progress) error {
	return l.SaveProgressFn(ctx, p)
}
