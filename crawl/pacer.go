package crawl

import (
	"context"
	"time"
)

// PauseFunc waits for d or until ctx is done, whichever comes first.
type PauseFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default PauseFunc. It returns ctx.Err() if the context ends
// before the delay elapses.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
