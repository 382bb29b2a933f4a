package main

import (
	"fmt"

	"github.com/fwojciec/corpus"
	"golang.org/x/sync/errgroup"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	var (
		progress *corpus.Progress
		count    int
	)

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		var err error
		progress, err = deps.Ledger.LoadProgress(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = deps.Documents.CountDocuments(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", corpus.ErrorMessage(err))
		return err
	}

	last := progress.LastProcessed
	if last == "" {
		last = "(none)"
	}
	fmt.Fprintf(deps.Stdout, "Last processed:   %s\n", last)
	fmt.Fprintf(deps.Stdout, "Total downloaded: %d\n", progress.TotalDownloaded)
	fmt.Fprintf(deps.Stdout, "Stored documents: %d (%s)\n", count, deps.Config.DB.Driver)
	return nil
}
