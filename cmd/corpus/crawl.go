package main

import (
	"fmt"
	"log/slog"

	"github.com/fwojciec/corpus"
	"github.com/fwojciec/corpus/crawl"
	"github.com/fwojciec/corpus/fs"
	corpushttp "github.com/fwojciec/corpus/http"
	corpusslog "github.com/fwojciec/corpus/slog"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	logger := deps.Logger

	ids, err := fs.ReadItems(cfg.TitlesFile)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", corpus.ErrorMessage(err))
		return err
	}

	fetcher := corpushttp.NewFetcher(
		corpushttp.WithGetTimeout(cfg.Logic.GetTimeoutDuration()),
		corpushttp.WithHeadTimeout(cfg.Logic.HeadTimeoutDuration()),
		corpushttp.WithUserAgent(cfg.Logic.UserAgent),
		corpushttp.WithLimiter(crawl.NewDomainLimiter(cfg.Logic.MaxRPS)),
	)

	maxDocs := cfg.Logic.DocLimit()
	if c.MaxDocs > 0 {
		maxDocs = c.MaxDocs
	}

	crawler := &crawl.Crawler{
		Resolver:    deps.Registry,
		Extractor:   corpusslog.NewLoggingExtractor(deps.Registry, logger),
		Fetcher:     corpusslog.NewLoggingFetcher(fetcher, logger),
		Documents:   deps.Documents,
		Ledger:      deps.Ledger,
		MaxDocs:     maxDocs,
		MinWords:    cfg.Logic.MinWords,
		Delay:       cfg.Logic.DelayDuration(),
		Policy:      cfg.Logic.ChangePolicy,
		KeepRawHTML: cfg.Logic.KeepRawHTML,
		Restart:     c.Restart,
	}

	result, err := crawler.Run(deps.Ctx, ids, progressLogger(logger))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Accepted %d documents this run (%d inserted, %d updated, %d unchanged, %d identical); %d rejected, %d skipped; %d total.\n",
		result.Accepted, result.Inserted, result.Updated, result.Unchanged, result.Identical,
		result.Rejected, result.Skipped, result.TotalDownloaded)
	return nil
}

// progressLogger turns crawl progress events into log records.
func progressLogger(logger *slog.Logger) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressStarted:
			if e.CursorLost {
				logger.Warn("stored cursor not found in items list, starting from the beginning")
			}
			logger.Info("crawl started", "items", e.Total, "start", e.Index)

		case crawl.ProgressItem:
			o := e.Outcome
			attrs := []any{
				"n", fmt.Sprintf("%d/%d", e.Index+1, e.Total),
				"item", o.ID,
				"status", o.Status.String(),
				"reason", o.Reason,
			}
			if o.URL != "" {
				attrs = append(attrs, "url", o.URL)
			}
			switch o.Status {
			case crawl.StatusSkipped:
				attrs = append(attrs, "err", o.Err)
				logger.Warn("item skipped", attrs...)
			case crawl.StatusRejected:
				attrs = append(attrs, "words", o.Words)
				logger.Info("item rejected", attrs...)
			default:
				logger.Info("item done", attrs...)
			}

		case crawl.ProgressFinished:
			r := e.Result
			logger.Info("crawl finished",
				"processed", r.Processed,
				"accepted", r.Accepted,
				"rejected", r.Rejected,
				"skipped", r.Skipped,
				"total_downloaded", r.TotalDownloaded,
				"canceled", r.Canceled,
			)
		}
	}
}
