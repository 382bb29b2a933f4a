package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/corpus"
)

// Ensure LoggingExtractor implements corpus.Extractor.
var _ corpus.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging of text size.
type LoggingExtractor struct {
	next   corpus.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next corpus.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the word count.
func (e *LoggingExtractor) Extract(sourceKind, rawHTML string) (string, error) {
	begin := time.Now()
	text, err := e.next.Extract(sourceKind, rawHTML)
	e.logger.Debug("extract",
		"source", sourceKind,
		"html_bytes", len(rawHTML),
		"words", corpus.WordCount(text),
		"duration", time.Since(begin),
		"err", err,
	)
	return text, err
}
