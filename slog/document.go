package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/corpus"
)

// Ensure LoggingDocumentService implements corpus.DocumentService.
var _ corpus.DocumentService = (*LoggingDocumentService)(nil)

// LoggingDocumentService wraps a DocumentService. Reads are logged at debug
// level and writes at info level.
type LoggingDocumentService struct {
	next   corpus.DocumentService
	logger *slog.Logger
}

// NewLoggingDocumentService creates a new LoggingDocumentService.
func NewLoggingDocumentService(next corpus.DocumentService, logger *slog.Logger) *LoggingDocumentService {
	return &LoggingDocumentService{next: next, logger: logger}
}

func (s *LoggingDocumentService) DocumentExists(ctx context.Context, url string) (bool, error) {
	begin := time.Now()
	ok, err := s.next.DocumentExists(ctx, url)
	s.logger.DebugContext(ctx, "document exists",
		"url", url,
		"exists", ok,
		"duration", time.Since(begin),
		"err", err,
	)
	return ok, err
}

func (s *LoggingDocumentService) FindMetadata(ctx context.Context, url string) (*corpus.Metadata, error) {
	begin := time.Now()
	meta, err := s.next.FindMetadata(ctx, url)
	s.logger.DebugContext(ctx, "find metadata",
		"url", url,
		"duration", time.Since(begin),
		"err", err,
	)
	return meta, err
}

func (s *LoggingDocumentService) InsertDocument(ctx context.Context, doc *corpus.Document) error {
	begin := time.Now()
	err := s.next.InsertDocument(ctx, doc)
	s.write(ctx, "insert document", doc, begin, err)
	return err
}

func (s *LoggingDocumentService) UpdateDocument(ctx context.Context, url string, doc *corpus.Document) error {
	begin := time.Now()
	err := s.next.UpdateDocument(ctx, url, doc)
	s.write(ctx, "update document", doc, begin, err)
	return err
}

func (s *LoggingDocumentService) write(ctx context.Context, msg string, doc *corpus.Document, begin time.Time, err error) {
	if err != nil {
		s.logger.ErrorContext(ctx, msg,
			"url", doc.URL,
			"duration", time.Since(begin),
			"err", err,
		)
		return
	}
	s.logger.InfoContext(ctx, msg,
		"url", doc.URL,
		"hash", doc.ContentHash,
		"duration", time.Since(begin),
	)
}

// FindDocument delegates to the wrapped service.
func (s *LoggingDocumentService) FindDocument(ctx context.Context, url string) (*corpus.Document, error) {
	return s.next.FindDocument(ctx, url)
}

// CountDocuments delegates to the wrapped service.
func (s *LoggingDocumentService) CountDocuments(ctx context.Context) (int, error) {
	return s.next.CountDocuments(ctx)
}

// Close delegates to the wrapped service.
func (s *LoggingDocumentService) Close() error {
	return s.next.Close()
}
