package mock

import (
	"context"

	"github.com/fwojciec/corpus"
)

var _ corpus.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of corpus.DocumentService.
type DocumentService struct {
	DocumentExistsFn func(ctx context.Context, url string) (bool, error)
	FindMetadataFn   func(ctx context.Context, url string) (*corpus.Metadata, error)
	InsertDocumentFn func(ctx context.Context, doc *corpus.Document) error
	UpdateDocumentFn func(ctx context.Context, url string, doc *corpus.Document) error
	FindDocumentFn   func(ctx context.Context, url string) (*corpus.Document, error)
	CountDocumentsFn func(ctx context.Context) (int, error)
	CloseFn          func() error
}

func (s *DocumentService) DocumentExists(ctx context.Context, url string) (bool, error) {
	return s.DocumentExistsFn(ctx, url)
}

func (s *DocumentService) FindMetadata(ctx context.Context, url string) (*corpus.Metadata, error) {
	return s.FindMetadataFn(ctx, url)
}

func (s *DocumentService) InsertDocument(ctx context.Context, doc *corpus.Document) error {
	return s.InsertDocumentFn(ctx, doc)
}

func (s *DocumentService) UpdateDocument(ctx context.Context, url string, doc *corpus.Document) error {
	return s.UpdateDocumentFn(ctx, url, doc)
}

func (s *DocumentService) FindDocument(ctx context.Context, url string) (*corpus.Document, error) {
	return s.FindDocumentFn(ctx, url)
}

func (s *DocumentService) CountDocuments(ctx context.Context) (int, error) {
	return s.CountDocumentsFn(ctx)
}

func (s *DocumentService) Close() error {
	return s.CloseFn()
}
