package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/corpus"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ corpus.DocumentService = (*DocumentService)(nil)

// DocumentService implements corpus.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// DocumentExists reports whether a document is stored under url.
func (s *DocumentService) DocumentExists(ctx context.Context, url string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE url = ?`, url).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindMetadata returns the freshness metadata stored for url.
func (s *DocumentService) FindMetadata(ctx context.Context, url string) (*corpus.Metadata, error) {
	var meta corpus.Metadata
	var lastModified, etag sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT last_modified, etag, content_hash
		FROM documents
		WHERE url = ?
	`, url).Scan(&lastModified, &etag, &meta.ContentHash)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}
	meta.LastModified = lastModified.String
	meta.ETag = etag.String
	return &meta, nil
}

// InsertDocument stores a new document. A row that already exists for the
// URL is overwritten instead.
func (s *DocumentService) InsertDocument(ctx context.Context, doc *corpus.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, url, title, source, cleaned_text, content_hash, last_modified, etag, fetch_time, raw_html)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			cleaned_text = excluded.cleaned_text,
			content_hash = excluded.content_hash,
			last_modified = excluded.last_modified,
			etag = excluded.etag,
			fetch_time = excluded.fetch_time,
			raw_html = excluded.raw_html
	`, uuid.New().String(), doc.URL, doc.Title, doc.Source, doc.Text, doc.ContentHash,
		nullString(doc.LastModified), nullString(doc.ETag), doc.FetchedAt.Unix(), doc.RawHTML)

	return err
}

// UpdateDocument replaces the document stored under url.
func (s *DocumentService) UpdateDocument(ctx context.Context, url string, doc *corpus.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET title = ?, source = ?, cleaned_text = ?, content_hash = ?,
			last_modified = ?, etag = ?, fetch_time = ?, raw_html = ?
		WHERE url = ?
	`, doc.Title, doc.Source, doc.Text, doc.ContentHash,
		nullString(doc.LastModified), nullString(doc.ETag), doc.FetchedAt.Unix(), doc.RawHTML, url)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}
	return nil
}

// FindDocument returns the full document stored under url.
func (s *DocumentService) FindDocument(ctx context.Context, url string) (*corpus.Document, error) {
	var doc corpus.Document
	var lastModified, etag sql.NullString
	var fetchTime int64

	err := s.db.QueryRowContext(ctx, `
		SELECT url, title, source, cleaned_text, content_hash, last_modified, etag, fetch_time, raw_html
		FROM documents
		WHERE url = ?
	`, url).Scan(&doc.URL, &doc.Title, &doc.Source, &doc.Text, &doc.ContentHash,
		&lastModified, &etag, &fetchTime, &doc.RawHTML)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}

	doc.LastModified = lastModified.String
	doc.ETag = etag.String
	doc.FetchedAt = time.Unix(fetchTime, 0).UTC()
	return &doc, nil
}

// CountDocuments returns the number of stored documents.
func (s *DocumentService) CountDocuments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the underlying database.
func (s *DocumentService) Close() error {
	return s.db.Close()
}
