package corpus

import (
	"context"
	"time"
)

// Document is the persisted record of one item. URL is the unique key.
type Document struct {
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	Text         string    `json:"cleanedText"`
	ContentHash  string    `json:"contentHash"`
	LastModified string    `json:"lastModified,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`

	// RawHTML is only retained when the crawl is configured to keep markup.
	RawHTML string `json:"rawHtml,omitempty"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.Source == "" {
		return Errorf(EINVALID, "document source required")
	}
	if d.ContentHash == "" {
		return Errorf(EINVALID, "document content hash required")
	}
	return nil
}

// Metadata returns the freshness metadata of the document.
func (d *Document) Metadata() *Metadata {
	return &Metadata{
		LastModified: d.LastModified,
		ETag:         d.ETag,
		ContentHash:  d.ContentHash,
	}
}

// Metadata is the subset of a stored document consulted before re-fetching it.
type Metadata struct {
	LastModified string `json:"lastModified,omitempty"`
	ETag         string `json:"etag,omitempty"`
	ContentHash  string `json:"contentHash"`
}

// DocumentStore is the narrow persistence contract used by the crawl driver.
type DocumentStore interface {
	// DocumentExists reports whether a document is stored under url.
	DocumentExists(ctx context.Context, url string) (bool, error)

	// FindMetadata returns the freshness metadata stored for url.
	// Returns ENOTFOUND if no document is stored under url.
	FindMetadata(ctx context.Context, url string) (*Metadata, error)

	// InsertDocument stores a new document. If a document with the same URL
	// was created concurrently, the store updates it instead of failing.
	InsertDocument(ctx context.Context, doc *Document) error

	// UpdateDocument replaces the document stored under url.
	// Returns ENOTFOUND if no document is stored under url.
	UpdateDocument(ctx context.Context, url string, doc *Document) error
}

// DocumentService extends DocumentStore with the reads used for reporting.
type DocumentService interface {
	DocumentStore

	// FindDocument returns the full document stored under url.
	// Returns ENOTFOUND if no document is stored under url.
	FindDocument(ctx context.Context, url string) (*Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// Close releases the underlying connection.
	Close() error
}
