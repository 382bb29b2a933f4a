package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/corpus"
)

const (
	textExt = ".txt"
	metaExt = ".txt.meta.json"
	htmlExt = ".html"

	maxNameLen = 80
)

// Ensure DocumentService implements corpus.DocumentService at compile time.
var _ corpus.DocumentService = (*DocumentService)(nil)

// DocumentService stores each document as a plain text file with a JSON
// metadata sidecar in one directory. The file name is derived from the URL,
// so the URL stays the unique key.
type DocumentService struct {
	dir string
}

// NewDocumentService creates a DocumentService rooted at dir.
func NewDocumentService(dir string) *DocumentService {
	return &DocumentService{dir: dir}
}

// meta is the sidecar content of one document.
type meta struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Source       string `json:"source"`
	FetchTime    int64  `json:"fetch_time"`
	LastModified string `json:"last_modified,omitempty"`
	ETag         string `json:"etag,omitempty"`
	ContentHash  string `json:"content_hash"`
}

// DocumentName returns the base file name used for rawURL: the URL with
// unsafe characters replaced, cut to a fixed length, and suffixed with a
// hash of the full URL so that truncation never collides.
func DocumentName(rawURL string) string {
	rawURL = strings.TrimPrefix(rawURL, "https://")
	rawURL = strings.TrimPrefix(rawURL, "http://")

	var b strings.Builder
	for _, r := range rawURL {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := []rune(b.String())
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return fmt.Sprintf("%s_%016x", string(name), xxhash.Sum64String(rawURL))
}

func (s *DocumentService) path(url, ext string) string {
	return filepath.Join(s.dir, DocumentName(url)+ext)
}

func (s *DocumentService) readMeta(url string) (*meta, error) {
	data, err := os.ReadFile(s.path(url, metaExt))
	if errors.Is(err, os.ErrNotExist) {
		return nil, corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}

	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, corpus.Errorf(corpus.EMALFORMED, "invalid metadata for %s: %v", url, err)
	}
	return &m, nil
}

// DocumentExists reports whether a document is stored under url.
func (s *DocumentService) DocumentExists(_ context.Context, url string) (bool, error) {
	_, err := os.Stat(s.path(url, metaExt))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindMetadata returns the freshness metadata stored for url.
func (s *DocumentService) FindMetadata(_ context.Context, url string) (*corpus.Metadata, error) {
	m, err := s.readMeta(url)
	if err != nil {
		return nil, err
	}
	return &corpus.Metadata{
		LastModified: m.LastModified,
		ETag:         m.ETag,
		ContentHash:  m.ContentHash,
	}, nil
}

// InsertDocument writes the text file, the optional markup file and the
// metadata sidecar. The sidecar is written last; its presence marks the
// document as stored.
func (s *DocumentService) InsertDocument(_ context.Context, doc *corpus.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	return s.write(doc)
}

// UpdateDocument replaces the files stored under url.
func (s *DocumentService) UpdateDocument(ctx context.Context, url string, doc *corpus.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	ok, err := s.DocumentExists(ctx, url)
	if err != nil {
		return err
	}
	if !ok {
		return corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}

	d := *doc
	d.URL = url
	return s.write(&d)
}

func (s *DocumentService) write(doc *corpus.Document) error {
	if err := writeFileAtomic(s.path(doc.URL, textExt), []byte(doc.Text)); err != nil {
		return err
	}

	htmlPath := s.path(doc.URL, htmlExt)
	if doc.RawHTML != "" {
		if err := writeFileAtomic(htmlPath, []byte(doc.RawHTML)); err != nil {
			return err
		}
	} else if err := os.Remove(htmlPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	data, err := json.MarshalIndent(&meta{
		URL:          doc.URL,
		Title:        doc.Title,
		Source:       doc.Source,
		FetchTime:    doc.FetchedAt.Unix(),
		LastModified: doc.LastModified,
		ETag:         doc.ETag,
		ContentHash:  doc.ContentHash,
	}, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path(doc.URL, metaExt), data)
}

// FindDocument returns the full document stored under url.
func (s *DocumentService) FindDocument(_ context.Context, url string) (*corpus.Document, error) {
	m, err := s.readMeta(url)
	if err != nil {
		return nil, err
	}

	text, err := os.ReadFile(s.path(url, textExt))
	if errors.Is(err, os.ErrNotExist) {
		return nil, corpus.Errorf(corpus.ENOTFOUND, "document text not found")
	}
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path(url, htmlExt))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return &corpus.Document{
		URL:          m.URL,
		Title:        m.Title,
		Source:       m.Source,
		Text:         string(text),
		ContentHash:  m.ContentHash,
		LastModified: m.LastModified,
		ETag:         m.ETag,
		FetchedAt:    time.Unix(m.FetchTime, 0).UTC(),
		RawHTML:      string(raw),
	}, nil
}

// CountDocuments returns the number of metadata sidecars in the directory.
func (s *DocumentService) CountDocuments(_ context.Context) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+metaExt))
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// Close is a no-op; files are closed after every write.
func (s *DocumentService) Close() error {
	return nil
}
