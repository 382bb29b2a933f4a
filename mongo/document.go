package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/corpus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time interface verification.
var _ corpus.DocumentService = (*DocumentService)(nil)

// record is the stored shape of a document. fetch_time is Unix seconds.
type record struct {
	URL          string `bson:"url"`
	Title        string `bson:"title"`
	Source       string `bson:"source"`
	CleanedText  string `bson:"cleaned_text"`
	ContentHash  string `bson:"content_hash"`
	LastModified string `bson:"last_modified,omitempty"`
	ETag         string `bson:"etag,omitempty"`
	FetchTime    int64  `bson:"fetch_time"`
	RawHTML      string `bson:"raw_html,omitempty"`
}

func newRecord(doc *corpus.Document) *record {
	return &record{
		URL:          doc.URL,
		Title:        doc.Title,
		Source:       doc.Source,
		CleanedText:  doc.Text,
		ContentHash:  doc.ContentHash,
		LastModified: doc.LastModified,
		ETag:         doc.ETag,
		FetchTime:    doc.FetchedAt.Unix(),
		RawHTML:      doc.RawHTML,
	}
}

func (r *record) document() *corpus.Document {
	return &corpus.Document{
		URL:          r.URL,
		Title:        r.Title,
		Source:       r.Source,
		Text:         r.CleanedText,
		ContentHash:  r.ContentHash,
		LastModified: r.LastModified,
		ETag:         r.ETag,
		FetchedAt:    time.Unix(r.FetchTime, 0).UTC(),
		RawHTML:      r.RawHTML,
	}
}

// update returns a $set of every field plus an $unset of the optional
// fields that are empty, so a replaced document never keeps stale validators.
func (r *record) update() bson.M {
	set := bson.M{
		"url":          r.URL,
		"title":        r.Title,
		"source":       r.Source,
		"cleaned_text": r.CleanedText,
		"content_hash": r.ContentHash,
		"fetch_time":   r.FetchTime,
	}
	unset := bson.M{}
	for field, value := range map[string]string{
		"last_modified": r.LastModified,
		"etag":          r.ETag,
		"raw_html":      r.RawHTML,
	} {
		if value == "" {
			unset[field] = ""
		} else {
			set[field] = value
		}
	}

	upd := bson.M{"$set": set}
	if len(unset) > 0 {
		upd["$unset"] = unset
	}
	return upd
}

// DocumentService implements corpus.DocumentService using MongoDB.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// DocumentExists reports whether a document is stored under url.
func (s *DocumentService) DocumentExists(ctx context.Context, url string) (bool, error) {
	n, err := s.db.documents.CountDocuments(ctx, bson.M{"url": url}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindMetadata returns the freshness metadata stored for url.
func (s *DocumentService) FindMetadata(ctx context.Context, url string) (*corpus.Metadata, error) {
	var r record
	opts := options.FindOne().SetProjection(bson.M{
		"last_modified": 1,
		"etag":          1,
		"content_hash":  1,
		"_id":           0,
	})
	err := s.db.documents.FindOne(ctx, bson.M{"url": url}, opts).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}
	return &corpus.Metadata{
		LastModified: r.LastModified,
		ETag:         r.ETag,
		ContentHash:  r.ContentHash,
	}, nil
}

// InsertDocument stores a new document. If another writer inserted the
// same URL first, the existing document is updated instead.
func (s *DocumentService) InsertDocument(ctx context.Context, doc *corpus.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	_, err := s.db.documents.InsertOne(ctx, newRecord(doc))
	if mongo.IsDuplicateKeyError(err) {
		return s.UpdateDocument(ctx, doc.URL, doc)
	}
	return err
}

// UpdateDocument replaces the document stored under url.
func (s *DocumentService) UpdateDocument(ctx context.Context, url string, doc *corpus.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	res, err := s.db.documents.UpdateOne(ctx, bson.M{"url": url}, newRecord(doc).update())
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}
	return nil
}

// FindDocument returns the full document stored under url.
func (s *DocumentService) FindDocument(ctx context.Context, url string) (*corpus.Document, error) {
	var r record
	err := s.db.documents.FindOne(ctx, bson.M{"url": url}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, corpus.Errorf(corpus.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}
	return r.document(), nil
}

// CountDocuments returns the number of stored documents.
func (s *DocumentService) CountDocuments(ctx context.Context) (int, error) {
	n, err := s.db.documents.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close disconnects from the server.
func (s *DocumentService) Close() error {
	return s.db.Close()
}
