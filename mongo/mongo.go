// Package mongo provides a MongoDB-based implementation of corpus.DocumentService.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultConnectTimeout bounds connecting, pinging and index creation.
const DefaultConnectTimeout = 10 * time.Second

// DB represents a MongoDB connection scoped to one document collection.
type DB struct {
	uri        string
	database   string
	collection string

	client    *mongo.Client
	documents *mongo.Collection
}

// NewDB creates a new DB instance. Call Open before use.
func NewDB(uri, database, collection string) *DB {
	return &DB{uri: uri, database: database, collection: collection}
}

// Open connects to the server, verifies the connection and ensures the
// unique index on url exists.
func (db *DB) Open(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(db.uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db.client = client
	db.documents = client.Database(db.database).Collection(db.collection)

	if err := db.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Close disconnects from the server.
func (db *DB) Close() error {
	if db.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultConnectTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}

// createIndexes makes url the unique key of the collection. Creating an
// index that already exists is a no-op on the server.
func (db *DB) createIndexes(ctx context.Context) error {
	_, err := db.documents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
