package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Collections used by the repositories.
const (
	CollectionStocks     = "stocks"
	CollectionPortfolios = "portfolios"
	CollectionSeries     = "series"
	CollectionActivity   = "activity"
)

// ErrDocumentNotFound is returned by Get when no document exists for the key.
var ErrDocumentNotFound = errors.New("document not found")

// Document is one value addressed by collection and key.
type Document struct {
	Collection string
	Key        string
	Value      any
}

// DocumentStore is a key-based store of msgpack-encoded documents.
type DocumentStore interface {
	Get(ctx context.Context, collection, key string, dst any) error
	Put(ctx context.Context, collection, key string, value any) error
	// PutMany writes every document or none of them
	PutMany(ctx context.Context, docs ...Document) error
	Delete(ctx context.Context, collection string, keys ...string) error
	Keys(ctx context.Context, collection string) ([]string, error)
}

// SQLiteStore implements DocumentStore on the documents table.
type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore creates a document store. The database must have been migrated.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get loads and decodes the document at (collection, key) into dst.
func (s *SQLiteStore) Get(ctx context.Context, collection, key string, dst any) error {
	var data []byte
	err := s.db.Conn().QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND key = ?",
		collection, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s/%s: %w", collection, key, ErrDocumentNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s/%s: %w", collection, key, err)
	}
	return Decode(data, dst)
}

// Put encodes and upserts a single document.
func (s *SQLiteStore) Put(ctx context.Context, collection, key string, value any) error {
	return s.PutMany(ctx, Document{Collection: collection, Key: key, Value: value})
}

// PutMany encodes every document first and then upserts them in one transaction.
func (s *SQLiteStore) PutMany(ctx context.Context, docs ...Document) error {
	encoded := make([][]byte, len(docs))
	for i, doc := range docs {
		data, err := Encode(doc.Value)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", doc.Collection, doc.Key, err)
		}
		encoded[i] = data
	}

	now := time.Now().Unix()
	return WithTransaction(ctx, s.db.Conn(), func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO documents (collection, key, data, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(collection, key) DO UPDATE SET
				data = excluded.data,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for i, doc := range docs {
			if _, err := stmt.ExecContext(ctx, doc.Collection, doc.Key, encoded[i], now); err != nil {
				return fmt.Errorf("failed to store %s/%s: %w", doc.Collection, doc.Key, err)
			}
		}
		return nil
	})
}

// Delete removes the given keys. Missing keys are ignored.
func (s *SQLiteStore) Delete(ctx context.Context, collection string, keys ...string) error {
	return WithTransaction(ctx, s.db.Conn(), func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM documents WHERE collection = ? AND key = ?",
				collection, key,
			); err != nil {
				return fmt.Errorf("failed to delete %s/%s: %w", collection, key, err)
			}
		}
		return nil
	})
}

// Keys lists every key of a collection in ascending order.
func (s *SQLiteStore) Keys(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		"SELECT key FROM documents WHERE collection = ? ORDER BY key",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s keys: %w", collection, err)
	}
	return keys, nil
}

var _ DocumentStore = (*SQLiteStore)(nil)
