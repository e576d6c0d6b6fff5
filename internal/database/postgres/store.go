// Package postgres implements the document store on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aristath/portfolio-analytics/internal/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	key TEXT NOT NULL,
	data BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, key)
)`

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.MaxConnLifetime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return p, nil
}

// Store implements database.DocumentStore on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates the documents table if needed and returns the store.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Get loads and decodes one document.
func (s *Store) Get(ctx context.Context, collection, key string, dst any) error {
	var data []byte
	err := s.pool.QueryRow(ctx,
		"SELECT data FROM documents WHERE collection = $1 AND key = $2",
		collection, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s/%s: %w", collection, key, database.ErrDocumentNotFound)
	}
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", collection, key, err)
	}
	return database.Decode(data, dst)
}

// Put upserts one document.
func (s *Store) Put(ctx context.Context, collection, key string, value any) error {
	return s.PutMany(ctx, database.Document{Collection: collection, Key: key, Value: value})
}

// PutMany upserts every document in one transaction.
func (s *Store) PutMany(ctx context.Context, docs ...database.Document) error {
	batch := &pgx.Batch{}
	for _, doc := range docs {
		data, err := database.Encode(doc.Value)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", doc.Collection, doc.Key, err)
		}
		batch.Queue(`
			INSERT INTO documents (collection, key, data, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (collection, key) DO UPDATE SET
				data = EXCLUDED.data,
				updated_at = EXCLUDED.updated_at`,
			doc.Collection, doc.Key, data,
		)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("store documents: %w", err)
		}
		return nil
	})
}

// Delete removes the given keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, collection string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM documents WHERE collection = $1 AND key = ANY($2)",
		collection, keys,
	); err != nil {
		return fmt.Errorf("delete from %s: %w", collection, err)
	}
	return nil
}

// Keys lists the keys of a collection in ascending order.
func (s *Store) Keys(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT key FROM documents WHERE collection = $1 ORDER BY key",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan %s keys: %w", collection, err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// HealthCheck runs a trivial query.
func (s *Store) HealthCheck(ctx context.Context) error {
	var now time.Time
	if err := s.pool.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		return fmt.Errorf("test query: %w", err)
	}
	return nil
}

var _ database.DocumentStore = (*Store)(nil)
