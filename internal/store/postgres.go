package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultDocumentName = "classroom"
	dbTimeout           = 5 * time.Second
)

// PostgresBackend keeps the document as a single jsonb row.
type PostgresBackend struct {
	pool *pgxpool.Pool
	name string
}

// NewPostgresBackend creates the documents table if needed and returns a backend
// bound to the default document row.
func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool) (*PostgresBackend, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS classroom_documents (
		   name       TEXT PRIMARY KEY,
		   body       JSONB NOT NULL,
		   updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`,
	); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	return &PostgresBackend{pool: pool, name: defaultDocumentName}, nil
}

func (b *PostgresBackend) Load(ctx context.Context) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var body []byte
	err := b.pool.QueryRow(ctx,
		`SELECT body::text FROM classroom_documents WHERE name = $1`,
		b.name,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return DecodeDocument(body)
}

func (b *PostgresBackend) Save(ctx context.Context, doc *Document) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := b.pool.Exec(ctx,
		`INSERT INTO classroom_documents (name, body, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (name) DO UPDATE
		 SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		b.name,
		string(data),
	); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (b *PostgresBackend) HealthCheck(ctx context.Context) error {
	return b.pool.Ping(ctx)
}
