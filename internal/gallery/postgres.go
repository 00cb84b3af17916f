package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS gallery_images (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	size       BIGINT NOT NULL,
	media_type TEXT NOT NULL,
	source_uri TEXT NOT NULL,
	added_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const selectColumns = `id, name, size, media_type, source_uri, added_at`

// PostgresStore keeps records in a gallery_images table.
type PostgresStore struct {
	pool *pgxpool.Pool

	// addMu serializes id generation with the insert so seq and id agree.
	addMu sync.Mutex
}

// NewPostgresStore wraps pool. Call EnsureSchema once before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create gallery schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, img Image) (Record, error) {
	s.addMu.Lock()
	defer s.addMu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		return Record{}, fmt.Errorf("generate image id: %w", err)
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO gallery_images (id, name, size, media_type, source_uri)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+selectColumns,
		pgtype.UUID{Bytes: id, Valid: true}, img.Name, img.Size, img.MediaType, img.SourceURI,
	)

	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("insert image %s: %w", img.Name, err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM gallery_images ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return recs, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Record, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Record{}, ErrNotFound
	}

	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM gallery_images WHERE id = $1`,
		pgtype.UUID{Bytes: parsed, Valid: true},
	)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get image %s: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE gallery_images`); err != nil {
		return fmt.Errorf("clear gallery: %w", err)
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec     Record
		id      pgtype.UUID
		addedAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &rec.Name, &rec.Size, &rec.MediaType, &rec.SourceURI, &addedAt); err != nil {
		return Record{}, err
	}
	rec.ID = uuid.UUID(id.Bytes).String()
	rec.AddedAt = addedAt.Time
	return rec, nil
}
