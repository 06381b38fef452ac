package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

// SQLSTATE unique_violation.
const uniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed shortlink store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shortlink WHERE hash = $1)`,
		string(code),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup shortlink %s: %w", code, err)
	}

	return exists, nil
}

func (p *PostgresStore) Insert(ctx context.Context, link *shortener.Shortlink) error {
	query := `
		INSERT INTO shortlink (hash, url, expire_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := p.pool.QueryRow(ctx, query,
		string(link.Code),
		link.TargetURL,
		link.ExpiresAt,
		link.CreatedAt,
	).Scan(&link.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return shortener.ErrDuplicateCode
		}

		return fmt.Errorf("insert shortlink %s: %w", link.Code, err)
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Shortlink, error) {
	query := `
		SELECT id, hash, url, created_at, expire_at
		FROM shortlink
		WHERE hash = $1
	`

	var link shortener.Shortlink

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&link.ID,
		&link.Code,
		&link.TargetURL,
		&link.CreatedAt,
		&link.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("get shortlink %s: %w", code, err)
	}

	return &link, nil
}

// PurgeExpired deletes the given codes whose expiry is at or before now.
func (p *PostgresStore) PurgeExpired(ctx context.Context, codes []shortener.Code, now time.Time) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	hashes := make([]string, len(codes))
	for i, code := range codes {
		hashes[i] = string(code)
	}

	tag, err := p.pool.Exec(ctx,
		`DELETE FROM shortlink WHERE hash = ANY($1) AND expire_at <= $2`,
		hashes, now,
	)
	if err != nil {
		return 0, fmt.Errorf("purge expired shortlinks: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
