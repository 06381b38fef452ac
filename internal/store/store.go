package store

import (
	"context"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// Repository is a shortener.Repository that can also drop expired shortlinks.
type Repository interface {
	shortener.Repository
	PurgeExpired(ctx context.Context, codes []shortener.Code, now time.Time) (int64, error)
}

// Compile-time checks.
var (
	_ Repository = (*MemoryStore)(nil)
	_ Repository = (*PostgresStore)(nil)
	_ Repository = (*RedisCacheRepository)(nil)
)
