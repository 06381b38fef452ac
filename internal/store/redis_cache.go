package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/logging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

const cachePrefix = "shortlink:"

// RedisCacheRepository wraps a Repository with a Redis write-through cache.
// Redis failures degrade to the underlying store and are only logged.
type RedisCacheRepository struct {
	store  Repository
	client redis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
// Entries live for ttl, never past the shortlink's own expiry.
func NewRedisCacheRepository(store Repository, client redis.UniversalClient, ttl time.Duration) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Exists answers from the cache when the code is cached, otherwise from the store.
func (r *RedisCacheRepository) Exists(ctx context.Context, code shortener.Code) (bool, error) {
	n, err := r.client.Exists(ctx, cacheKey(code)).Result()
	if err == nil && n > 0 {
		return true, nil
	}

	return r.store.Exists(ctx, code)
}

// Insert stores a shortlink in the underlying store and then caches it.
func (r *RedisCacheRepository) Insert(ctx context.Context, link *shortener.Shortlink) error {
	if err := r.store.Insert(ctx, link); err != nil {
		return err
	}

	r.cache(ctx, link)

	return nil
}

// GetByCode retrieves a shortlink, checking the cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Shortlink, error) {
	link, err := r.getFromCache(ctx, code)
	if err == nil {
		return link, nil
	}

	if !errors.Is(err, shortener.ErrNotFound) {
		logging.FromContext(ctx).Warn("shortlink cache read failed", zap.Error(err))
	}

	link, err = r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, link)

	return link, nil
}

// PurgeExpired purges the underlying store and evicts the codes from the cache.
func (r *RedisCacheRepository) PurgeExpired(ctx context.Context, codes []shortener.Code, now time.Time) (int64, error) {
	purged, err := r.store.PurgeExpired(ctx, codes, now)
	if err != nil {
		return 0, err
	}

	if len(codes) > 0 {
		keys := make([]string, len(codes))
		for i, code := range codes {
			keys[i] = cacheKey(code)
		}

		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			logging.FromContext(ctx).Warn("shortlink cache eviction failed", zap.Error(err))
		}
	}

	return purged, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Shortlink, error) {
	result, err := r.client.HGetAll(ctx, cacheKey(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	link := &shortener.Shortlink{
		Code:      shortener.Code(result["code"]),
		TargetURL: result["url"],
	}

	link.ID, _ = strconv.ParseInt(result["id"], 10, 64)
	link.CreatedAt = parseNanos(result["created_at"])
	link.ExpiresAt = parseNanos(result["expire_at"])

	return link, nil
}

func (r *RedisCacheRepository) cache(ctx context.Context, link *shortener.Shortlink) {
	ttl := link.ExpiresAt.Sub(r.now())
	if r.ttl > 0 && r.ttl < ttl {
		ttl = r.ttl
	}

	if ttl <= 0 {
		return
	}

	key := cacheKey(link.Code)
	pipe := r.client.Pipeline()

	pipe.HSet(ctx, key, map[string]interface{}{
		"id":         link.ID,
		"code":       string(link.Code),
		"url":        link.TargetURL,
		"created_at": link.CreatedAt.UnixNano(),
		"expire_at":  link.ExpiresAt.UnixNano(),
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		logging.FromContext(ctx).Warn("shortlink cache write failed",
			zap.String("code", string(link.Code)),
			zap.Error(err),
		)
	}
}

func cacheKey(code shortener.Code) string {
	return cachePrefix + string(code)
}

func parseNanos(s string) time.Time {
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}

	return time.Unix(0, nanos)
}
