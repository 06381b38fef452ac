package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// RedisExpiryIndex keeps codes in a sorted set scored by their expiry time.
type RedisExpiryIndex struct {
	client redis.UniversalClient
	key    string
}

// NewRedisExpiryIndex creates an expiry index stored under key.
func NewRedisExpiryIndex(client redis.UniversalClient, key string) *RedisExpiryIndex {
	return &RedisExpiryIndex{client: client, key: key}
}

// Schedule records that code expires at the given time.
func (r *RedisExpiryIndex) Schedule(ctx context.Context, code shortener.Code, at time.Time) error {
	// Round up so a code is never due before its expiry has passed.
	secs := at.Unix()
	if at.Nanosecond() > 0 {
		secs++
	}

	err := r.client.ZAdd(ctx, r.key, redis.Z{
		Score:  float64(secs),
		Member: string(code),
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule expiry of %s: %w", code, err)
	}

	return nil
}

// Due returns up to limit codes expiring at or before now, earliest first.
func (r *RedisExpiryIndex) Due(ctx context.Context, now time.Time, limit int64) ([]shortener.Code, error) {
	members, err := r.client.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list due expiries: %w", err)
	}

	codes := make([]shortener.Code, len(members))
	for i, m := range members {
		codes[i] = shortener.Code(m)
	}

	return codes, nil
}

// Remove drops codes from the index.
func (r *RedisExpiryIndex) Remove(ctx context.Context, codes ...shortener.Code) error {
	if len(codes) == 0 {
		return nil
	}

	members := make([]interface{}, len(codes))
	for i, code := range codes {
		members[i] = string(code)
	}

	return r.client.ZRem(ctx, r.key, members...).Err()
}
