// Package dedup provides a Redis-backed cache of already-seen listing URLs.
//
// The cache only short-circuits database existence checks; Postgres (the
// unique index on want_id, url) remains the authority for the dedup
// invariant. A cold or unavailable cache degrades to extra DB work, never
// to duplicate matches.
package dedup

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neticnz/matcher/internal/logger"
)

// Tracker caches (want, listing URL) pairs that already have a match row.
type Tracker struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewTracker creates a tracker. A nil client disables the cache entirely.
func NewTracker(client *redis.Client, ttl time.Duration, log logger.Logger) *Tracker {
	return &Tracker{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// key hashes the URL so key length stays bounded regardless of listing URL
// length.
func (t *Tracker) key(wantID, url string) string {
	return fmt.Sprintf("seen:match:%s:%x", wantID, sha256.Sum256([]byte(url)))
}

// Seen reports whether the pair is known to exist. Redis errors are logged
// and reported as "not seen" so a cache outage never suppresses a match.
func (t *Tracker) Seen(ctx context.Context, wantID, url string) bool {
	if t.client == nil || url == "" {
		return false
	}

	key := t.key(wantID, url)
	exists, err := t.client.Exists(ctx, key).Result()
	if err != nil {
		t.logger.Warn("Redis error checking seen listing",
			logger.String("want_id", wantID),
			logger.Error(err),
		)
		return false
	}

	return exists == 1
}

// MarkSeen records the pair with the configured TTL.
func (t *Tracker) MarkSeen(ctx context.Context, wantID, url string) error {
	if t.client == nil || url == "" {
		return nil
	}

	key := t.key(wantID, url)
	if err := t.client.Set(ctx, key, "1", t.ttl).Err(); err != nil {
		t.logger.Warn("Redis error marking listing seen",
			logger.String("want_id", wantID),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// FlushAll removes every seen-listing key. Forces the next run to fall
// back to database existence checks for all candidates.
func (t *Tracker) FlushAll(ctx context.Context) error {
	if t.client == nil {
		return nil
	}

	iter := t.client.Scan(ctx, 0, "seen:match:*", 0).Iterator()
	var deleted int
	for iter.Next(ctx) {
		if err := t.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan seen keys: %w", err)
	}

	t.logger.Info("flushed seen-listing cache", logger.Int("keys", deleted))
	return nil
}
