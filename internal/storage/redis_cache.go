package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ideascout/internal/model"
)

// Cache keeps hot per-brand state in redis: the recent-ideas sample used for
// duplicate detection and a mirror of the daily persisted count. The SQLite
// store stays authoritative; the cache only saves round trips during a run.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func recentKey(brandID string) string {
	return fmt.Sprintf("ideas:recent:%s", brandID)
}

func dayCountKey(brandID string, day time.Time) string {
	return fmt.Sprintf("ideas:count:%s:%s", brandID, day.UTC().Format("2006-01-02"))
}

// PushRecent prepends an idea to the brand's recent sample, trimming to limit.
func (c *Cache) PushRecent(ctx context.Context, idea model.Idea, limit int) error {
	b, err := json.Marshal(idea)
	if err != nil {
		return err
	}
	key := recentKey(idea.BrandID)
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, int64(limit-1))
	pipe.Expire(ctx, key, 7*24*time.Hour)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns the cached sample, newest first. A missing key returns an
// empty slice so callers fall back to the relational store.
func (c *Cache) Recent(ctx context.Context, brandID string, limit int) ([]model.Idea, error) {
	vals, err := c.rdb.LRange(ctx, recentKey(brandID), 0, int64(limit-1)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]model.Idea, 0, len(vals))
	for _, v := range vals {
		var idea model.Idea
		if err := json.Unmarshal([]byte(v), &idea); err != nil {
			continue
		}
		out = append(out, idea)
	}
	return out, nil
}

// IncrDayCount bumps the brand's persisted-today counter, expiring after two
// days so stale keys clean themselves up.
func (c *Cache) IncrDayCount(ctx context.Context, brandID string, now time.Time) error {
	key := dayCountKey(brandID, now)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 48*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// DayCount reads the brand's persisted-today counter. Missing key means zero.
func (c *Cache) DayCount(ctx context.Context, brandID string, now time.Time) (int, error) {
	n, err := c.rdb.Get(ctx, dayCountKey(brandID, now)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
