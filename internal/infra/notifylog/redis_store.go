// Package notifylog stores short-lived notification outcome records.
package notifylog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"facilitator_activity_tracker/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	entryKeyPrefix = "notifications:log:"
	recentKey      = "notifications:recent"
)

// RedisLogStore keeps each entry under its own key with a fixed TTL and
// mirrors it onto a bounded recent-activity list for the dashboard, newest
// first, oldest evicted.
type RedisLogStore struct {
	client    *redis.Client
	ttl       time.Duration
	recentMax int64
}

func NewRedisLogStore(client *redis.Client, ttl time.Duration, recentMax int) *RedisLogStore {
	return &RedisLogStore{client: client, ttl: ttl, recentMax: int64(recentMax)}
}

func (s *RedisLogStore) Append(ctx context.Context, entry *notification.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal notification log entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, entryKeyPrefix+entry.ID, data, s.ttl)
	pipe.LPush(ctx, recentKey, data)
	pipe.LTrim(ctx, recentKey, 0, s.recentMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification log entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries in reverse-chronological order.
func (s *RedisLogStore) Recent(ctx context.Context, limit int) ([]*notification.LogEntry, error) {
	if limit <= 0 || int64(limit) > s.recentMax {
		limit = int(s.recentMax)
	}

	items, err := s.client.LRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent notifications: %w", err)
	}

	entries := make([]*notification.LogEntry, 0, len(items))
	for _, data := range items {
		var entry notification.LogEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}
