// Package reliability persists the dispatch audit trail in Redis.
package reliability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payment_reminder/internal/domain/notification"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisLog keeps the newest entries in a Redis list. RPUSH and LTRIM run in one
// MULTI/EXEC so the list never exceeds the limit between commands.
type RedisLog struct {
	client redis.Cmdable
	key    string
	limit  int64
	logger *logrus.Entry
}

func NewRedisLog(client redis.Cmdable, logger *logrus.Entry) *RedisLog {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisLog{
		client: client,
		key:    notification.ReliabilityLogKey,
		limit:  notification.ReliabilityLogLimit,
		logger: logger,
	}
}

// NewClient opens a client and pings it. A failed ping is logged, not returned, so the
// service can start before Redis does.
func NewClient(addr, password string, db int, logger *logrus.Entry) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil && logger != nil {
		logger.WithError(err).WithField("addr", addr).Warn("Failed to connect to Redis")
	}
	return rdb
}

func (l *RedisLog) Append(ctx context.Context, e notification.ReliabilityEntry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, l.key, data)
		pipe.LTrim(ctx, l.key, -l.limit, -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append reliability entry: %w", err)
	}
	return nil
}

// Entries returns the log oldest first. Unreadable items are skipped.
func (l *RedisLog) Entries(ctx context.Context) ([]notification.ReliabilityEntry, error) {
	raw, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reliability log: %w", err)
	}
	out := make([]notification.ReliabilityEntry, 0, len(raw))
	for _, item := range raw {
		e, err := decodeEntry(item)
		if err != nil {
			l.logger.WithError(err).Warn("Skipping malformed reliability log entry")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func encodeEntry(e notification.ReliabilityEntry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reliability entry: %w", err)
	}
	return data, nil
}

func decodeEntry(raw string) (notification.ReliabilityEntry, error) {
	var e notification.ReliabilityEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return e, fmt.Errorf("failed to decode reliability entry: %w", err)
	}
	return e, nil
}
