package reliability

import (
	"context"
	"testing"
	"time"

	"payment_reminder/internal/domain/notification"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryCodec(t *testing.T) {
	e := notification.ReliabilityEntry{
		Timestamp:       time.Date(2025, time.January, 14, 15, 0, 0, 0, time.UTC),
		SubscriptionIDs: []string{"a", "b"},
		Count:           2,
		Status:          notification.StatusMissedRecovery,
		UserAgent:       "payment-reminder/1.0",
	}

	data, err := encodeEntry(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"missed_recovery"`)
	assert.Contains(t, string(data), `"subscriptionIds":["a","b"]`)

	_, err = decodeEntry("{not json")
	assert.Error(t, err)
}

func TestNewRedisLog_UsesSharedKeyAndLimit(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	l := NewRedisLog(client, nil)
	assert.Equal(t, notification.ReliabilityLogKey, l.key)
	assert.EqualValues(t, notification.ReliabilityLogLimit, l.limit)
}

func TestRedisLog_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	l := NewRedisLog(client, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, l.Append(ctx, notification.ReliabilityEntry{Status: notification.StatusSuccess}))
	_, err := l.Entries(ctx)
	assert.Error(t, err)
}
