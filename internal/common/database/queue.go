// internal/common/database/queue.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chat-intake/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	ErrQueuePublishFailed = errors.New("QUEUE_PUBLISH_FAILED")
	ErrQueueEmpty         = errors.New("QUEUE_EMPTY")
)

// NotificationQueue is a Redis list of NotificationEvent messages. Producers
// LPUSH, the relay BRPOPs, so delivery is FIFO.
type NotificationQueue struct {
	client redis.Cmdable
	key    string
}

func NewNotificationQueue(client redis.Cmdable, key string) *NotificationQueue {
	return &NotificationQueue{client: client, key: key}
}

func (q *NotificationQueue) Key() string {
	return q.key
}

func (q *NotificationQueue) Publish(ctx context.Context, ev models.NotificationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrQueuePublishFailed, err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrQueuePublishFailed, err)
	}
	return nil
}

// Next blocks up to timeout for the next event. ErrQueueEmpty is returned
// when nothing arrived in time.
func (q *NotificationQueue) Next(ctx context.Context, timeout time.Duration) (*models.NotificationEvent, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("brpop %s: %w", q.key, err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("brpop %s: unexpected reply length %d", q.key, len(res))
	}

	var ev models.NotificationEvent
	if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
		return nil, fmt.Errorf("decode notification event: %w", err)
	}
	return &ev, nil
}
