package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
)

type dueQueue struct {
	client    *redis.Client
	queueName string
}

// NewDueQueue creates the redis list the scheduler pushes due enrollment IDs
// onto and the worker pool pops from.
func NewDueQueue(client *redis.Client) ports.DueQueue {
	return &dueQueue{
		client:    client,
		queueName: "automation:queue:due",
	}
}

func (q *dueQueue) Push(ctx context.Context, enrollmentID string) error {
	return q.client.RPush(ctx, q.queueName, enrollmentID).Err()
}

// Pop blocks until an enrollment ID is available.
func (q *dueQueue) Pop(ctx context.Context) (string, error) {
	result, err := q.client.BLPop(ctx, 0*time.Second, q.queueName).Result()
	if err != nil {
		return "", err
	}
	// BLPop returns [queueName, element].
	return result[1], nil
}
