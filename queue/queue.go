// Package queue reads classification jobs from a Redis list. Producers push
// JSON jobs with RPUSH; the worker consumes them with a blocking BLPOP so an
// idle worker wakes up as soon as work arrives.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"civic-ml-pipeline/models"
)

// DefaultName is the Redis list classification jobs are pushed to.
const DefaultName = "ml_classification_queue"

// ErrBadPayload means a job was popped but its JSON could not be decoded.
// The job is already consumed and will not be retried.
var ErrBadPayload = errors.New("malformed job payload")

type Queue struct {
	client *redis.Client
	name   string
}

// New connects to Redis and returns a queue bound to the named list.
func New(redisURL, name string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &Queue{
		client: redis.NewClient(opts),
		name:   name,
	}, nil
}

// NewWithClient wraps an existing Redis client, e.g. a test instance.
func NewWithClient(client *redis.Client, name string) *Queue {
	return &Queue{client: client, name: name}
}

// Ping verifies the Redis connection.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Dequeue pops the next job, blocking up to timeout. A nil job with a nil
// error means the queue was empty for the whole window.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*models.ClassificationJob, error) {
	vals, err := q.client.BLPop(ctx, timeout, q.name).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop job: %w", err)
	}

	// BLPOP returns the list name followed by the popped value.
	var job models.ClassificationJob
	if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return &job, nil
}

// Enqueue pushes a job onto the queue.
func (q *Queue) Enqueue(ctx context.Context, job models.ClassificationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.name, payload).Err(); err != nil {
		return fmt.Errorf("failed to push job: %w", err)
	}
	return nil
}

// Len reports the number of jobs currently waiting.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
