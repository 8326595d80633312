// Package queue holds the backlog of complaints awaiting classification.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned when nothing arrived before the wait elapsed.
var ErrEmpty = errors.New("queue empty")

// ClassificationQueue is a FIFO of complaint ids.
type ClassificationQueue interface {
	Enqueue(ctx context.Context, complaintID string) error
	// Dequeue blocks up to wait for an id and returns ErrEmpty on timeout.
	Dequeue(ctx context.Context, wait time.Duration) (string, error)
	Len(ctx context.Context) (int64, error)
}

// RedisQueue stores ids in a Redis list: LPUSH to add, BRPOP to take.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue on key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, complaintID string) error {
	return q.client.LPush(ctx, q.key, complaintID).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (string, error) {
	if wait <= 0 {
		wait = time.Second
	}
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrEmpty
	}
	if err != nil {
		return "", err
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return "", ErrEmpty
	}
	return res[1], nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// MemoryQueue is the in-process stand-in used without Redis.
type MemoryQueue struct {
	mu     sync.Mutex
	items  []string
	signal chan struct{}
}

// NewMemoryQueue returns an empty queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{signal: make(chan struct{}, 1)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, complaintID string) error {
	q.mu.Lock()
	q.items = append(q.items, complaintID)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (string, error) {
	if wait <= 0 {
		wait = time.Second
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		if id, ok := q.pop(); ok {
			return id, nil
		}
		select {
		case <-q.signal:
		case <-timer.C:
			return "", ErrEmpty
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

func (q *MemoryQueue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	id := q.items[0]
	q.items = q.items[1:]
	if len(q.items) > 0 {
		select {
		case q.signal <- struct{}{}:
		default:
		}
	}
	return id, true
}
