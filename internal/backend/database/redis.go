package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "qrcollector:submissions"

// RedisDatabase keeps submissions as JSON documents in a single Redis list.
// RPUSH preserves insertion order.
type RedisDatabase struct {
	client *redis.Client
	key    string
}

func NewRedisDatabase(address, password, key string) *RedisDatabase {
	if key == "" {
		key = defaultRedisKey
	}
	client := redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &RedisDatabase{
		client: client,
		key:    key,
	}
}

func (r *RedisDatabase) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisDatabase) Append(ctx context.Context, submission *Submission) error {
	data, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("failed to encode submission %s: %w", submission.ID, err)
	}
	return r.client.RPush(ctx, r.key, data).Err()
}

func (r *RedisDatabase) All(ctx context.Context) ([]*Submission, error) {
	values, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	submissions := make([]*Submission, 0, len(values))
	for i, value := range values {
		var submission Submission
		if err := json.Unmarshal([]byte(value), &submission); err != nil {
			return nil, fmt.Errorf("failed to decode submission at index %d: %w", i, err)
		}
		submissions = append(submissions, &submission)
	}
	return submissions, nil
}

// GetByID scans the list; the store is small and append-only, there is no secondary index.
func (r *RedisDatabase) GetByID(ctx context.Context, id string) (*Submission, error) {
	submissions, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, submission := range submissions {
		if submission.ID == id {
			return submission, nil
		}
	}
	return nil, ErrNotFound
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}
