package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long a generation lock can be held. Generation runs
// synchronously within a single switch request, so minutes is generous; the
// TTL only matters if the holder dies mid-generation.
const lockTTL = 5 * time.Minute

// GenerationLock serializes synthetic-history generation per decoy across
// concurrent switch requests, backed by Redis SET NX.
// Key format: duress:gen:<decoy_id>
type GenerationLock struct {
	client *redis.Client
}

// NewGenerationLock creates a GenerationLock wrapping the given Redis client.
func NewGenerationLock(client *redis.Client) *GenerationLock {
	return &GenerationLock{client: client}
}

// Acquire attempts to take the lock for a decoy. It returns false when
// another caller already holds it.
func (l *GenerationLock) Acquire(ctx context.Context, decoyID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(decoyID), "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("generation lock acquire: %w", err)
	}
	return ok, nil
}

// Release frees the lock.
func (l *GenerationLock) Release(ctx context.Context, decoyID string) error {
	if err := l.client.Del(ctx, l.key(decoyID)).Err(); err != nil {
		return fmt.Errorf("generation lock release: %w", err)
	}
	return nil
}

func (l *GenerationLock) key(decoyID string) string {
	return "duress:gen:" + decoyID
}
