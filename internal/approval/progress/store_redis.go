package progress

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const progressKeyPrefix = "approval:progress:"

// RedisStore is the production implementation for distributed deployments
// where multiple instances record sign-offs for the same resource. Orders
// live in a Redis set, so double-recording is naturally idempotent.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an externally managed redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func progressRedisKey(resourceType, resourceID string) string {
	return progressKeyPrefix + resourceType + ":" + resourceID
}

func (s *RedisStore) Record(ctx context.Context, resourceType, resourceID string, order int) error {
	key := progressRedisKey(resourceType, resourceID)
	if err := s.client.SAdd(ctx, key, order).Err(); err != nil {
		return fmt.Errorf("record approval progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Completed(ctx context.Context, resourceType, resourceID string) ([]int, error) {
	key := progressRedisKey(resourceType, resourceID)
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("load approval progress: %w", err)
	}
	orders := make([]int, 0, len(members))
	for _, m := range members {
		order, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt approval progress entry %q: %w", m, err)
		}
		orders = append(orders, order)
	}
	sort.Ints(orders)
	return orders, nil
}
