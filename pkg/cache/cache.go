package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service defines cache operations. Implementations treat expired entries as
// absent; callers cannot distinguish "missing" from "expired".
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Key builds a cache key from a prefix and parameters.
func Key(prefix string, params ...interface{}) string {
	key := prefix
	for _, p := range params {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}
