package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Cache stores JSON-encoded values under string keys with an expiration.
type Cache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Get decodes the stored value into dest, or returns ErrCacheMiss.
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
}

// Key joins a prefix and parameters with ':'.
func Key(prefix string, params ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}
