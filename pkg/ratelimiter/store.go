package ratelimiter

import (
	"context"
	"time"
)

// Store persists bucket state. A negative remaining count means the request is denied.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}
