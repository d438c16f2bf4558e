// Package ratelimiter implements token bucket rate limiting with pluggable
// storage.
//
// MemoryStore keeps buckets in process; RedisStore runs the refill and
// consume step as one Lua script so every API instance shares the same
// budget. Middleware keys requests with a KeyFunc, sets the X-RateLimit-*
// headers and hands rejected requests to a configurable handler.
//
//	bucket, _ := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	r.Use(ratelimiter.Middleware(bucket, ratelimiter.ByClientIP, nil))
package ratelimiter
