// Package redis wraps github.com/redis/go-redis/v9 with the helpers the
// service needs: Connect with retries, a Healthcheck probe and Locker, a
// token-checked mutual exclusion lock built on SET NX PX.
//
// Locker.TryLock never blocks. A lock expires after its TTL even if the
// holder crashes, and Release only deletes the key when the caller still
// owns it, so a late release cannot remove a lock taken by someone else.
package redis
