package ratelimiter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/subreminder/pkg/clientip"
)

// KeyFunc extracts a rate limit key from the request.
type KeyFunc func(r *http.Request) string

// ByClientIP keys requests by the resolved client address.
func ByClientIP(r *http.Request) string {
	if ip := clientip.GetIPFromContext(r.Context()); ip != "" {
		return "ip:" + ip
	}
	return "ip:" + clientip.GetIP(r)
}

// LimitedHandler writes the response for a rejected or failed check.
// err is nil when the request was over the limit.
type LimitedHandler func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration, err error)

func defaultLimitedHandler(w http.ResponseWriter, _ *http.Request, _ time.Duration, err error) {
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

// Middleware enforces limiter per key. A nil onLimit writes plain-text errors.
func Middleware(limiter RateLimiter, keyFunc KeyFunc, onLimit LimitedHandler) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = defaultLimitedHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Allow(r.Context(), keyFunc(r))
			if err != nil {
				onLimit(w, r, 0, err)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				retryAfter := result.RetryAfter(time.Now())
				if secs := int(retryAfter.Seconds()); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				onLimit(w, r, retryAfter, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
