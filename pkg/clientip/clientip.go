// Package clientip resolves the caller's address behind reverse proxies.
package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

// proxyHeaders are consulted in order before falling back to RemoteAddr.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// GetIP returns the first valid address found in proxyHeaders, then RemoteAddr.
func GetIP(r *http.Request) string {
	for _, h := range proxyHeaders {
		candidates := strings.Split(r.Header.Get(h), ",")
		if ip, ok := lo.Find(lo.Map(candidates, func(s string, _ int) string { return parseIP(s) }), func(s string) bool {
			return s != ""
		}); ok {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

type contextKey struct{}

func SetIPToContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

func GetIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// Middleware stores the resolved client IP in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(SetIPToContext(r.Context(), GetIP(r))))
	})
}
