// FilePath: api/middleware/api.middleware.ratelimit.go
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/config"
	"github.com/meteosense/hub/internal/errors"
	"github.com/meteosense/hub/internal/monitoring"
	"github.com/meteosense/hub/internal/ratelimit"
)

// RateLimitMiddleware admits or rejects requests per client IP using a dual
// token bucket (short burst plus a sustained per-minute allowance)
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	limit   int64
	enabled bool
	mon     *monitoring.Service
}

func NewRateLimitMiddleware(cfg config.RateLimitConfig, mon *monitoring.Service) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: ratelimit.New(ratelimit.Config{
			SustainedCapacity: cfg.RequestsPerMinute,
			BurstCapacity:     cfg.BurstCapacity,
		}),
		limit:   cfg.RequestsPerMinute,
		enabled: cfg.Enabled,
		mon:     mon,
	}
}

// Limit wraps a handler with rate limiting
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		key := clientKey(r)
		result := m.limiter.Admit(key)

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(m.limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

		if !result.Allowed {
			m.mon.RecordRateLimited()
			nuts.L.Warnf("[RateLimit] Rejected client(%s), retry after %ds", key, result.RetryAfterSeconds)

			w.Header().Set("X-RateLimit-Retry-After-Seconds", strconv.FormatInt(result.RetryAfterSeconds, 10))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(errors.NewRateLimitError("rate limit exceeded, slow down", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey derives the limiter key for a request. Proxy headers win over the
// socket address: the first X-Forwarded-For entry, then X-Real-IP, then
// RemoteAddr with the port stripped.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			xff = xff[:idx]
		}
		return strings.TrimSpace(xff)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
