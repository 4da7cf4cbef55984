package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/af-corp/atlas-planner/internal/httputil"
	"github.com/af-corp/atlas-planner/internal/telemetry"
)

const (
	headerRateLimitRequests  = "X-RateLimit-Limit-Requests"
	headerRateLimitRemaining = "X-RateLimit-Remaining-Requests"
	headerRateLimitReset     = "X-RateLimit-Reset-Requests"
	headerRetryAfter         = "Retry-After"
)

// clientKey buckets requests by session when the caller sent one, falling
// back to the client address so anonymous first requests still share a
// window.
func clientKey(r *http.Request) string {
	if sid := r.Header.Get("X-Session-ID"); sid != "" {
		return "sess:" + sid
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

// Middleware returns chi middleware enforcing the per-session request quota
// before any planning work runs.
func Middleware(limiter Limiter, quota int64, window time.Duration, metrics *telemetry.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get("X-Request-ID")

			result, err := limiter.Check(r.Context(), clientKey(r), quota, window)
			if err != nil {
				httputil.WriteDomainError(w, reqID, err)
				return
			}

			w.Header().Set(headerRateLimitRequests, strconv.FormatInt(quota, 10))
			w.Header().Set(headerRateLimitRemaining, strconv.FormatInt(result.Remaining, 10))
			w.Header().Set(headerRateLimitReset, result.ResetAt.Format(time.RFC3339))

			if !result.Allowed {
				logger.Warn("rate limit exceeded",
					"stage", "ratelimit",
					"request_id", reqID,
					"key", clientKey(r),
					"quota", quota,
				)
				metrics.RateLimitDenials.Inc()
				w.Header().Set(headerRetryAfter, strconv.Itoa(int(result.RetryAfter.Seconds())))
				httputil.WriteRateLimitError(w, reqID, "Too many planning requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
