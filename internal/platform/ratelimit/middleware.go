package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"axioma/pkg/platform/httputil"
	"axioma/pkg/requestcontext"
)

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware limits requests per client IP. A nil limiter disables it.
func Middleware(limiter *Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			result := limiter.Allow(ip)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				if logger != nil {
					logger.WarnContext(r.Context(), "rate limit exceeded",
						"request_id", requestcontext.RequestID(r.Context()),
						"path", r.URL.Path,
					)
				}
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
					Error:      "rate_limit_exceeded",
					Message:    "Too many requests from this IP address. Please try again later.",
					RetryAfter: result.RetryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
