package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
)

// instrument records request count, latency and in-flight gauge per route.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncHTTPRequestsInFlight()
		defer s.metrics.DecHTTPRequestsInFlight()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		s.metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(status), time.Since(start))
	})
}

// rateLimit throttles callers by client ip.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := clientIP(r)
		if !s.limiter.Allow(key) {
			w.Header().Set("Retry-After", "1")
			writeError(w, r, http.StatusTooManyRequests, gerr.ErrRateLimited)
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(s.limiter.Remaining(key)))
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
