package web

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitWindow is the period a client's request allowance refills over.
const RateLimitWindow = 15 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter allows each remote address a burst of limit requests per
// RateLimitWindow, refilled continuously.
type clientLimiter struct {
	limit int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newClientLimiter(limit int) *clientLimiter {
	return &clientLimiter{limit: limit, visitors: make(map[string]*visitor)}
}

func (l *clientLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > RateLimitWindow {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > RateLimitWindow {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		every := RateLimitWindow / time.Duration(l.limit)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), l.limit)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (handler *HttpRouteHandler) rateLimit(next http.Handler) http.Handler {
	if handler.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") && !handler.limiter.allow(clientKey(r), handler.clock.Now()) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
