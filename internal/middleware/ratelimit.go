package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idleLimiterTTL bounds how long a quiet client's bucket is remembered.
const idleLimiterTTL = 10 * time.Minute

// RateLimit allows limit requests per window for each client IP as a token
// bucket. A non-positive limit disables the middleware.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 || per <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiters := newLimiterSet(rate.Every(per/time.Duration(limit)), limit)
	retryAfter := strconv.Itoa(int((per / time.Duration(limit)).Seconds()) + 1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.get(clientIPForRateLimit(r)).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retryAfter)
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterSet struct {
	mu    sync.Mutex
	every rate.Limit
	burst int
	items *cache.Cache
}

func newLimiterSet(every rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		every: every,
		burst: burst,
		items: cache.New(idleLimiterTTL, idleLimiterTTL),
	}
}

func (s *limiterSet) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items.Get(ip); ok {
		lim := v.(*rate.Limiter)
		s.items.SetDefault(ip, lim)
		return lim
	}
	lim := rate.NewLimiter(s.every, s.burst)
	s.items.SetDefault(ip, lim)
	return lim
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
