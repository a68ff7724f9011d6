// internal/httpserver/ratelimit.go
//
// Fixed-window rate limiter backed by Redis INCR/EXPIRE.
// Keys are rl:<window_seconds>:<client ip>. The limiter fails open: with no
// Redis configured, an unreachable Redis, or a Redis error, requests pass.

package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

var (
	rlRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rps_ratelimit_requests_total",
		Help: "Requests admitted by the rate limiter.",
	}, []string{"path"})
	rlBlocked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rps_ratelimit_blocked_total",
		Help: "Requests rejected by the rate limiter.",
	}, []string{"path"})
)

func init() {
	prometheus.MustRegister(rlRequests, rlBlocked)
}

// RateLimiter admits at most limit requests per client per window.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter connects to Redis at addr. An empty addr or a failed ping
// yields a limiter that admits everything.
func NewRateLimiter(addr, password string, db, limit int, window time.Duration) *RateLimiter {
	l := &RateLimiter{limit: limit, window: window}
	if addr == "" {
		return l
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis unavailable, rate limiting disabled")
		_ = rdb.Close()
		return l
	}
	l.rdb = rdb
	return l
}

// Enabled reports whether the limiter is backed by Redis.
func (l *RateLimiter) Enabled() bool { return l != nil && l.rdb != nil }

// Close releases the Redis client.
func (l *RateLimiter) Close() error {
	if !l.Enabled() {
		return nil
	}
	return l.rdb.Close()
}

// Middleware enforces the limit.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		key := "rl:" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + clientIP(r)
		ctx := r.Context()

		val, err := l.rdb.Incr(ctx, key).Result()
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("rate limit incr")
			w.Header().Set("X-RateLimit-Error", "redis-error")
			next.ServeHTTP(w, r)
			return
		}
		if val == 1 {
			if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Msg("rate limit expire")
			}
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(l.limit)-val), 10))
		if val > int64(l.limit) {
			rlBlocked.WithLabelValues(r.URL.Path).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			http.Error(w, `{"error":"rate_limited"}`, http.StatusTooManyRequests)
			return
		}
		rlRequests.WithLabelValues(r.URL.Path).Inc()
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr (chi's RealIP has already run).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
