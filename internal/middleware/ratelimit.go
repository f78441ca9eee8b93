package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/flight-cargo-summary/internal/config"
)

// tokenBucketScript refills and takes one token atomically.  It returns
// {allowed, tokens_left, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// bucketState is the decoded reply of tokenBucketScript.
type bucketState struct {
	allowed   bool
	remaining int64
	retryIn   time.Duration
}

func parseBucketReply(v interface{}) (bucketState, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return bucketState{}, false
	}
	return bucketState{
		allowed:   asInt64(arr[0]) == 1,
		remaining: asInt64(arr[1]),
		retryIn:   time.Duration(asInt64(arr[2])) * time.Millisecond,
	}, true
}

// retryAfterSeconds rounds up so a client never retries too early.
func (b bucketState) retryAfterSeconds() int {
	secs := int(math.Ceil(b.retryIn.Seconds()))
	return max(secs, 0)
}

// take spends one token from the bucket at key.
func take(ctx context.Context, rdb redis.Scripter, cfg config.RateLimitConfig, key string) (bucketState, error) {
	reply, err := tokenBucketScript.Run(ctx, rdb, []string{key},
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Result()
	if err != nil {
		return bucketState{}, err
	}
	st, ok := parseBucketReply(reply)
	if !ok {
		return bucketState{}, fmt.Errorf("unexpected script reply %#v", reply)
	}
	return st, nil
}

// NewTokenBucket limits requests per key with a Redis token bucket.  Redis
// errors fail open: the request is served and, in debug mode, the error is
// logged.  Rate limit headers describe the current request only and are
// never stored by the response cache.
func NewTokenBucket(cfg config.RateLimitConfig, rdb redis.Scripter) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			st, err := take(c.Request().Context(), rdb, cfg, key)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: %s: %v", key, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(st.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if st.allowed {
				return next(c)
			}

			secs := st.retryAfterSeconds()
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				c.Logger().Infof("ratelimit: blocked %s, retry in %s", key, st.retryIn)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// rateKeyParts maps a key strategy to the request attributes it uses.
var rateKeyParts = map[string][]string{
	"ip":            {"ip"},
	"user":          {"user"},
	"route":         {"route"},
	"ip_user":       {"ip", "user"},
	"ip_route":      {"ip", "route"},
	"ip_user_route": {"ip", "user", "route"},
}

// buildRateKey joins the prefix with the attributes named by the key
// strategy; unknown strategies fall back to ip_route.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	values := map[string]string{
		"ip":    ip,
		"user":  currentSubject(c),
		"route": c.Request().Method + " " + c.Path(),
	}

	attrs, ok := rateKeyParts[strings.ToLower(cfg.KeyStrategy)]
	if !ok {
		attrs = rateKeyParts["ip_route"]
	}
	parts := []string{cfg.Prefix}
	for _, a := range attrs {
		parts = append(parts, a, values[a])
	}
	return strings.Join(parts, ":")
}

// currentSubject returns the token subject stored by JWTAuth, or "anon".
func currentSubject(c echo.Context) string {
	switch v := c.Get(ContextSubject).(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return "anon"
}
