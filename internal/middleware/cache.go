package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/flight-cargo-summary/internal/config"
)

// CacheStore is the subset of the Redis client used by the response cache.
// *redis.Client satisfies it.
type CacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// captureWriter copies the response body (up to limit bytes) while
// forwarding it to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	switch {
	case cw.limit <= 0:
		cw.buf.Write(b)
	case cw.size < cw.limit:
		remain := cw.limit - cw.size
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// truncated reports whether the body outgrew the capture limit.
func (cw *captureWriter) truncated() bool {
	return cw.limit > 0 && cw.size > cw.limit
}

// cacheKeyFrom hashes the request attributes selected by the key strategy
// under cfg.Prefix.  The concrete path is always included because route
// patterns such as /:flightNumber do not carry parameter values, and the
// query is included by default because the date lives there.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	parts := []string{"route", c.Path(), "path", r.URL.Path}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
	case "method_route_query":
		parts = append([]string{"method", r.Method}, append(parts, "q", r.URL.RawQuery)...)
	default: // "route_query"
		parts = append(parts, "q", r.URL.RawQuery)
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// replayedHeaders are the only response headers kept with a cached body.
// Anything else, such as rate limit figures, belongs to the request that
// produced the entry and must not reach other clients.
var replayedHeaders = []string{
	echo.HeaderContentType,
	echo.HeaderContentEncoding,
	"Content-Language",
	"Cache-Control",
	"ETag",
	echo.HeaderLastModified,
	echo.HeaderVary,
}

func cacheableHeaders(src http.Header) http.Header {
	out := make(http.Header, len(replayedHeaders))
	for _, k := range replayedHeaders {
		if vals := src.Values(k); len(vals) > 0 {
			out[http.CanonicalHeaderKey(k)] = append([]string(nil), vals...)
		}
	}
	return out
}

// replay writes a cached entry.  Headers are set, not added, so values
// already on the response are replaced rather than duplicated.
func replay(c echo.Context, status int, hdr http.Header, body []byte) {
	h := c.Response().Header()
	for k, vals := range cacheableHeaders(hdr) {
		h[k] = vals
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(status)
	if len(body) > 0 {
		_, _ = c.Response().Write(body)
	}
}

// NewRedisCache caches successful responses (status, content headers and
// body) in Redis.  It passes requests straight through when caching is
// disabled or store is nil.  Responses carry X-Cache: HIT or MISS.
func NewRedisCache(cfg config.CacheConfig, store CacheStore) echo.MiddlewareFunc {
	if !cfg.Enabled || store == nil {
		return passthrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKeyFrom(cfg, c)

			if bs, err := store.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					replay(c, status, hdr, body)
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// only complete 200 bodies are stored
			if cw.status != http.StatusOK || cw.truncated() {
				return nil
			}
			payload, err := encodePayload(cw.status, cacheableHeaders(c.Response().Header()), cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := store.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				c.Logger().Warnf("cache: store %s: %v", key, err)
			}
			return nil
		}
	}
}
