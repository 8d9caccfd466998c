package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"sprintsync/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/rueidis"
)

// Counter counts hits for a key within a fixed window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit applies a fixed-window per-IP limit. It fails open: if the
// counter backend errors, the request goes through.
func RateLimit(limit int, window time.Duration, counter Counter) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := counter.Incr(c.Request.Context(), c.ClientIP(), window)
		if err == nil && n > int64(limit) {
			util.Error(c, http.StatusTooManyRequests, "Rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

type memoryBucket struct {
	count int64
	start time.Time
}

type memoryCounter struct {
	mu        sync.Mutex
	buckets   map[string]*memoryBucket
	lastSweep time.Time
}

// NewMemoryCounter returns an in-process fixed-window counter.
func NewMemoryCounter() Counter {
	return &memoryCounter{buckets: make(map[string]*memoryBucket)}
}

func (m *memoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	// sweep expired buckets at most once per window so the map does not
	// keep one entry per client forever
	if now.Sub(m.lastSweep) > window {
		for k, b := range m.buckets {
			if now.Sub(b.start) > window {
				delete(m.buckets, k)
			}
		}
		m.lastSweep = now
	}

	b, ok := m.buckets[key]
	if !ok || now.Sub(b.start) > window {
		b = &memoryBucket{start: now}
		m.buckets[key] = b
	}
	b.count++
	return b.count, nil
}

type redisCounter struct {
	client rueidis.Client
	prefix string
}

// NewRedisCounter returns a counter backed by redis INCR, for deployments
// with more than one instance behind a load balancer.
func NewRedisCounter(addr string) (Counter, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return &redisCounter{client: client, prefix: "sprintsync:ratelimit:"}, nil
}

func (r *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := r.prefix + key
	n, err := r.client.Do(ctx, r.client.B().Incr().Key(k).Build()).AsInt64()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		secs := int64(window / time.Second)
		if secs < 1 {
			secs = 1
		}
		if err := r.client.Do(ctx, r.client.B().Expire().Key(k).Seconds(secs).Build()).Error(); err != nil {
			return n, err
		}
	}
	return n, nil
}
