package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the window counter and sets its TTL on first hit,
// so the check and the increment happen atomically.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

// RateLimiter is a fixed-window limiter keyed by caller (usually client IP).
type RateLimiter struct {
	client *redis.Client
	script *redis.Script
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(c *Cache, name string, limit int, window time.Duration) *RateLimiter {
	if c == nil || limit <= 0 {
		return nil
	}
	return &RateLimiter{
		client: c.client,
		script: redis.NewScript(fixedWindowScript),
		prefix: c.key("ratelimit:" + name),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether the caller is still under the limit for the current window,
// along with the number of requests remaining. A nil limiter always allows.
func (r *RateLimiter) Allow(ctx context.Context, caller string) (bool, int, error) {
	if r == nil {
		return true, 0, nil
	}
	bucket := r.now().Unix() / int64(r.window.Seconds())
	key := fmt.Sprintf("%s:%s:%d", r.prefix, caller, bucket)

	n, err := r.script.Run(ctx, r.client, []string{key}, int(r.window.Seconds())).Int()
	if err != nil {
		return true, 0, err
	}
	remaining := r.limit - n
	if remaining < 0 {
		remaining = 0
	}
	return n <= r.limit, remaining, nil
}

func (r *RateLimiter) Limit() int {
	if r == nil {
		return 0
	}
	return r.limit
}
