package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/utils"
)

// RateLimiter counts requests per caller in fixed windows shared through redis, so every
// replica enforces the same budget. Callers are keyed by user id after RequireUser, else by IP.
type RateLimiter struct {
	redisClient *redis.Client
	limit       int
	window      time.Duration
}

func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RateLimiter{
		redisClient: redisClient,
		limit:       limit,
		window:      window,
	}
}

// Limit answers 429 with Retry-After once the caller's window budget is spent.
// Counting errors let the request through.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		windowStart := now.Truncate(rl.window)
		key := fmt.Sprintf("billing:ratelimit:%s:%d", rl.subject(c), windowStart.Unix())

		ctx := c.Request.Context()
		var incr *redis.IntCmd
		_, err := rl.redisClient.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, rl.window+time.Second)
			return nil
		})
		if err != nil {
			c.Next()
			return
		}

		count := incr.Val()
		remaining := int64(rl.limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(rl.limit) {
			retryAfter := windowStart.Add(rl.window).Sub(now)
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) subject(c *gin.Context) string {
	if userID, ok := c.Get("user_id"); ok {
		return fmt.Sprintf("user:%v", userID)
	}
	return "ip:" + c.ClientIP()
}
