package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/hiremind/hiremind-api/internal/util"
)

// RateLimiter allows max requests per expiration window, keyed by the
// authenticated email when one is set and by client IP otherwise.
func RateLimiter(max int, expiration time.Duration) fiber.Handler {
	if max == 0 {
		max = 50
	}
	if expiration == 0 {
		expiration = 1 * time.Minute
	}
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   expiration,
		KeyGenerator: rateLimitKey,
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(expiration.Seconds())))
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:      fiber.StatusTooManyRequests,
				ErrorCode: util.CodeRateLimited,
				Message:   "Too many requests, please slow down",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

func rateLimitKey(c *fiber.Ctx) string {
	if id, ok := IdentityFrom(c); ok && id.Email != "" {
		return "user:" + strings.ToLower(id.Email)
	}
	return "ip:" + c.IP()
}
