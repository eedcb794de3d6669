package middleware

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// WriteCounter counts write attempts attributed to a client IP since a
// cutoff. Both message repositories satisfy this.
type WriteCounter interface {
	CountRecentByIP(ctx context.Context, ip string, since time.Time) (int64, error)
}

// RateLimiterConfig tunes the fixed-window write limiter.
type RateLimiterConfig struct {
	// Window is the length of the counting window.
	Window time.Duration
	// Limit is the number of writes admitted per window per client.
	Limit int64
	// Now returns the current time; overridable for tests.
	Now func() time.Time
}

// DefaultRateLimiterConfig admits 10 writes per client per hour.
var DefaultRateLimiterConfig = RateLimiterConfig{
	Window: time.Hour,
	Limit:  10,
}

// RateLimiter limits writes per client identity using DefaultRateLimiterConfig.
func RateLimiter(counter WriteCounter) echo.MiddlewareFunc {
	return RateLimiterWithConfig(counter, DefaultRateLimiterConfig)
}

// RateLimiterWithConfig returns middleware that counts recent accepted
// writes for the requesting client and rejects with 429 once the window
// limit is reached. If the count query itself fails the request is admitted
// (fail-open) so a store hiccup never blocks legitimate writes.
func RateLimiterWithConfig(counter WriteCounter, config RateLimiterConfig) echo.MiddlewareFunc {
	if config.Window <= 0 {
		config.Window = DefaultRateLimiterConfig.Window
	}
	if config.Limit <= 0 {
		config.Limit = DefaultRateLimiterConfig.Limit
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}

			now := config.Now()
			count, err := counter.CountRecentByIP(c.Request().Context(), ip, now.Add(-config.Window))
			if err != nil {
				log.Printf("Rate limit check failed for %s, admitting: %v", ip, err)
				return next(c)
			}

			if count >= config.Limit {
				retryAfter := int(config.Window / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":      "Too many announcements from this client. Try again later.",
					"retryAfter": retryAfter,
				})
			}
			return next(c)
		}
	}
}
