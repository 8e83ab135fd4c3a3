package middleware

import (
	"context"
	"log"
	"time"

	"github.com/fadilmartias/hireprep/internal/metrics"
	"github.com/fadilmartias/hireprep/internal/ratelimit"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/gofiber/fiber/v2"
)

const ClientIDLocalKey = "client_id"

type RateLimiterConfig struct {
	Limiter *ratelimit.Limiter
	Stats   ratelimit.StatsStore
	Metrics *metrics.Metrics
	Proxy   ratelimit.ProxyPolicy
}

func RateLimiter(cfg RateLimiterConfig) fiber.Handler {
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.NewLimiter(ratelimit.DefaultLimit)
	}
	return func(c *fiber.Ctx) error {
		id := ratelimit.ClientIdentity(c.IP(), c.Get(fiber.HeaderXForwardedFor), c.Get("X-Real-IP"), cfg.Proxy)
		c.Locals(ClientIDLocalKey, id)

		dec := cfg.Limiter.Check(id)
		cfg.Metrics.ObserveRateLimit(dec.Allowed)
		if cfg.Stats != nil {
			ev := ratelimit.StatsEvent{
				Key:     id,
				Allowed: dec.Allowed,
				Method:  c.Method(),
				Path:    c.Path(),
				At:      time.Now(),
			}
			ctx, cancel := context.WithTimeout(c.UserContext(), 250*time.Millisecond)
			if err := cfg.Stats.Record(ctx, ev); err != nil {
				log.Printf("rate limit stats: %v", err)
			}
			cancel()
		}

		if !dec.Allowed {
			return util.HandleError(c, util.ErrRateLimited)
		}
		return c.Next()
	}
}
