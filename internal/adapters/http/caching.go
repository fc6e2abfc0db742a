package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets default Cache-Control headers by endpoint when the
// handler did not set one. Analyses are never cached by intermediaries.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		if c.Method() != fiber.MethodGet {
			if c.Method() == fiber.MethodPost {
				c.Set("Cache-Control", "no-store")
			}
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/v1/zones/lookup":
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/zones"):
			ttl = "public, max-age=3600" // zones only change on restart

		case strings.HasPrefix(path, "/v1/analyses/"):
			ttl = "public, max-age=86400" // archived analyses are immutable

		case strings.HasPrefix(path, "/v1/analyses"):
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
