// Package ratelimit builds per-client request limiters for route groups.
package ratelimit

import (
	"time"

	"careerboard/internal/config"
	"careerboard/internal/delivery/http/middleware"
	"careerboard/internal/infrastructure/cache"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
)

// Group is one independently counted set of routes.
type Group struct {
	Name    string
	Max     int
	Window  time.Duration
	Message string
}

type Groups struct {
	API  Group
	Auth Group
	AI   Group
}

func GroupsFromConfig(cfg config.RateLimitConfig) Groups {
	return Groups{
		API:  Group{Name: "api", Max: cfg.APIMax, Window: cfg.APIWindow, Message: "Too many requests, please try again later"},
		Auth: Group{Name: "auth", Max: cfg.AuthMax, Window: cfg.AuthWindow, Message: "Too many login attempts, please try again later"},
		AI:   Group{Name: "ai", Max: cfg.AIMax, Window: cfg.AIWindow, Message: "AI analysis limit reached, please try again later"},
	}
}

// Storage returns the shared counter store, or nil to let each limiter keep counters in
// process memory.
func Storage(r *cache.Redis) fiber.Storage {
	if r == nil {
		return nil
	}
	return r
}

// New returns a limiter keyed by client IP. A group with Max <= 0 is disabled.
func New(g Group, storage fiber.Storage) fiber.Handler {
	if g.Max <= 0 {
		return func(c fiber.Ctx) error { return c.Next() }
	}
	msg := g.Message
	if msg == "" {
		msg = "Too many requests"
	}

	return limiter.New(limiter.Config{
		Max:        g.Max,
		Expiration: g.Window,
		Storage:    storage,
		KeyGenerator: func(c fiber.Ctx) string {
			return g.Name + ":" + c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return middleware.NewAppError(fiber.StatusTooManyRequests, msg, nil, nil)
		},
	})
}
