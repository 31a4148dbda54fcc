package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tripplanner/internal/adapters/valkey"
)

// buildVersion is the main module version stamped by the Go toolchain.
func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// HealthHandler reports liveness. It never touches dependencies.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := buildVersion()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": version,
		})
	}
}

// readiness collects dependency checks. Only required checks can fail it.
type readiness struct {
	checks map[string]string
	ok     bool
}

func (r *readiness) check(name string, required, configured bool, fn func() error) {
	if !configured {
		r.checks[name] = "not configured"
		if required {
			r.ok = false
		}
		return
	}
	if err := fn(); err != nil {
		r.checks[name] = "error: " + err.Error()
		r.ok = false
		return
	}
	r.checks[name] = "ok"
}

// ReadyHandler checks the database (required) and the optional broker and cache.
// Optional dependencies only fail readiness when configured but down.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		r := &readiness{checks: map[string]string{}, ok: true}
		r.check("database", true, deps.DB != nil, func() error { return deps.DB.Ping(ctx) })
		r.check("nats", false, deps.NATS != nil, func() error {
			if !deps.NATS.IsConnected() {
				return errors.New("disconnected")
			}
			return nil
		})
		r.check("cache", false, deps.Cache != nil, func() error {
			if err := deps.Cache.Ping(ctx); err != nil && !errors.Is(err, valkey.ErrMiss) {
				return err
			}
			return nil
		})
		if deps.Workflows != nil {
			r.checks["async_generation"] = "enabled"
		} else {
			r.checks["async_generation"] = "disabled"
		}

		if !r.ok {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": r.checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": r.checks})
	}
}
