package handler

import (
	"context"
	"time"

	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/gofiber/fiber/v2"
)

type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	appName string
	checks  map[string]HealthCheck
}

func NewHealthHandler(appName string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{appName: appName, checks: checks}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.Root)
	app.Get("/health", h.Health)
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: h.appName + " is running",
		Data:    fiber.Map{"name": h.appName, "time": time.Now().UTC()},
	})
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	results := fiber.Map{}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusServiceUnavailable,
			Message: "unhealthy",
			Details: results,
		})
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "ok",
		Data:    fiber.Map{"status": "ok", "checks": results},
	})
}
