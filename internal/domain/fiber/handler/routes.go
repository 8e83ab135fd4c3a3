package handler

import (
	"errors"
	"net/http"

	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type Routes struct {
	Candidate   *CandidateHandler
	Interviewer *InterviewerHandler
	Admin       *AdminHandler
	Health      *HealthHandler

	RateLimit fiber.Handler
	AdminAuth fiber.Handler
	// nil leaves /metrics unmounted
	Metrics http.Handler
}

// Register mounts everything under /api behind the rate limiter. The suggestions endpoint is
// also served without the /api prefix.
func (r Routes) Register(app *fiber.App) {
	r.Health.RegisterRoutes(app)
	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics))
	}

	limit := r.RateLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	api := app.Group("/api", limit)
	r.Candidate.RegisterRoutes(api)
	r.Interviewer.RegisterRoutes(api)
	r.Admin.RegisterRoutes(api, r.AdminAuth)

	app.Get("/interviewer/step3/suggestions/:session_id", limit, r.Interviewer.Suggestions)
}

// ErrorHandler renders errors that escape a handler (routing misses, body limits, panics
// caught by recover) in the standard envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	var appErr *util.AppError
	if errors.As(err, &appErr) {
		return util.HandleError(c, appErr)
	}

	message := err.Error()
	if code == fiber.StatusInternalServerError || message == "" {
		message = "Internal Server Error"
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    code,
		Message: message,
	}, err)
}
