package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"badui/internal/config"
	"badui/internal/middleware"
	"badui/internal/models"
)

// RequestNotifier is told about new moderator requests.
type RequestNotifier interface {
	NotifyRequestSubmitted(ctx context.Context, req *models.Request, applicant *models.User)
}

// render adds the current user and branding to data and renders view in the
// main layout.
func render(c fiber.Ctx, cfg *config.Config, view string, data fiber.Map) error {
	data["User"] = middleware.CurrentUser(c)
	return c.Render(view, MergeBranding(data, cfg))
}

// notFound is returned for missing records and for records the current user
// may not touch.
func notFound(what string) error {
	return fiber.NewError(fiber.StatusNotFound, what+" not found")
}
