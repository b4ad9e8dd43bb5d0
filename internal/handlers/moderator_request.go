package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"badui/internal/config"
	"badui/internal/db"
	"badui/internal/middleware"
	"badui/internal/models"
	"badui/internal/validation"
)

// ModeratorRequestHandler lets users apply to become moderators. Requests are
// decided out of band; the reconciler applies accepted ones.
type ModeratorRequestHandler struct {
	db       *db.DB
	cfg      *config.Config
	notifier RequestNotifier
}

// NewModeratorRequestHandler creates a new moderator request handler.
// notifier may be nil.
func NewModeratorRequestHandler(database *db.DB, cfg *config.Config, notifier RequestNotifier) *ModeratorRequestHandler {
	return &ModeratorRequestHandler{db: database, cfg: cfg, notifier: notifier}
}

// Form renders the application form.
func (h *ModeratorRequestHandler) Form(c fiber.Ctx) error {
	return h.renderForm(c, "", "", "")
}

// Submit stores a pending request and links it to the applicant.
func (h *ModeratorRequestHandler) Submit(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	introduction := strings.TrimSpace(c.FormValue("introduction"))
	about := strings.TrimSpace(c.FormValue("about"))

	if user.IsModerator {
		return h.renderForm(c, introduction, about, "You are already a moderator")
	}
	if ok, msg := validation.Required("Introduction", introduction, "About", about); !ok {
		return h.renderForm(c, introduction, about, msg)
	}

	req := &models.Request{
		Introduction: introduction,
		About:        about,
		ApplicantID:  user.ID,
	}
	ctx := c.Context()
	if err := h.db.UnitOfWork(ctx, func(s *db.Session) error {
		return s.CreateRequest(ctx, req)
	}); err != nil {
		return err
	}

	slog.Info("moderator request submitted", "request_id", req.ID, "user_id", user.ID)
	if h.notifier != nil {
		h.notifier.NotifyRequestSubmitted(ctx, req, user)
	}

	return c.Redirect().To("/")
}

func (h *ModeratorRequestHandler) renderForm(c fiber.Ctx, introduction, about, message string) error {
	return render(c, h.cfg, "moderatorRequest", fiber.Map{
		"Title":        "Become a moderator",
		"Introduction": introduction,
		"About":        about,
		"Message":      message,
	})
}
