package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"badui/internal/config"
	"badui/internal/db"
	"badui/internal/middleware"
	"badui/internal/models"
)

// ProfileHandler handles user profile pages.
type ProfileHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(database *db.DB, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{db: database, cfg: cfg}
}

// Show renders the user's articles and moderator status.
func (h *ProfileHandler) Show(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	articles, err := h.db.ListArticlesByAuthor(c.Context(), user.ID)
	if err != nil {
		return err
	}

	var request *models.Request
	if user.RequestID != nil {
		request, err = h.db.GetRequest(c.Context(), *user.RequestID)
		if err != nil && !errors.Is(err, db.ErrRequestNotFound) {
			return err
		}
	}

	return render(c, h.cfg, "profile", fiber.Map{
		"Title":    "Profile",
		"Articles": articles,
		"Request":  request,
	})
}

// AboutHandler renders the about page from YAML content.
type AboutHandler struct {
	cfg   *config.Config
	about config.AboutConfig
}

// NewAboutHandler creates a new about handler.
func NewAboutHandler(cfg *config.Config, about config.AboutConfig) *AboutHandler {
	return &AboutHandler{cfg: cfg, about: about}
}

// Show renders the about page.
func (h *AboutHandler) Show(c fiber.Ctx) error {
	return render(c, h.cfg, "about", fiber.Map{
		"Title": h.about.Heading,
		"About": h.about,
	})
}
