package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"badui/internal/config"
	"badui/internal/db"
	"badui/internal/middleware"
	"badui/internal/models"
	"badui/internal/validation"
)

// CommentHandler handles the per-article comment thread.
type CommentHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(database *db.DB, cfg *config.Config) *CommentHandler {
	return &CommentHandler{db: database, cfg: cfg}
}

// List renders an article's comments and the comment form.
func (h *CommentHandler) List(c fiber.Ctx) error {
	return h.renderThread(c, fiber.Params[int64](c, "id"), "", "")
}

// Create posts a comment. Signed-in users are credited, everyone else
// comments anonymously.
func (h *CommentHandler) Create(c fiber.Ctx) error {
	articleID := fiber.Params[int64](c, "id")
	raw := c.FormValue("text")

	text, ok, msg := validation.SanitizeComment(raw)
	if !ok {
		return h.renderThread(c, articleID, raw, msg)
	}

	comment := &models.Comment{ArticleID: articleID, Text: text}
	if user := middleware.CurrentUser(c); user != nil {
		comment.UserID = &user.ID
	}

	if err := h.db.CreateComment(c.Context(), comment); err != nil {
		if errors.Is(err, db.ErrArticleNotFound) {
			return notFound("Article")
		}
		return err
	}

	return c.Redirect().To("/comments/" + strconv.FormatInt(articleID, 10))
}

func (h *CommentHandler) renderThread(c fiber.Ctx, articleID int64, draft, message string) error {
	article, err := h.db.GetArticle(c.Context(), articleID)
	if errors.Is(err, db.ErrArticleNotFound) {
		return notFound("Article")
	}
	if err != nil {
		return err
	}

	comments, err := h.db.ListComments(c.Context(), articleID)
	if err != nil {
		return err
	}

	return render(c, h.cfg, "comments", fiber.Map{
		"Title":    "Comments",
		"Article":  article,
		"Comments": comments,
		"Draft":    draft,
		"Message":  message,
	})
}
