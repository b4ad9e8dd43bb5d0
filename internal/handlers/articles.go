package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"badui/internal/config"
	"badui/internal/db"
	"badui/internal/middleware"
	"badui/internal/models"
	"badui/internal/validation"
)

// ArticleHandler handles article CRUD and display.
type ArticleHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(database *db.DB, cfg *config.Config) *ArticleHandler {
	return &ArticleHandler{db: database, cfg: cfg}
}

// articleForm carries the editable article fields between the form and the store.
type articleForm struct {
	Thumbnail   string
	HTMLCode    string
	ScriptCode  string
	CSSCode     string
	IsAnonymous bool
}

func parseArticleForm(c fiber.Ctx) articleForm {
	return articleForm{
		Thumbnail:   c.FormValue("thumbnail"),
		HTMLCode:    c.FormValue("html_code"),
		ScriptCode:  c.FormValue("script_code"),
		CSSCode:     c.FormValue("css_code"),
		IsAnonymous: c.FormValue("is_anonymous") != "",
	}
}

func formFromArticle(a *models.Article) articleForm {
	return articleForm{
		Thumbnail:   a.Thumbnail,
		HTMLCode:    a.HTMLCode,
		ScriptCode:  a.ScriptCode,
		CSSCode:     a.CSSCode,
		IsAnonymous: a.IsAnonymous,
	}
}

// validate fills the default thumbnail and reports the first problem.
func (f *articleForm) validate(defaultThumbnail string) (bool, string) {
	f.Thumbnail = validation.NormalizeThumbnail(f.Thumbnail, defaultThumbnail)
	if ok, msg := validation.ValidateURL(f.Thumbnail); !ok {
		return false, "Thumbnail: " + msg
	}
	return validation.Required("HTML", f.HTMLCode)
}

func (f articleForm) apply(a *models.Article) {
	a.Thumbnail = f.Thumbnail
	a.HTMLCode = f.HTMLCode
	a.ScriptCode = f.ScriptCode
	a.CSSCode = f.CSSCode
	a.IsAnonymous = f.IsAnonymous
}

// Index renders every article, newest first.
func (h *ArticleHandler) Index(c fiber.Ctx) error {
	articles, err := h.db.ListArticles(c.Context())
	if err != nil {
		return err
	}

	return render(c, h.cfg, "index", fiber.Map{
		"Articles": articles,
	})
}

// New renders the create article form.
func (h *ArticleHandler) New(c fiber.Ctx) error {
	return h.renderForm(c, "New article", "/article", articleForm{Thumbnail: h.cfg.DefaultThumbnailURL}, "")
}

// Create stores a new article authored by the current user.
func (h *ArticleHandler) Create(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	form := parseArticleForm(c)
	if ok, msg := form.validate(h.cfg.DefaultThumbnailURL); !ok {
		return h.renderForm(c, "New article", "/article", form, msg)
	}

	article := &models.Article{AuthorID: user.ID}
	form.apply(article)
	if err := h.db.CreateArticle(c.Context(), article); err != nil {
		return err
	}

	slog.Info("article created", "article_id", article.ID, "author_id", user.ID)
	return c.Redirect().To("/")
}

// ownArticle loads article id if the current user wrote it. Anonymous visitors
// and other users get a 404.
func (h *ArticleHandler) ownArticle(c fiber.Ctx, id int64) (*models.Article, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, notFound("Article")
	}
	article, err := h.db.GetArticleForAuthor(c.Context(), id, user.ID)
	if errors.Is(err, db.ErrArticleNotFound) {
		return nil, notFound("Article")
	}
	return article, err
}

// Edit renders the edit form for one of the current user's articles.
func (h *ArticleHandler) Edit(c fiber.Ctx) error {
	id := fiber.Params[int64](c, "id")
	article, err := h.ownArticle(c, id)
	if err != nil {
		return err
	}

	return h.renderForm(c, "Edit article", editPath(id), formFromArticle(article), "")
}

// Update saves changes to one of the current user's articles.
func (h *ArticleHandler) Update(c fiber.Ctx) error {
	id := fiber.Params[int64](c, "id")
	if _, err := h.ownArticle(c, id); err != nil {
		return err
	}
	user := middleware.CurrentUser(c)

	form := parseArticleForm(c)
	if ok, msg := form.validate(h.cfg.DefaultThumbnailURL); !ok {
		return h.renderForm(c, "Edit article", editPath(id), form, msg)
	}

	article := &models.Article{ID: id, AuthorID: user.ID}
	form.apply(article)
	if err := h.db.UpdateArticle(c.Context(), article); err != nil {
		if errors.Is(err, db.ErrArticleNotFound) {
			return notFound("Article")
		}
		return err
	}

	return c.Redirect().To("/")
}

// ConfirmDelete asks the author to confirm deleting an article.
func (h *ArticleHandler) ConfirmDelete(c fiber.Ctx) error {
	article, err := h.ownArticle(c, fiber.Params[int64](c, "id"))
	if err != nil {
		return err
	}

	return render(c, h.cfg, "delete_article", fiber.Map{
		"Title":   "Delete article",
		"Article": article,
	})
}

// Delete removes one of the current user's articles together with its comments.
func (h *ArticleHandler) Delete(c fiber.Ctx) error {
	id := fiber.Params[int64](c, "id")
	user := middleware.CurrentUser(c)
	if user == nil {
		return notFound("Article")
	}

	if err := h.db.DeleteArticle(c.Context(), id, user.ID); err != nil {
		if errors.Is(err, db.ErrArticleNotFound) {
			return notFound("Article")
		}
		return err
	}

	slog.Info("article deleted", "article_id", id, "author_id", user.ID)
	return c.Redirect().To("/")
}

// Show renders an article's snippet on a bare page and counts the view.
func (h *ArticleHandler) Show(c fiber.Ctx) error {
	id := fiber.Params[int64](c, "id")
	ctx := c.Context()

	var article *models.Article
	err := h.db.UnitOfWork(ctx, func(s *db.Session) error {
		views, err := s.IncrementArticleViews(ctx, id)
		if err != nil {
			return err
		}
		article, err = s.GetArticle(ctx, id)
		if err != nil {
			return err
		}
		article.Views = views
		return nil
	})
	if errors.Is(err, db.ErrArticleNotFound) {
		return notFound("Article")
	}
	if err != nil {
		return err
	}

	// Snippets are rendered verbatim: showing the author's markup is the point.
	return c.Render("show_article", MergeBranding(fiber.Map{
		"Article": article,
		"HTML":    template.HTML(article.HTMLCode),
		"CSS":     template.CSS(article.CSSCode),
		"Script":  template.JS(article.ScriptCode),
	}, h.cfg), "")
}

func (h *ArticleHandler) renderForm(c fiber.Ctx, title, action string, form articleForm, message string) error {
	return render(c, h.cfg, "article", fiber.Map{
		"Title":   title,
		"Action":  action,
		"Form":    form,
		"Message": message,
	})
}

func editPath(id int64) string {
	return "/article/" + strconv.FormatInt(id, 10)
}
