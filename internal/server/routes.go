package server

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"badui/internal/config"
	"badui/internal/db"
	"badui/internal/handlers"
	"badui/internal/metrics"
	"badui/internal/middleware"
)

// Deps are the optional collaborators of the HTTP routes.
type Deps struct {
	Notifier handlers.RequestNotifier // may be nil
	Metrics  *metrics.Metrics         // nil disables /metrics
	About    config.AboutConfig
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, deps Deps) error {
	authMiddleware := middleware.NewAuthMiddleware(database)

	accountHandler := handlers.NewAccountHandler(database, s.Cfg)
	articleHandler := handlers.NewArticleHandler(database, s.Cfg)
	commentHandler := handlers.NewCommentHandler(database, s.Cfg)
	requestHandler := handlers.NewModeratorRequestHandler(database, s.Cfg, deps.Notifier)
	profileHandler := handlers.NewProfileHandler(database, s.Cfg)
	aboutHandler := handlers.NewAboutHandler(s.Cfg, deps.About)

	// Single sign-on is optional; password accounts always work.
	if s.Cfg.IsOIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
	} else {
		slog.Info("OIDC single sign-on disabled; set OIDC_ISSUER and OIDC_CLIENT_ID to enable")
	}

	if deps.Metrics != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	// Accounts
	s.App.Get("/login", authMiddleware.OptionalAuth, accountHandler.LoginForm)
	s.App.Post("/login", authMiddleware.OptionalAuth, accountHandler.Login)
	s.App.Get("/logout", authMiddleware.RequireAuth, accountHandler.Logout)
	s.App.Get("/register", authMiddleware.OptionalAuth, accountHandler.RegisterForm)
	s.App.Post("/register", authMiddleware.OptionalAuth, accountHandler.Register)
	s.App.Get("/profile", authMiddleware.RequireAuth, profileHandler.Show)

	// Articles
	s.App.Get("/", authMiddleware.OptionalAuth, articleHandler.Index)
	s.App.Get("/index", authMiddleware.OptionalAuth, articleHandler.Index)
	s.App.Get("/article", authMiddleware.RequireAuth, articleHandler.New)
	s.App.Post("/article", authMiddleware.RequireAuth, articleHandler.Create)
	// Anyone but the author gets a 404 here, signed in or not.
	s.App.Get("/article/:id<int>", authMiddleware.OptionalAuth, articleHandler.Edit)
	s.App.Post("/article/:id<int>", authMiddleware.OptionalAuth, articleHandler.Update)
	s.App.Get("/delete_article/:id<int>", authMiddleware.OptionalAuth, articleHandler.ConfirmDelete)
	s.App.Post("/delete_article/:id<int>", authMiddleware.OptionalAuth, articleHandler.Delete)

	// Comments
	s.App.Get("/comments/:id<int>", authMiddleware.OptionalAuth, commentHandler.List)
	s.App.Post("/comments/:id<int>", authMiddleware.OptionalAuth, commentHandler.Create)

	// Moderator requests
	s.App.Get("/moderatorRequest", authMiddleware.RequireAuth, requestHandler.Form)
	s.App.Post("/moderatorRequest", authMiddleware.RequireAuth, requestHandler.Submit)

	s.App.Get("/about", authMiddleware.OptionalAuth, aboutHandler.Show)

	// Article view route - must be last (catch-all for ids)
	s.App.Get("/:id<int>", authMiddleware.OptionalAuth, articleHandler.Show)

	return nil
}
