package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"badui/internal/config"
	"badui/internal/db"
	"badui/internal/models"
	"badui/internal/validation"
)

// AuthHandler handles optional OIDC single sign-on. Accounts are matched by
// email; unknown emails get a new account without a password.
type AuthHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	db           *db.DB
	cfg          *config.Config
}

// NewAuthHandler creates a new auth handler with OIDC configuration.
func NewAuthHandler(ctx context.Context, cfg *config.Config, database *db.DB) (*AuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	return &AuthHandler{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
		db:           database,
		cfg:          cfg,
	}, nil
}

// Login initiates the OIDC login flow.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	state := uuid.NewString()
	sess.Set("oauth_state", state)

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback handles the OIDC callback after authentication.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	savedState, _ := sess.Get("oauth_state").(string)
	if savedState == "" || savedState != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	sess.Delete("oauth_state")

	oauth2Token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing id_token")
	}

	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id_token")
	}

	claims := make(map[string]any)
	if err := idToken.Claims(&claims); err != nil {
		return err
	}

	// Some providers only put email in the userinfo response.
	userInfo, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(oauth2Token))
	if err == nil {
		var extra map[string]any
		if err := userInfo.Claims(&extra); err == nil {
			for k, v := range extra {
				claims[k] = v
			}
		}
	} else {
		slog.Warn("failed to fetch userinfo", "error", err)
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	user, err := h.findOrCreateUser(c.Context(), email, name)
	if err != nil {
		return err
	}

	if err := startSession(c, user, false); err != nil {
		return err
	}

	slog.Info("user signed in with SSO", "user_id", user.ID)
	return c.Redirect().To("/")
}

// findOrCreateUser returns the account for email, creating one on first sign in.
func (h *AuthHandler) findOrCreateUser(ctx context.Context, email, name string) (*models.User, error) {
	email = validation.NormalizeEmail(email)
	if ok, _ := validation.ValidateEmail(email); !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "identity provider did not return an email")
	}

	user, err := h.db.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	user = &models.User{Name: name, Email: &email}
	if err := h.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			// Lost a race with a concurrent first sign in.
			return h.db.GetUserByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}
