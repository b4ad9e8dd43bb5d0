package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"badui/internal/db"
	"badui/internal/models"
)

// SessionUserKey is the session key holding the signed-in user's id.
const SessionUserKey = "user_id"

// localsUserKey is the fiber.Locals key for the loaded *models.User.
const localsUserKey = "user"

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	db *db.DB
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(database *db.DB) *AuthMiddleware {
	return &AuthMiddleware{db: database}
}

// RequireAuth ensures the user is authenticated, redirecting to /login if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user, err := m.loadUser(c)
	if err != nil {
		return err
	}
	if user == nil {
		return c.Redirect().To("/login")
	}

	c.Locals(localsUserKey, user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	user, err := m.loadUser(c)
	if err != nil {
		return err
	}
	if user != nil {
		c.Locals(localsUserKey, user)
	}
	return c.Next()
}

// loadUser resolves the session's user. A session pointing at a user that no
// longer exists is destroyed and treated as anonymous.
func (m *AuthMiddleware) loadUser(c fiber.Ctx) (*models.User, error) {
	sess := session.FromContext(c)
	if sess == nil {
		return nil, nil
	}

	userID, ok := sess.Get(SessionUserKey).(int64)
	if !ok {
		return nil, nil
	}

	user, err := m.db.GetUserByID(c.Context(), userID)
	if errors.Is(err, db.ErrUserNotFound) {
		if err := sess.Destroy(); err != nil {
			slog.Warn("failed to destroy stale session", "error", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// CurrentUser returns the user loaded by RequireAuth or OptionalAuth, or nil.
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUserKey).(*models.User)
	return user
}
