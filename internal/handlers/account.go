package handlers

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/crypto/bcrypt"

	"badui/internal/config"
	"badui/internal/db"
	"badui/internal/middleware"
	"badui/internal/models"
	"badui/internal/validation"
)

// rememberMeTimeout is the idle timeout of sessions created with remember_me.
const rememberMeTimeout = 30 * 24 * time.Hour

const (
	msgBadCredentials = "Incorrect email or password"
	msgDuplicateEmail = "A user with this email already exists"
)

// AccountHandler handles password registration, sign in and sign out.
type AccountHandler struct {
	db         *db.DB
	cfg        *config.Config
	bcryptCost int
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(database *db.DB, cfg *config.Config) *AccountHandler {
	return &AccountHandler{db: database, cfg: cfg, bcryptCost: bcrypt.DefaultCost}
}

// LoginForm renders the sign in page.
func (h *AccountHandler) LoginForm(c fiber.Ctx) error {
	return render(c, h.cfg, "login", fiber.Map{"Title": "Sign in"})
}

// Login checks the submitted credentials and starts a session.
func (h *AccountHandler) Login(c fiber.Ctx) error {
	email := validation.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	remember := c.FormValue("remember_me") != ""

	data := fiber.Map{"Title": "Sign in", "Email": email, "RememberMe": remember}

	if ok, msg := validation.Required("Email", email, "Password", password); !ok {
		data["Message"] = msg
		return render(c, h.cfg, "login", data)
	}

	user, err := h.db.GetUserByEmail(c.Context(), email)
	if err != nil && !errors.Is(err, db.ErrUserNotFound) {
		return err
	}
	if user == nil || !user.HasPassword() ||
		bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(password)) != nil {
		data["Message"] = msgBadCredentials
		return render(c, h.cfg, "login", data)
	}

	if err := startSession(c, user, remember); err != nil {
		return err
	}

	slog.Info("user signed in", "user_id", user.ID)
	return c.Redirect().To("/")
}

// Logout clears the user session.
func (h *AccountHandler) Logout(c fiber.Ctx) error {
	if sess := session.FromContext(c); sess != nil {
		if err := sess.Destroy(); err != nil {
			return err
		}
	}
	return c.Redirect().To("/")
}

// RegisterForm renders the registration page.
func (h *AccountHandler) RegisterForm(c fiber.Ctx) error {
	return render(c, h.cfg, "register", fiber.Map{"Title": "Register"})
}

// Register creates a password account and sends the user to sign in.
func (h *AccountHandler) Register(c fiber.Ctx) error {
	email := validation.NormalizeEmail(c.FormValue("email"))
	name := strings.TrimSpace(c.FormValue("name"))
	password := c.FormValue("password")
	again := c.FormValue("password_again")

	data := fiber.Map{"Title": "Register", "Email": email, "Name": name}
	fail := func(msg string) error {
		data["Message"] = msg
		return render(c, h.cfg, "register", data)
	}

	if ok, msg := validation.ValidateEmail(email); !ok {
		return fail(msg)
	}
	if ok, msg := validation.ValidateName(name); !ok {
		return fail(msg)
	}
	if ok, msg := validation.ValidatePassword(password, again); !ok {
		return fail(msg)
	}

	if _, err := h.db.GetUserByEmail(c.Context(), email); err == nil {
		return fail(msgDuplicateEmail)
	} else if !errors.Is(err, db.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return err
	}
	hashed := string(hash)

	user := &models.User{Name: name, Email: &email, HashedPassword: &hashed}
	if err := h.db.CreateUser(c.Context(), user); err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return fail(msgDuplicateEmail)
		}
		return err
	}

	slog.Info("user registered", "user_id", user.ID)
	return c.Redirect().To("/login")
}

// startSession binds user to a fresh session id.
func startSession(c fiber.Ctx, user *models.User, remember bool) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(middleware.SessionUserKey, user.ID)
	if remember {
		sess.Session.SetIdleTimeout(rememberMeTimeout)
	}
	return nil
}
