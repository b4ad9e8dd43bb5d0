package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badui/internal/config"
	"badui/internal/db"
	"badui/internal/metrics"
	"badui/internal/models"
	"badui/internal/testutil"
)

// TestEncryptCookieSessionRoundTrip verifies that the encryptcookie +
// session middleware stack survives clients replaying encrypted session
// cookies across requests.
func TestEncryptCookieSessionRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey("test-secret-that-is-long-enough-for-production"),
	}))
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	app.Post("/session-set", func(c fiber.Ctx) error {
		session.FromContext(c).Set("user_id", int64(7))
		return c.SendString("ok")
	})
	app.Get("/session-get", func(c fiber.Ctx) error {
		id, _ := session.FromContext(c).Get("user_id").(int64)
		return c.SendString(strconv.FormatInt(id, 10))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/session-set", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/session-get", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, "round trip %d", i)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "7", string(body))
		if next := resp.Cookies(); len(next) > 0 {
			cookies = next
		}
	}
}

func TestBuildTLSConfig(t *testing.T) {
	cfg, err := buildTLSConfig(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, cfg.ClientCAs)

	_, err = buildTLSConfig(&config.Config{TLSCAFile: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(garbage, []byte("not a certificate"), 0o600))
	_, err = buildTLSConfig(&config.Config{TLSCAFile: garbage})
	assert.Error(t, err)
}

type recordingNotifier struct {
	mu       sync.Mutex
	requests []*models.Request
}

func (n *recordingNotifier) NotifyRequestSubmitted(_ context.Context, req *models.Request, _ *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, req)
}

type testEnv struct {
	app      *fiber.App
	db       *db.DB
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Env:                 "development",
		BaseURL:             "http://localhost:3000",
		SessionSecret:       "test-secret-that-is-long-enough-for-production",
		DefaultThumbnailURL: config.DefaultThumbnailURL,
		SiteTitle:           "Bad UI collection",
		SiteTagline:         "tagline",
		SiteFooter:          "footer",
	}
	database := testutil.TestDB(t)
	notifier := &recordingNotifier{}

	srv := New(cfg)
	require.NoError(t, srv.RegisterRoutes(context.Background(), database, Deps{
		Notifier: notifier,
		Metrics:  metrics.New(database),
		About:    config.AboutConfig{Heading: "About the collection", Body: "Terrible on purpose."},
	}))
	t.Cleanup(func() { _ = srv.Shutdown() })

	return &testEnv{app: srv.App, db: database, notifier: notifier}
}

// client is a browser stand-in that keeps cookies between requests.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]*http.Cookie
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, app: e.app, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, target string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	resp, err := c.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second, FailOnTimeout: true})
	require.NoError(c.t, err)
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(data)
}

func (c *client) get(target string) (*http.Response, string) {
	return c.do(http.MethodGet, target, nil)
}

func (c *client) post(target string, form url.Values) (*http.Response, string) {
	return c.do(http.MethodPost, target, form)
}

func (c *client) login(email string) {
	c.t.Helper()
	resp, _ := c.post("/login", url.Values{"email": {email}, "password": {testutil.TestPassword}})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode, "login as %s", email)
	require.Equal(c.t, "/", resp.Header.Get("Location"))
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assert.True(t, resp.StatusCode >= 300 && resp.StatusCode < 400, "status %d is not a redirect", resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
}

func path(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	form := url.Values{
		"email":          {"Alice@Example.com"},
		"password":       {"hunter22"},
		"password_again": {"hunter22"},
		"name":           {"Alice"},
	}
	resp, _ := c.post("/register", form)
	assertRedirect(t, resp, "/login")

	user, err := env.db.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.True(t, user.HasPassword())
	assert.NotEqual(t, "hunter22", *user.HashedPassword)

	t.Run("duplicate email", func(t *testing.T) {
		resp, body := c.post("/register", form)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "A user with this email already exists")
	})

	t.Run("password mismatch", func(t *testing.T) {
		resp, body := c.post("/register", url.Values{
			"email":          {"bob@example.com"},
			"password":       {"one"},
			"password_again": {"two"},
			"name":           {"Bob"},
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Passwords do not match")

		_, err := env.db.GetUserByEmail(context.Background(), "bob@example.com")
		assert.ErrorIs(t, err, db.ErrUserNotFound)
	})
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateTestUser(t, env.db, "alice")
	c := env.client(t)

	resp, body := c.post("/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Incorrect email or password")

	resp, _ = c.get("/profile")
	assertRedirect(t, resp, "/login")

	c.login("alice@example.com")

	resp, body = c.get("/profile")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "alice@example.com")

	resp, _ = c.get("/logout")
	assertRedirect(t, resp, "/")

	resp, _ = c.get("/profile")
	assertRedirect(t, resp, "/login")
}

func TestAnonymousVisitors(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateTestUser(t, env.db, "alice")
	article := testutil.CreateTestArticle(t, env.db, alice, "<p>hi</p>")
	c := env.client(t)

	for _, target := range []string{"/article", "/moderatorRequest", "/profile"} {
		resp, _ := c.get(target)
		assertRedirect(t, resp, "/login")
	}

	// Someone else's article looks missing, signed in or not.
	edit := path("/article/", article.ID)
	remove := path("/delete_article/", article.ID)
	for _, tc := range []struct {
		method, target string
	}{
		{http.MethodGet, edit},
		{http.MethodPost, edit},
		{http.MethodGet, remove},
		{http.MethodPost, remove},
	} {
		resp, _ := c.do(tc.method, tc.target, url.Values{"html_code": {"<p>pwned</p>"}})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s %s", tc.method, tc.target)
	}

	got, err := env.db.GetArticle(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", got.HTMLCode)

	resp, _ := c.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestArticleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	testutil.CreateTestUser(t, env.db, "alice")
	c := env.client(t)
	c.login("alice@example.com")

	resp, body := c.post("/article", url.Values{"html_code": {""}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "HTML is required")

	resp, body = c.post("/article", url.Values{"html_code": {"<p>x</p>"}, "thumbnail": {"not a url"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Thumbnail")

	resp, _ = c.post("/article", url.Values{
		"html_code":   {"<button>Do not press</button>"},
		"css_code":    {"button { color: red; }"},
		"script_code": {"console.log(1)"},
	})
	assertRedirect(t, resp, "/")

	articles, err := env.db.ListArticles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	article := articles[0]
	assert.Equal(t, config.DefaultThumbnailURL, article.Thumbnail)
	assert.Equal(t, "alice", article.AuthorName)

	resp, body = c.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, path("/", article.ID))

	resp, body = c.get(path("/", article.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<button>Do not press</button>")
	assert.Contains(t, body, "button { color: red; }")

	resp, _ = c.post(path("/article/", article.ID), url.Values{
		"html_code":    {"<p>edited</p>"},
		"is_anonymous": {"1"},
	})
	assertRedirect(t, resp, "/")

	got, err := env.db.GetArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>edited</p>", got.HTMLCode)
	assert.Equal(t, "Anonymous", got.DisplayAuthor())

	resp, body = c.get(path("/delete_article/", article.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/delete_article/`)
	_, err = env.db.GetArticle(ctx, article.ID)
	require.NoError(t, err, "GET only asks for confirmation")

	resp, _ = c.post(path("/delete_article/", article.ID), url.Values{})
	assertRedirect(t, resp, "/")
	_, err = env.db.GetArticle(ctx, article.ID)
	assert.ErrorIs(t, err, db.ErrArticleNotFound)
}

func TestViewIncrementsCounter(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateTestUser(t, env.db, "alice")
	article := testutil.CreateTestArticle(t, env.db, alice, "<p>hi</p>")
	c := env.client(t)

	for i := 0; i < 3; i++ {
		resp, _ := c.get(path("/", article.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	got, err := env.db.GetArticle(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Views)

	resp, _ := c.get("/999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOnlyTheAuthorMayEditOrDelete(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateTestUser(t, env.db, "alice")
	testutil.CreateTestUser(t, env.db, "mallory")
	article := testutil.CreateTestArticle(t, env.db, alice, "<p>mine</p>")
	c := env.client(t)
	c.login("mallory@example.com")

	resp, _ := c.get(path("/article/", article.ID))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.post(path("/article/", article.ID), url.Values{"html_code": {"<p>pwned</p>"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.post(path("/article/", article.ID), url.Values{"html_code": {""}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.get(path("/delete_article/", article.ID))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.post(path("/delete_article/", article.ID), url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	got, err := env.db.GetArticle(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>mine</p>", got.HTMLCode)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateTestUser(t, env.db, "alice")
	article := testutil.CreateTestArticle(t, env.db, alice, "<p>hi</p>")
	thread := path("/comments/", article.ID)

	anon := env.client(t)
	resp, _ := anon.post(thread, url.Values{"text": {"<script>alert(1)</script>nice"}})
	assertRedirect(t, resp, thread)

	signed := env.client(t)
	signed.login("alice@example.com")
	resp, _ = signed.post(thread, url.Values{"text": {"thanks"}})
	assertRedirect(t, resp, thread)

	comments, err := env.db.ListComments(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "nice", comments[0].Text)
	assert.Nil(t, comments[0].UserID)
	require.NotNil(t, comments[1].UserID)
	assert.Equal(t, alice.ID, *comments[1].UserID)

	resp, body := anon.get(thread)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Anonymous")
	assert.Contains(t, body, "thanks")
	assert.NotContains(t, body, "<script>alert(1)</script>")

	resp, body = anon.post(thread, url.Values{"text": {"   "}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Comment is required")

	t.Run("missing article", func(t *testing.T) {
		resp, _ := anon.post("/comments/42", url.Values{"text": {"hello?"}})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = anon.get("/comments/42")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		comments, err := env.db.ListComments(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}

func TestModeratorRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateTestUser(t, env.db, "alice")
	c := env.client(t)
	c.login("alice@example.com")

	resp, body := c.post("/moderatorRequest", url.Values{"introduction": {"Hi"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "About is required")

	resp, _ = c.post("/moderatorRequest", url.Values{"introduction": {"Hi"}, "about": {"I like bad UIs"}})
	assertRedirect(t, resp, "/")

	user, err := env.db.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, user.RequestID)

	req, err := env.db.GetRequest(ctx, *user.RequestID)
	require.NoError(t, err)
	assert.True(t, req.IsPending())
	assert.Equal(t, alice.ID, req.ApplicantID)

	env.notifier.mu.Lock()
	assert.Len(t, env.notifier.requests, 1)
	env.notifier.mu.Unlock()

	_, body = c.get("/profile")
	assert.Contains(t, body, models.RequestPending)

	require.NoError(t, env.db.SetModerator(ctx, alice.ID, true))
	resp, body = c.post("/moderatorRequest", url.Values{"introduction": {"Hi"}, "about": {"again"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You are already a moderator")
}

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)
	alice := testutil.CreateTestUser(t, env.db, "alice")
	article := testutil.CreateTestArticle(t, env.db, alice, "<p>hi</p>")
	c := env.client(t)
	_, _ = c.get(path("/", article.ID))

	resp, body := c.get("/about")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "About the collection")

	resp, body = c.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "badui_articles_total 1")
	assert.Contains(t, body, "badui_article_views_total 1")

	resp, body = c.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Bad UI collection")
}
