// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"badui/internal/db"
	"badui/internal/models"
)

// TestPassword is the plaintext password of every user made by CreateTestUser.
const TestPassword = "correct horse battery"

// TestDB opens a migrated SQLite database in a temp directory. It is closed
// when the test ends.
func TestDB(t *testing.T) *db.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bad_ui.sqlite")
	database, err := db.New(context.Background(), "sqlite://"+path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return database
}

// CreateTestUser creates a user named name with email name@example.com and
// TestPassword as its password.
func CreateTestUser(t *testing.T, database *db.DB, name string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	email := fmt.Sprintf("%s@example.com", name)
	hashed := string(hash)
	user := &models.User{Name: name, Email: &email, HashedPassword: &hashed}
	if err := database.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestModerator creates a user and grants it the moderator flag.
func CreateTestModerator(t *testing.T, database *db.DB, name string) *models.User {
	t.Helper()

	user := CreateTestUser(t, database, name)
	if err := database.SetModerator(context.Background(), user.ID, true); err != nil {
		t.Fatalf("failed to promote test user: %v", err)
	}
	user.IsModerator = true

	return user
}

// CreateTestArticle creates an article authored by author.
func CreateTestArticle(t *testing.T, database *db.DB, author *models.User, html string) *models.Article {
	t.Helper()

	article := &models.Article{
		Thumbnail: "https://example.com/thumb.png",
		AuthorID:  author.ID,
		HTMLCode:  html,
	}
	if err := database.CreateArticle(context.Background(), article); err != nil {
		t.Fatalf("failed to create test article: %v", err)
	}

	return article
}

// CreateTestRequest submits a moderator request for applicant. When accepted
// is non-nil the request is decided right away.
func CreateTestRequest(t *testing.T, database *db.DB, applicant *models.User, accepted *bool) *models.Request {
	t.Helper()
	ctx := context.Background()

	req := &models.Request{
		Introduction: fmt.Sprintf("I am %s", applicant.Name),
		About:        "I would like to help curate the worst UI on the web.",
		ApplicantID:  applicant.ID,
	}
	err := database.UnitOfWork(ctx, func(s *db.Session) error {
		if err := s.CreateRequest(ctx, req); err != nil {
			return err
		}
		if accepted != nil {
			return s.SetRequestAccepted(ctx, req.ID, accepted)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create test request: %v", err)
	}
	req.Accepted = accepted

	return req
}
