package db

import (
	"context"
	"database/sql"
	"errors"

	"badui/internal/models"
)

// userColumns is the standard column list for user queries.
const userColumns = `id, name, email, hashed_password, is_moderator, request_id, created_at`

// scanUser scans a row into a User struct.
func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.IsModerator,
		&user.RequestID,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user. Returns ErrDuplicateEmail if the email is taken.
func (s *Session) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING id, is_moderator, created_at
	`

	err := s.q.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.HashedPassword,
	).Scan(&user.ID, &user.IsModerator, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

// GetUserByID retrieves a user by id.
func (s *Session) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.q.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email address.
func (s *Session) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.q.QueryRowContext(ctx, query, email))
}

// SetModerator sets or clears a user's moderator flag.
func (s *Session) SetModerator(ctx context.Context, userID int64, isModerator bool) error {
	query := `UPDATE users SET is_moderator = $1 WHERE id = $2`
	result, err := s.q.ExecContext(ctx, query, isModerator, userID)
	if err != nil {
		return err
	}
	return expectRows(result, ErrUserNotFound)
}

// ListModeratorEmails returns the email addresses of all moderators that have one.
func (s *Session) ListModeratorEmails(ctx context.Context) ([]string, error) {
	query := `
		SELECT email FROM users
		WHERE is_moderator = TRUE AND email IS NOT NULL AND email <> ''
		ORDER BY id
	`
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// CountModerators returns the number of users with the moderator flag set.
func (s *Session) CountModerators(ctx context.Context) (int64, error) {
	var n int64
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_moderator = TRUE`).Scan(&n)
	return n, err
}

// setUserRequest links a user to their latest moderator request.
func (s *Session) setUserRequest(ctx context.Context, userID, requestID int64) error {
	result, err := s.q.ExecContext(ctx, `UPDATE users SET request_id = $1 WHERE id = $2`, requestID, userID)
	if err != nil {
		return err
	}
	return expectRows(result, ErrUserNotFound)
}
