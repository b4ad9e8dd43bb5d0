package db

import (
	"context"
	"database/sql"
	"errors"

	"badui/internal/models"
)

const requestColumns = `id, introduction, about, applicant_id, is_request_accepted, created_at`

// scanRequest scans a row into a Request struct.
func scanRequest(row rowScanner) (*models.Request, error) {
	var r models.Request
	err := row.Scan(
		&r.ID,
		&r.Introduction,
		&r.About,
		&r.ApplicantID,
		&r.Accepted,
		&r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Session) listRequests(ctx context.Context, query string, args ...any) ([]models.Request, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// CreateRequest stores a pending moderator request and links it to the applicant.
// It issues several statements, so callers should run it inside UnitOfWork.
// Returns ErrUserNotFound if the applicant does not exist.
func (s *Session) CreateRequest(ctx context.Context, r *models.Request) error {
	if _, err := s.GetUserByID(ctx, r.ApplicantID); err != nil {
		return err
	}

	query := `
		INSERT INTO requests (introduction, about, applicant_id)
		VALUES ($1, $2, $3)
		RETURNING id, is_request_accepted, created_at
	`
	err := s.q.QueryRowContext(ctx, query,
		r.Introduction,
		r.About,
		r.ApplicantID,
	).Scan(&r.ID, &r.Accepted, &r.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return err
	}

	return s.setUserRequest(ctx, r.ApplicantID, r.ID)
}

// GetRequest retrieves a moderator request by id.
func (s *Session) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	return scanRequest(s.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
}

// ListRequests returns moderator requests, oldest first. pendingOnly limits the
// result to requests without a decision.
func (s *Session) ListRequests(ctx context.Context, pendingOnly bool) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests`
	if pendingOnly {
		query += ` WHERE is_request_accepted IS NULL`
	}
	return s.listRequests(ctx, query+` ORDER BY id`)
}

// SetRequestAccepted records a decision. A nil accepted resets the request to pending.
func (s *Session) SetRequestAccepted(ctx context.Context, id int64, accepted *bool) error {
	result, err := s.q.ExecContext(ctx, `UPDATE requests SET is_request_accepted = $1 WHERE id = $2`, accepted, id)
	if err != nil {
		return err
	}
	return expectRows(result, ErrRequestNotFound)
}
