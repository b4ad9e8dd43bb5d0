package db

import (
	"context"
	"database/sql"
	"errors"

	"badui/internal/models"
)

// CreateComment stores a comment. The article must exist: a comment against a
// missing article is rejected with ErrArticleNotFound and nothing is written.
func (s *Session) CreateComment(ctx context.Context, c *models.Comment) error {
	var exists int
	err := s.q.QueryRowContext(ctx, `SELECT 1 FROM articles WHERE id = $1`, c.ArticleID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrArticleNotFound
	}
	if err != nil {
		return err
	}

	query := `
		INSERT INTO comments (article_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err = s.q.QueryRowContext(ctx, query, c.ArticleID, c.UserID, c.Text).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrArticleNotFound
		}
		return err
	}
	return nil
}

// ListComments returns the comments of an article, oldest first.
func (s *Session) ListComments(ctx context.Context, articleID int64) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.article_id, c.user_id, COALESCE(u.name, ''), c.text, c.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.article_id = $1
		ORDER BY c.id
	`
	rows, err := s.q.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.UserName, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
