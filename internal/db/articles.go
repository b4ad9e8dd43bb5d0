package db

import (
	"context"
	"database/sql"
	"errors"

	"badui/internal/models"
)

// articleSelect reads articles together with their author's name.
const articleSelect = `
	SELECT a.id, a.thumbnail, a.author_id, COALESCE(u.name, ''), a.html_code, a.script_code,
		a.css_code, a.is_anonymous, a.views, a.created_at, a.updated_at
	FROM articles a
	LEFT JOIN users u ON u.id = a.author_id`

// scanArticle scans a row into an Article struct.
func scanArticle(row rowScanner) (*models.Article, error) {
	var a models.Article
	err := row.Scan(
		&a.ID,
		&a.Thumbnail,
		&a.AuthorID,
		&a.AuthorName,
		&a.HTMLCode,
		&a.ScriptCode,
		&a.CSSCode,
		&a.IsAnonymous,
		&a.Views,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scanArticles scans multiple rows into a slice of Articles.
func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// CreateArticle inserts a new article. Returns ErrUserNotFound if the author does not exist.
func (s *Session) CreateArticle(ctx context.Context, a *models.Article) error {
	query := `
		INSERT INTO articles (thumbnail, author_id, html_code, script_code, css_code, is_anonymous)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, views, created_at, updated_at
	`

	err := s.q.QueryRowContext(ctx, query,
		a.Thumbnail,
		a.AuthorID,
		a.HTMLCode,
		a.ScriptCode,
		a.CSSCode,
		a.IsAnonymous,
	).Scan(&a.ID, &a.Views, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// GetArticle retrieves an article by id.
func (s *Session) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	return scanArticle(s.q.QueryRowContext(ctx, articleSelect+` WHERE a.id = $1`, id))
}

// GetArticleForAuthor retrieves an article only if authorID wrote it.
// Any other combination is reported as ErrArticleNotFound.
func (s *Session) GetArticleForAuthor(ctx context.Context, id, authorID int64) (*models.Article, error) {
	return scanArticle(s.q.QueryRowContext(ctx, articleSelect+` WHERE a.id = $1 AND a.author_id = $2`, id, authorID))
}

// ListArticles returns all articles, newest first.
func (s *Session) ListArticles(ctx context.Context) ([]models.Article, error) {
	rows, err := s.q.QueryContext(ctx, articleSelect+` ORDER BY a.id DESC`)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

// ListArticlesByAuthor returns the articles written by a user, newest first.
func (s *Session) ListArticlesByAuthor(ctx context.Context, authorID int64) ([]models.Article, error) {
	rows, err := s.q.QueryContext(ctx, articleSelect+` WHERE a.author_id = $1 ORDER BY a.id DESC`, authorID)
	if err != nil {
		return nil, err
	}
	return scanArticles(rows)
}

// UpdateArticle saves the editable fields of an article owned by a.AuthorID.
func (s *Session) UpdateArticle(ctx context.Context, a *models.Article) error {
	query := `
		UPDATE articles
		SET thumbnail = $1, html_code = $2, script_code = $3, css_code = $4, is_anonymous = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6 AND author_id = $7
	`
	result, err := s.q.ExecContext(ctx, query,
		a.Thumbnail,
		a.HTMLCode,
		a.ScriptCode,
		a.CSSCode,
		a.IsAnonymous,
		a.ID,
		a.AuthorID,
	)
	if err != nil {
		return err
	}
	return expectRows(result, ErrArticleNotFound)
}

// DeleteArticle deletes an article owned by authorID. Its comments go with it.
func (s *Session) DeleteArticle(ctx context.Context, id, authorID int64) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM articles WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return err
	}
	return expectRows(result, ErrArticleNotFound)
}

// IncrementArticleViews adds one view and returns the new count.
// The single UPDATE keeps concurrent increments from being lost.
func (s *Session) IncrementArticleViews(ctx context.Context, id int64) (int64, error) {
	var views int64
	err := s.q.QueryRowContext(ctx,
		`UPDATE articles SET views = views + 1 WHERE id = $1 RETURNING views`, id,
	).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrArticleNotFound
	}
	return views, err
}

// ArticleStats returns the number of articles and the sum of their views.
func (s *Session) ArticleStats(ctx context.Context) (models.ArticleStats, error) {
	var stats models.ArticleStats
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*), CAST(COALESCE(SUM(views), 0) AS BIGINT) FROM articles`,
	).Scan(&stats.Articles, &stats.Views)
	return stats, err
}

// expectRows returns notFound when result touched no rows.
func expectRows(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
