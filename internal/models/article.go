package models

import "time"

// Article is a user-submitted HTML/CSS/script snippet.
type Article struct {
	ID          int64     `json:"id"`
	Thumbnail   string    `json:"thumbnail"`
	AuthorID    int64     `json:"author_id"`
	AuthorName  string    `json:"author_name"` // resolved from users on read
	HTMLCode    string    `json:"html_code"`
	ScriptCode  string    `json:"script_code"`
	CSSCode     string    `json:"css_code"`
	IsAnonymous bool      `json:"is_anonymous"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayAuthor returns the name shown to visitors.
func (a *Article) DisplayAuthor() string {
	if a.IsAnonymous || a.AuthorName == "" {
		return "Anonymous"
	}
	return a.AuthorName
}

// IsAuthoredBy returns true if the user wrote the article.
func (a *Article) IsAuthoredBy(u *User) bool {
	return u != nil && u.ID == a.AuthorID
}

// ArticleStats summarises all articles.
type ArticleStats struct {
	Articles int64
	Views    int64
}
