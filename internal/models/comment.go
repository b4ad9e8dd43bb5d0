package models

import "time"

// Comment is a note left on an article. UserID is nil for anonymous visitors.
type Comment struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	UserID    *int64    `json:"user_id,omitempty"`
	UserName  string    `json:"user_name,omitempty"` // resolved from users on read
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayAuthor returns the commenter's name or "Anonymous".
func (c *Comment) DisplayAuthor() string {
	if c.UserID == nil || c.UserName == "" {
		return "Anonymous"
	}
	return c.UserName
}
