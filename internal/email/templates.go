package email

import (
	"fmt"
	"html"

	"badui/internal/config"
	"badui/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in the shared HTML email layout.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>
        body { font-family: "Comic Sans MS", cursive, sans-serif; color: #222; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #ff00ff; color: #ffff00; padding: 16px; text-align: center; }
        .content { background: #fafafa; padding: 20px; border: 3px dashed #00ffff; }
        .footer { padding: 12px; text-align: center; font-size: 12px; color: #666; }
        .quote { border-left: 4px solid #ff00ff; padding-left: 12px; white-space: pre-wrap; }
        .button { display: inline-block; background: #00ff00; color: #000; padding: 10px 20px; text-decoration: none; }
    </style>
</head>
<body>
    <div class="header"><h1>%s</h1></div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`,
		html.EscapeString(title),
		html.EscapeString(t.cfg.SiteTitle),
		content,
		html.EscapeString(t.cfg.SiteTitle),
		html.EscapeString(t.cfg.BaseURL),
		html.EscapeString(t.cfg.BaseURL),
	)
}

// RequestSubmitted is sent to moderators when someone asks to become one.
func (t *Templates) RequestSubmitted(req *models.Request, applicant *models.User) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] New moderator request from %s", t.cfg.SiteTitle, applicant.Name)

	content := fmt.Sprintf(`
        <p><strong>%s</strong> (%s) would like to become a moderator.</p>
        <p>Introduction:</p>
        <div class="quote">%s</div>
        <p>About:</p>
        <div class="quote">%s</div>
        <p>Request #%d is pending. Accept it with <code>badui requests accept %d</code>.</p>
    `,
		html.EscapeString(applicant.Name),
		html.EscapeString(applicant.EmailAddress()),
		html.EscapeString(req.Introduction),
		html.EscapeString(req.About),
		req.ID,
		req.ID,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`New moderator request

From: %s (%s)

Introduction:
%s

About:
%s

Request #%d is pending. Accept it with: badui requests accept %d

--
%s
%s`,
		applicant.Name,
		applicant.EmailAddress(),
		req.Introduction,
		req.About,
		req.ID,
		req.ID,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}

// Promoted is sent to a user once the moderator flag has been set.
func (t *Templates) Promoted(user *models.User) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] You are now a moderator", t.cfg.SiteTitle)

	content := fmt.Sprintf(`
        <p>Hi %s,</p>
        <p>Your moderator request was accepted. Welcome aboard.</p>
        <p style="text-align: center;"><a href="%s/profile" class="button">Open your profile</a></p>
    `,
		html.EscapeString(user.Name),
		html.EscapeString(t.cfg.BaseURL),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`Hi %s,

Your moderator request was accepted. Welcome aboard.

Profile: %s/profile

--
%s`,
		user.Name,
		t.cfg.BaseURL,
		t.cfg.SiteTitle,
	)

	return
}
