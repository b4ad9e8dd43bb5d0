package email

import (
	"context"
	"log/slog"

	"badui/internal/config"
	"badui/internal/models"
)

// ModeratorEmailGetter is an interface for getting moderator emails.
type ModeratorEmailGetter interface {
	ListModeratorEmails(ctx context.Context) ([]string, error)
}

// Sender delivers rendered messages. *Service implements it.
type Sender interface {
	IsEnabled() bool
	SendAsync(to []string, subject, htmlBody, textBody string)
}

// Notifier sends email notifications for moderator requests.
type Notifier struct {
	sender    Sender
	templates *Templates
	db        ModeratorEmailGetter
	logger    *slog.Logger
}

// NewNotifier creates a new email notifier backed by SMTP.
func NewNotifier(cfg *config.Config, db ModeratorEmailGetter) *Notifier {
	return NewNotifierWithSender(cfg, db, NewService(cfg))
}

// NewNotifierWithSender creates a notifier that delivers through sender.
func NewNotifierWithSender(cfg *config.Config, db ModeratorEmailGetter, sender Sender) *Notifier {
	return &Notifier{
		sender:    sender,
		templates: NewTemplates(cfg),
		db:        db,
		logger:    slog.Default().With("component", "notifier"),
	}
}

// NotifyRequestSubmitted tells every moderator about a new request.
func (n *Notifier) NotifyRequestSubmitted(ctx context.Context, req *models.Request, applicant *models.User) {
	if n == nil || !n.sender.IsEnabled() {
		return
	}

	emails, err := n.db.ListModeratorEmails(ctx)
	if err != nil {
		n.logger.Error("failed to get moderator emails", "error", err)
		return
	}

	if len(emails) == 0 {
		n.logger.Debug("no moderators to notify", "request_id", req.ID)
		return
	}

	subject, htmlBody, textBody := n.templates.RequestSubmitted(req, applicant)
	n.sender.SendAsync(emails, subject, htmlBody, textBody)
}

// NotifyPromoted tells a user their request was accepted.
func (n *Notifier) NotifyPromoted(_ context.Context, user *models.User) {
	if n == nil || !n.sender.IsEnabled() {
		return
	}

	to := user.EmailAddress()
	if to == "" {
		return
	}

	subject, htmlBody, textBody := n.templates.Promoted(user)
	n.sender.SendAsync([]string{to}, subject, htmlBody, textBody)
}
