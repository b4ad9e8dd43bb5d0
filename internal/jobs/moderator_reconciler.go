package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"badui/internal/db"
	"badui/internal/models"
)

// Reconcile outcomes reported to a RunObserver.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// PromotionNotifier is told about every user the reconciler promotes.
type PromotionNotifier interface {
	NotifyPromoted(ctx context.Context, user *models.User)
}

// RunObserver records the outcome of each reconcile pass.
type RunObserver interface {
	ObserveReconcile(outcome string, promoted int)
}

// ReconcileResult summarizes one pass.
type ReconcileResult struct {
	RunID    string
	Scanned  int
	Accepted int
	Orphaned int
	Promoted []int64
}

// ModeratorReconciler periodically promotes users whose moderator request has
// been accepted.
type ModeratorReconciler struct {
	db       *db.DB
	interval time.Duration
	logger   *slog.Logger
	notifier PromotionNotifier
	observer RunObserver
}

// Option configures a ModeratorReconciler.
type Option func(*ModeratorReconciler)

// WithNotifier sets the notifier for newly promoted users.
func WithNotifier(n PromotionNotifier) Option {
	return func(r *ModeratorReconciler) { r.notifier = n }
}

// WithObserver sets the observer for pass outcomes.
func WithObserver(o RunObserver) Option {
	return func(r *ModeratorReconciler) { r.observer = o }
}

// WithLogger overrides slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *ModeratorReconciler) { r.logger = l }
}

// NewModeratorReconciler creates a reconciler that runs every interval.
func NewModeratorReconciler(database *db.DB, interval time.Duration, opts ...Option) *ModeratorReconciler {
	r := &ModeratorReconciler{
		db:       database,
		interval: interval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "moderator_reconciler")
	return r
}

// Start runs one pass immediately and then one per interval until ctx is
// cancelled. A failed pass is logged and the loop continues.
func (r *ModeratorReconciler) Start(ctx context.Context) {
	r.logger.Info("reconciler started", "interval", r.interval)

	r.runLogged(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.runLogged(ctx)
		}
	}
}

func (r *ModeratorReconciler) runLogged(ctx context.Context) {
	result, err := r.ReconcileOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("reconcile pass failed", "run_id", result.RunID, "error", err)
		return
	}
	if len(result.Promoted) > 0 || result.Orphaned > 0 {
		r.logger.Info("reconcile pass finished",
			"run_id", result.RunID,
			"scanned", result.Scanned,
			"accepted", result.Accepted,
			"promoted", len(result.Promoted),
			"orphaned", result.Orphaned,
		)
	}
}

// ReconcileOnce runs a single pass in one unit of work. Either every promotion
// in the pass is committed or none is.
func (r *ModeratorReconciler) ReconcileOnce(ctx context.Context) (ReconcileResult, error) {
	result := ReconcileResult{RunID: uuid.NewString()}
	var promoted []*models.User

	err := r.db.UnitOfWork(ctx, func(s *db.Session) error {
		requests, err := s.ListRequests(ctx, false)
		if err != nil {
			return err
		}

		for _, req := range requests {
			result.Scanned++
			if !req.IsAccepted() {
				continue
			}
			result.Accepted++

			user, err := s.GetUserByID(ctx, req.ApplicantID)
			if errors.Is(err, db.ErrUserNotFound) {
				result.Orphaned++
				r.logger.Warn("accepted request has no applicant",
					"run_id", result.RunID, "request_id", req.ID, "applicant_id", req.ApplicantID)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load applicant of request %d: %w", req.ID, err)
			}

			if user.IsModerator {
				continue
			}
			if err := s.SetModerator(ctx, user.ID, true); err != nil {
				return fmt.Errorf("failed to promote user %d: %w", user.ID, err)
			}
			user.IsModerator = true
			promoted = append(promoted, user)
		}
		return nil
	})
	if err != nil {
		r.observe(OutcomeError, 0)
		return ReconcileResult{RunID: result.RunID}, err
	}

	for _, user := range promoted {
		result.Promoted = append(result.Promoted, user.ID)
		r.logger.Info("user promoted to moderator", "run_id", result.RunID, "user_id", user.ID)
		if r.notifier != nil {
			r.notifier.NotifyPromoted(ctx, user)
		}
	}
	r.observe(OutcomeSuccess, len(promoted))

	return result, nil
}

func (r *ModeratorReconciler) observe(outcome string, promoted int) {
	if r.observer != nil {
		r.observer.ObserveReconcile(outcome, promoted)
	}
}
