package cleanup

import (
	"context"
	"time"

	"kasap-service/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// consumedRetention is how long used reset codes are kept before deletion.
const consumedRetention = 24 * time.Hour

type CleanupService struct {
	db    *gorm.DB
	slots repository.TimeSlotRepo
	log   *zap.Logger
	now   func() time.Time
}

func NewCleanupService(db *gorm.DB, log *zap.Logger) *CleanupService {
	return &CleanupService{
		db:    db,
		slots: repository.NewTimeSlotRepo(db),
		log:   log,
		now:   time.Now,
	}
}

// ClosePastSlots marks every slot dated before today as unavailable.
func (c *CleanupService) ClosePastSlots(ctx context.Context) error {
	n, err := c.slots.CloseBefore(ctx, c.now().UTC())
	if err != nil {
		c.log.Error("failed to close past time slots", zap.Error(err))
		return err
	}
	if n > 0 {
		c.log.Info("closed past time slots", zap.Int64("count", n))
	}
	return nil
}

// ReconcileBookings recomputes current_bookings from non-cancelled appointments.
func (c *CleanupService) ReconcileBookings(ctx context.Context) error {
	n, err := c.slots.ReconcileBookings(ctx)
	if err != nil {
		c.log.Error("failed to reconcile slot bookings", zap.Error(err))
		return err
	}
	if n > 0 {
		c.log.Warn("reconciled drifted slot bookings", zap.Int64("count", n))
	}
	return nil
}

// purge runs one DELETE and logs how many rows it removed.
func (c *CleanupService) purge(ctx context.Context, what, query string, args ...any) error {
	res := c.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		c.log.Error("cleanup delete failed", zap.String("what", what), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected > 0 {
		c.log.Info("cleanup deleted rows", zap.String("what", what), zap.Int64("count", res.RowsAffected))
	}
	return nil
}

// CleanupSessions drops sessions that can no longer be refreshed.
func (c *CleanupService) CleanupSessions(ctx context.Context) error {
	return c.purge(ctx, "sessions",
		"DELETE FROM user_sessions WHERE expires_at < ? OR revoked = ?", c.now().UTC(), true)
}

// CleanupResetTokens drops expired reset codes, and consumed ones once they
// are older than consumedRetention.
func (c *CleanupService) CleanupResetTokens(ctx context.Context) error {
	now := c.now().UTC()
	if err := c.purge(ctx, "expired reset codes",
		"DELETE FROM password_reset_tokens WHERE expires_at < ?", now); err != nil {
		return err
	}
	return c.purge(ctx, "consumed reset codes",
		"DELETE FROM password_reset_tokens WHERE consumed = ? AND created_at < ?", true, now.Add(-consumedRetention))
}

// RunFullCleanup runs every job in order and stops at the first failure.
func (c *CleanupService) RunFullCleanup(ctx context.Context) error {
	jobs := []func(context.Context) error{
		c.ClosePastSlots,
		c.ReconcileBookings,
		c.CleanupSessions,
		c.CleanupResetTokens,
	}
	started := c.now()
	for _, job := range jobs {
		if err := job(ctx); err != nil {
			return err
		}
	}
	c.log.Info("full cleanup completed", zap.Duration("took", c.now().Sub(started)))
	return nil
}
