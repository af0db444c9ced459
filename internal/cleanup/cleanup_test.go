package cleanup_test

import (
	"context"
	"testing"
	"time"

	"kasap-service/internal/cleanup"
	"kasap-service/internal/models"
	"kasap-service/internal/repository"
	"kasap-service/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestRunFullCleanup(t *testing.T) {
	db := testutil.SetupTestSQLite(t)
	repo := repository.New(db)
	ctx := context.Background()
	now := time.Now().UTC()
	userID := uuid.New()

	sessions := []*models.UserSession{
		{UserID: userID, ExpiresAt: now.Add(time.Hour), CreatedAt: now},
		{UserID: userID, ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)},
		{UserID: userID, ExpiresAt: now.Add(time.Hour), Revoked: true, CreatedAt: now},
	}
	for _, s := range sessions {
		if err := repo.Sessions.Create(ctx, s); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	tokens := []*models.PasswordResetToken{
		{UserID: userID, Email: "u@x.io", CodeHash: "live", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
		{UserID: userID, Email: "u@x.io", CodeHash: "expired", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: userID, Email: "u@x.io", CodeHash: "used-old", ExpiresAt: now.Add(time.Hour), Consumed: true, CreatedAt: now.Add(-25 * time.Hour)},
		{UserID: userID, Email: "u@x.io", CodeHash: "used-recent", ExpiresAt: now.Add(time.Hour), Consumed: true, CreatedAt: now},
	}
	for _, tok := range tokens {
		if err := repo.PasswordResets.Create(ctx, tok); err != nil {
			t.Fatalf("create reset token: %v", err)
		}
	}

	past := &models.TimeSlot{Date: repository.Day(now.AddDate(0, 0, -1)), StartTime: "09:00", EndTime: "10:00", MaxCapacity: 2, IsAvailable: true, CreatedAt: now, UpdatedAt: now}
	future := &models.TimeSlot{Date: repository.Day(now.AddDate(0, 0, 2)), StartTime: "09:00", EndTime: "10:00", MaxCapacity: 2, CurrentBookings: 2, IsAvailable: true, CreatedAt: now, UpdatedAt: now}
	for _, s := range []*models.TimeSlot{past, future} {
		if err := repo.TimeSlots.Create(ctx, s); err != nil {
			t.Fatalf("create slot: %v", err)
		}
	}

	svc := cleanup.NewCleanupService(db, zap.NewNop())
	if err := svc.RunFullCleanup(ctx); err != nil {
		t.Fatalf("RunFullCleanup: %v", err)
	}

	if n := count(t, db, &models.UserSession{}); n != 1 {
		t.Fatalf("expected 1 live session, got %d", n)
	}
	if n := count(t, db, &models.PasswordResetToken{}); n != 2 {
		t.Fatalf("expected 2 reset tokens kept, got %d", n)
	}

	got, _ := repo.TimeSlots.GetByID(ctx, past.ID)
	if got.IsAvailable {
		t.Fatalf("past slot still open")
	}
	got, _ = repo.TimeSlots.GetByID(ctx, future.ID)
	if got.CurrentBookings != 0 {
		t.Fatalf("bookings not reconciled: %d", got.CurrentBookings)
	}
}

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	db := testutil.SetupTestSQLite(t)
	repo := repository.New(db)
	ctx := context.Background()
	now := time.Now().UTC()

	s := &models.UserSession{UserID: uuid.New(), ExpiresAt: now.Add(-time.Minute), CreatedAt: now}
	if err := repo.Sessions.Create(ctx, s); err != nil {
		t.Fatalf("create session: %v", err)
	}

	sched := cleanup.NewScheduler(cleanup.NewCleanupService(db, zap.NewNop()), cleanup.Intervals{Slots: time.Hour, Tokens: time.Hour}, zap.NewNop())
	sched.Start(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for count(t, db, &models.UserSession{}) != 0 {
		if time.Now().After(deadline) {
			sched.Stop()
			t.Fatalf("expired session was not removed by the first run")
		}
		time.Sleep(20 * time.Millisecond)
	}

	sched.Stop()
	sched.Stop()
}
