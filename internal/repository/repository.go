package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository struct {
	DB             *gorm.DB
	Orders         OrderRepo
	TimeSlots      TimeSlotRepo
	Appointments   AppointmentRepo
	Profiles       ProfileRepo
	Charities      CharityRepo
	Media          MediaRepo
	Users          UserRepo
	Sessions       SessionRepo
	PasswordResets PasswordResetRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:             db,
		Orders:         NewOrderRepo(db),
		TimeSlots:      NewTimeSlotRepo(db),
		Appointments:   NewAppointmentRepo(db),
		Profiles:       NewProfileRepo(db),
		Charities:      NewCharityRepo(db),
		Media:          NewMediaRepo(db),
		Users:          NewUserRepo(db),
		Sessions:       NewSessionRepo(db),
		PasswordResets: NewPasswordResetRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx runs fn against a Repository bound to a single transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}

// first loads one row matching q into a new T. A missing row is (nil, nil).
func first[T any](q *gorm.DB) (*T, error) {
	var out T
	err := q.First(&out).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &out, nil
}
