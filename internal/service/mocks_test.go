package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"kasap-service/internal/service"

	"github.com/google/uuid"
)

// MockEventBus records every published event.
type MockEventBus struct {
	mu        sync.Mutex
	Created   []service.OrderCreatedEvent
	Changed   []service.OrderStatusChangedEvent
	Cancelled []service.OrderCancelledEvent
	Booked    []service.AppointmentEvent
	Released  []service.AppointmentEvent
	Err       error
}

func (m *MockEventBus) PublishOrderCreated(_ context.Context, e service.OrderCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, e)
	return m.Err
}

func (m *MockEventBus) PublishOrderStatusChanged(_ context.Context, e service.OrderStatusChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Changed = append(m.Changed, e)
	return m.Err
}

func (m *MockEventBus) PublishOrderCancelled(_ context.Context, e service.OrderCancelledEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancelled = append(m.Cancelled, e)
	return m.Err
}

func (m *MockEventBus) PublishAppointmentBooked(_ context.Context, e service.AppointmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Booked = append(m.Booked, e)
	return m.Err
}

func (m *MockEventBus) PublishAppointmentCancelled(_ context.Context, e service.AppointmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Released = append(m.Released, e)
	return m.Err
}

var errMiss = errors.New("miss")

// MockCache is an in-memory StatsCache.
type MockCache struct {
	mu      sync.Mutex
	Data    map[string]string
	Deleted []string
}

func NewMockCache() *MockCache { return &MockCache{Data: map[string]string{}} }

func (m *MockCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Data[key]
	if !ok {
		return "", errMiss
	}
	return v, nil
}

func (m *MockCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value.(string)
	return nil
}

func (m *MockCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.Data, k)
		m.Deleted = append(m.Deleted, k)
	}
	return nil
}

// MockAuthProvider
type MockAuthProvider struct {
	SignUpFunc                func(ctx context.Context, email, password string) (*service.Identity, error)
	SignInFunc                func(ctx context.Context, email, password string) (*service.Session, error)
	SignOutFunc               func(ctx context.Context, token string) error
	GetSessionFunc            func(ctx context.Context, token string) (*service.Session, error)
	ResetPasswordForEmailFunc func(ctx context.Context, email, redirectTo string) error
	ConfirmPasswordResetFunc  func(ctx context.Context, code, newPassword string) error
	DeleteUserFunc            func(ctx context.Context, id uuid.UUID) error
}

func (m *MockAuthProvider) SignUp(ctx context.Context, email, password string) (*service.Identity, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockAuthProvider) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockAuthProvider) SignOut(ctx context.Context, token string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, token)
	}
	return nil
}

func (m *MockAuthProvider) GetSession(ctx context.Context, token string) (*service.Session, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockAuthProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	if m.ResetPasswordForEmailFunc != nil {
		return m.ResetPasswordForEmailFunc(ctx, email, redirectTo)
	}
	return nil
}

func (m *MockAuthProvider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	if m.ConfirmPasswordResetFunc != nil {
		return m.ConfirmPasswordResetFunc(ctx, code, newPassword)
	}
	return nil
}

func (m *MockAuthProvider) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil
}
