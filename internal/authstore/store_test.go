package authstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"kasap-service/internal/authstore"
	"kasap-service/internal/service"

	"github.com/google/uuid"
)

type MockAuth struct {
	SignUpFunc         func(ctx context.Context, in service.SignUpInput) (*service.AuthUser, error)
	SignInFunc         func(ctx context.Context, email, password string) (*service.AuthUser, error)
	SignOutFunc        func(ctx context.Context, token string) error
	GetCurrentUserFunc func(ctx context.Context, token string) (*service.AuthUser, error)
}

func (m *MockAuth) SignUp(ctx context.Context, in service.SignUpInput) (*service.AuthUser, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, in)
	}
	return nil, nil
}

func (m *MockAuth) SignIn(ctx context.Context, email, password string) (*service.AuthUser, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockAuth) SignOut(ctx context.Context, token string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, token)
	}
	return nil
}

func (m *MockAuth) GetCurrentUser(ctx context.Context, token string) (*service.AuthUser, error) {
	if m.GetCurrentUserFunc != nil {
		return m.GetCurrentUserFunc(ctx, token)
	}
	return nil, nil
}

func user(email, token string) *service.AuthUser {
	return &service.AuthUser{ID: uuid.New(), Email: email, AccessToken: token}
}

func TestStore_SignInSignOut(t *testing.T) {
	var signedOut string
	auth := &MockAuth{
		SignInFunc: func(ctx context.Context, email, password string) (*service.AuthUser, error) {
			return user(email, "tok-1"), nil
		},
		SignOutFunc: func(ctx context.Context, token string) error {
			signedOut = token
			return nil
		},
	}
	s := authstore.New(auth)

	var seen []authstore.State
	unsubscribe := s.Subscribe(func(st authstore.State) { seen = append(seen, st) })

	if err := s.SignIn(context.Background(), "a@b.co", "secret1"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	st := s.Snapshot()
	if !st.IsAuthenticated || st.IsLoading || st.User == nil || st.User.Email != "a@b.co" {
		t.Fatalf("unexpected state after sign in: %+v", st)
	}
	if len(seen) != 2 || !seen[0].IsLoading || seen[1].IsLoading {
		t.Fatalf("expected loading then loaded notifications, got %+v", seen)
	}

	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if signedOut != "tok-1" {
		t.Fatalf("sign out used token %q", signedOut)
	}
	st = s.Snapshot()
	if st.IsAuthenticated || st.User != nil {
		t.Fatalf("unexpected state after sign out: %+v", st)
	}

	unsubscribe()
	s.ClearError()
	if len(seen) != 4 {
		t.Fatalf("listener called after unsubscribe: %d notifications", len(seen))
	}
}

func TestStore_FailureKeepsUser(t *testing.T) {
	auth := &MockAuth{
		SignInFunc: func(ctx context.Context, email, password string) (*service.AuthUser, error) {
			return nil, service.ErrInvalidCredentials
		},
		SignOutFunc: func(ctx context.Context, token string) error {
			return service.ErrNetwork
		},
	}
	s := authstore.New(auth)
	s.SetUser(user("keep@b.co", "tok"))

	if err := s.SignIn(context.Background(), "x@b.co", "bad"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	st := s.Snapshot()
	if st.Error != service.ErrInvalidCredentials.Error() || st.IsLoading {
		t.Fatalf("unexpected error state: %+v", st)
	}
	if st.User == nil || st.User.Email != "keep@b.co" || !st.IsAuthenticated {
		t.Fatalf("failed action must keep the user: %+v", st)
	}

	if err := s.SignOut(context.Background()); !errors.Is(err, service.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if s.Snapshot().User == nil {
		t.Fatalf("failed sign out must keep the user")
	}

	s.ClearError()
	if s.Snapshot().Error != "" {
		t.Fatalf("ClearError did not clear")
	}
}

func TestStore_GetCurrentUser(t *testing.T) {
	auth := &MockAuth{
		GetCurrentUserFunc: func(ctx context.Context, token string) (*service.AuthUser, error) {
			if token != "tok" {
				return nil, service.ErrInvalidToken
			}
			u := user("fresh@b.co", token)
			return u, nil
		},
	}
	s := authstore.New(auth)

	// without a token there is nobody to refresh
	if err := s.GetCurrentUser(context.Background()); err != nil {
		t.Fatalf("GetCurrentUser without token: %v", err)
	}
	if st := s.Snapshot(); st.IsAuthenticated || st.IsLoading {
		t.Fatalf("unexpected state: %+v", st)
	}

	s.SetUser(user("stale@b.co", "tok"))
	if err := s.GetCurrentUser(context.Background()); err != nil {
		t.Fatalf("GetCurrentUser: %v", err)
	}
	if st := s.Snapshot(); st.User.Email != "fresh@b.co" {
		t.Fatalf("user not refreshed: %+v", st.User)
	}
}

func TestStore_LatestActionWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	auth := &MockAuth{
		SignInFunc: func(ctx context.Context, email, password string) (*service.AuthUser, error) {
			if email == "slow@b.co" {
				close(started)
				<-release
			}
			return user(email, "tok-"+email), nil
		},
	}
	s := authstore.New(auth)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.SignIn(context.Background(), "slow@b.co", "secret1")
	}()
	<-started

	if err := s.SignIn(context.Background(), "fast@b.co", "secret1"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	close(release)
	wg.Wait()

	st := s.Snapshot()
	if st.User == nil || st.User.Email != "fast@b.co" {
		t.Fatalf("stale result overwrote newer one: %+v", st.User)
	}
	if st.IsLoading {
		t.Fatalf("store left loading")
	}
}

func TestStore_SetUserSupersedesInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	auth := &MockAuth{
		SignUpFunc: func(ctx context.Context, in service.SignUpInput) (*service.AuthUser, error) {
			close(started)
			<-release
			return nil, errors.New("late failure")
		},
	}
	s := authstore.New(auth)

	done := make(chan error, 1)
	go func() { done <- s.SignUp(context.Background(), service.SignUpInput{Email: "n@b.co"}) }()
	<-started

	s.SetUser(user("manual@b.co", "tok"))
	close(release)
	if err := <-done; err == nil {
		t.Fatalf("expected the adapter error to be returned")
	}

	st := s.Snapshot()
	if st.Error != "" || st.User == nil || st.User.Email != "manual@b.co" {
		t.Fatalf("superseded action committed: %+v", st)
	}
}
