package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"kasap-service/internal/models"
	"kasap-service/internal/repository"
	"kasap-service/internal/service"
	"kasap-service/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T, p *MockAuthProvider) (service.AuthService, *repository.Repository) {
	t.Helper()
	repo := repository.New(testutil.SetupTestSQLite(t))
	return service.NewAuthService(p, repo, zap.NewNop()), repo
}

func signUpInput() service.SignUpInput {
	return service.SignUpInput{
		Email:     "ayse@example.com",
		Password:  "secret1",
		FirstName: " Ayse ",
		LastName:  "Kaya",
	}
}

func TestAuthService_SignUp_Success(t *testing.T) {
	userID := uuid.New()
	exp := time.Now().Add(time.Hour)
	p := &MockAuthProvider{
		SignUpFunc: func(ctx context.Context, email, password string) (*service.Identity, error) {
			return &service.Identity{ID: userID, Email: email, Role: "customer"}, nil
		},
		SignInFunc: func(ctx context.Context, email, password string) (*service.Session, error) {
			return &service.Session{AccessToken: "tok", ExpiresAt: exp, Identity: service.Identity{ID: userID, Email: email}}, nil
		},
	}
	svc, repo := newAuthService(t, p)

	u, err := svc.SignUp(context.Background(), signUpInput())
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.ID != userID || u.AccessToken != "tok" || u.ExpiresAt == nil || u.Role != models.RoleCustomer {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Profile == nil || u.Profile.FirstName != "Ayse" || u.Profile.Language != models.LanguageTurkish {
		t.Fatalf("unexpected profile: %+v", u.Profile)
	}

	stored, err := repo.Profiles.GetByUserID(context.Background(), userID)
	if err != nil || stored == nil {
		t.Fatalf("profile not stored: %v", err)
	}
	if prefs := stored.NotificationPreferences.Data(); prefs != models.DefaultNotificationPreferences() {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	called := false
	p := &MockAuthProvider{
		SignUpFunc: func(ctx context.Context, email, password string) (*service.Identity, error) {
			called = true
			return nil, nil
		},
	}
	svc, _ := newAuthService(t, p)

	in := signUpInput()
	in.FirstName = "   "
	if _, err := svc.SignUp(context.Background(), in); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	in = signUpInput()
	lang := models.Language("de")
	in.Language = &lang
	if _, err := svc.SignUp(context.Background(), in); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for language, got %v", err)
	}
	if called {
		t.Fatalf("provider must not be called for invalid input")
	}
}

func TestAuthService_SignUp_ProfileFailureRollsBack(t *testing.T) {
	userID := uuid.New()
	var deleted uuid.UUID
	p := &MockAuthProvider{
		SignUpFunc: func(ctx context.Context, email, password string) (*service.Identity, error) {
			return &service.Identity{ID: userID, Email: email, Role: "customer"}, nil
		},
		DeleteUserFunc: func(ctx context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	svc, repo := newAuthService(t, p)

	// a profile for the same user makes the insert fail on the unique index
	now := time.Now().UTC()
	if err := repo.Profiles.Create(context.Background(), &models.UserProfile{UserID: userID, FirstName: "x", LastName: "y", Language: models.LanguageEnglish, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	_, err := svc.SignUp(context.Background(), signUpInput())
	if !errors.Is(err, service.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if deleted != userID {
		t.Fatalf("identity was not rolled back")
	}
}

func TestAuthService_SignUp_SignInFailureStillReturnsUser(t *testing.T) {
	p := &MockAuthProvider{
		SignUpFunc: func(ctx context.Context, email, password string) (*service.Identity, error) {
			return &service.Identity{ID: uuid.New(), Email: email, Role: "customer"}, nil
		},
		SignInFunc: func(ctx context.Context, email, password string) (*service.Session, error) {
			return nil, errors.New("timeout")
		},
	}
	svc, _ := newAuthService(t, p)

	u, err := svc.SignUp(context.Background(), signUpInput())
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if u.AccessToken != "" || u.ExpiresAt != nil || u.Profile == nil {
		t.Fatalf("expected user without session, got %+v", u)
	}
}

func TestAuthService_ProviderErrors(t *testing.T) {
	p := &MockAuthProvider{
		SignUpFunc: func(ctx context.Context, email, password string) (*service.Identity, error) {
			return nil, service.ErrEmailExists
		},
		SignInFunc: func(ctx context.Context, email, password string) (*service.Session, error) {
			return nil, errors.New("dial tcp: connection refused")
		},
		ResetPasswordForEmailFunc: func(ctx context.Context, email, redirectTo string) error {
			if redirectTo != service.PasswordResetRedirect {
				t.Errorf("unexpected redirect %q", redirectTo)
			}
			return service.ErrTooManyRequests
		},
		ConfirmPasswordResetFunc: func(ctx context.Context, code, newPassword string) error {
			return service.ErrInvalidResetCode
		},
	}
	svc, _ := newAuthService(t, p)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, signUpInput()); !errors.Is(err, service.ErrEmailExists) || errors.Is(err, service.ErrNetwork) {
		t.Fatalf("expected email exists, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "a@b.c", "x"); !errors.Is(err, service.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "a@b.c"); !errors.Is(err, service.ErrTooManyRequests) {
		t.Fatalf("expected too many requests, got %v", err)
	}
	if err := svc.ConfirmPasswordReset(ctx, "123456", "newpass"); !errors.Is(err, service.ErrInvalidResetCode) {
		t.Fatalf("expected invalid reset code, got %v", err)
	}
	if err := svc.ConfirmPasswordReset(ctx, " ", "newpass"); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for empty code, got %v", err)
	}
}

func TestAuthService_SessionLookups(t *testing.T) {
	userID := uuid.New()
	exp := time.Now().Add(time.Hour)
	p := &MockAuthProvider{
		GetSessionFunc: func(ctx context.Context, token string) (*service.Session, error) {
			if token != "good" {
				return nil, service.ErrInvalidToken
			}
			return &service.Session{AccessToken: token, ExpiresAt: exp, Identity: service.Identity{ID: userID, Email: "u@x.io", Role: "butcher"}}, nil
		},
		SignOutFunc: func(ctx context.Context, token string) error { return nil },
	}
	svc, _ := newAuthService(t, p)
	ctx := context.Background()

	u, err := svc.GetCurrentUser(ctx, "good")
	if err != nil {
		t.Fatalf("GetCurrentUser: %v", err)
	}
	if u.Role != models.RoleButcher || u.Profile != nil {
		t.Fatalf("unexpected user: %+v", u)
	}
	if _, err := svc.GetCurrentUser(ctx, "bad"); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := svc.GetCurrentUser(ctx, ""); !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected invalid token for empty token, got %v", err)
	}
	if err := svc.SignOut(ctx, "good"); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	userID := uuid.New()
	p := &MockAuthProvider{
		SignUpFunc: func(ctx context.Context, email, password string) (*service.Identity, error) {
			return &service.Identity{ID: userID, Email: email, Role: "customer"}, nil
		},
		SignInFunc: func(ctx context.Context, email, password string) (*service.Session, error) {
			return &service.Session{AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour), Identity: service.Identity{ID: userID}}, nil
		},
	}
	svc, _ := newAuthService(t, p)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, signUpInput()); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	lang := models.LanguageArabic
	prefs := models.DefaultNotificationPreferences()
	prefs.MediaUpdates = false
	got, err := svc.UpdateProfile(ctx, userID, service.ProfileUpdate{
		LastName:                ptr(" Demir "),
		Language:                &lang,
		NotificationPreferences: &prefs,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.FirstName != "Ayse" || got.LastName != "Demir" || got.Language != models.LanguageArabic {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if got.NotificationPreferences.Data().MediaUpdates {
		t.Fatalf("preferences not updated")
	}

	// an empty update returns the profile unchanged
	same, err := svc.UpdateProfile(ctx, userID, service.ProfileUpdate{})
	if err != nil || same.LastName != "Demir" {
		t.Fatalf("empty update: %+v err=%v", same, err)
	}

	if _, err := svc.UpdateProfile(ctx, userID, service.ProfileUpdate{FirstName: ptr("  ")}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	bad := models.Language("fr")
	if _, err := svc.UpdateProfile(ctx, userID, service.ProfileUpdate{Language: &bad}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for language, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, uuid.New(), service.ProfileUpdate{LastName: ptr("X")}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
