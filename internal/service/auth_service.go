package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kasap-service/internal/models"
	"kasap-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type authService struct {
	provider AuthProvider
	repo     *repository.Repository
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(provider AuthProvider, repo *repository.Repository, log *zap.Logger) AuthService {
	return &authService{
		provider: provider,
		repo:     repo,
		log:      log,
		now:      time.Now,
	}
}

// providerErr keeps the provider's typed errors and classifies anything
// else as a network failure.
func providerErr(err error) error {
	for _, known := range []error{
		ErrInvalidCredentials, ErrEmailExists, ErrInvalidToken,
		ErrTooManyRequests, ErrInvalidResetCode, ErrValidation,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

func (s *authService) SignUp(ctx context.Context, in SignUpInput) (*AuthUser, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" {
		return nil, invalid("first_name", "first name is required")
	}
	if last == "" {
		return nil, invalid("last_name", "last name is required")
	}
	lang := models.LanguageTurkish
	if in.Language != nil {
		if !in.Language.Valid() {
			return nil, invalid("language", "unsupported language")
		}
		lang = *in.Language
	}

	ident, err := s.provider.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		return nil, providerErr(err)
	}

	now := s.now().UTC()
	profile := &models.UserProfile{
		UserID:                  ident.ID,
		FirstName:               first,
		LastName:                last,
		Phone:                   in.Phone,
		Language:                lang,
		NotificationPreferences: datatypes.NewJSONType(models.DefaultNotificationPreferences()),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.repo.Profiles.Create(ctx, profile); err != nil {
		if derr := s.provider.DeleteUser(ctx, ident.ID); derr != nil {
			s.log.Error("rollback of identity after profile failure failed",
				zap.String("user_id", ident.ID.String()), zap.Error(derr))
		}
		return nil, persistErr("create profile", err)
	}

	user := &AuthUser{
		ID:      ident.ID,
		Email:   ident.Email,
		Role:    models.Role(ident.Role),
		Profile: profile,
	}

	sess, err := s.provider.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		s.log.Warn("sign in after sign up failed", zap.String("user_id", ident.ID.String()), zap.Error(err))
		return user, nil
	}
	user.AccessToken = sess.AccessToken
	user.ExpiresAt = &sess.ExpiresAt
	return user, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*AuthUser, error) {
	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, providerErr(err)
	}
	return s.withProfile(ctx, sess)
}

func (s *authService) SignOut(ctx context.Context, accessToken string) error {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		return providerErr(err)
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrInvalidToken
	}
	sess, err := s.provider.GetSession(ctx, accessToken)
	if err != nil {
		return nil, providerErr(err)
	}
	return s.withProfile(ctx, sess)
}

func (s *authService) withProfile(ctx context.Context, sess *Session) (*AuthUser, error) {
	profile, err := s.repo.Profiles.GetByUserID(ctx, sess.Identity.ID)
	if err != nil {
		return nil, fetchErr("get profile", err)
	}
	exp := sess.ExpiresAt
	return &AuthUser{
		ID:          sess.Identity.ID,
		Email:       sess.Identity.Email,
		Role:        models.Role(sess.Identity.Role),
		Profile:     profile,
		AccessToken: sess.AccessToken,
		ExpiresAt:   &exp,
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, email string) error {
	if err := s.provider.ResetPasswordForEmail(ctx, email, PasswordResetRedirect); err != nil {
		return providerErr(err)
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	if strings.TrimSpace(code) == "" {
		return invalid("code", "reset code is required")
	}
	if err := s.provider.ConfirmPasswordReset(ctx, code, newPassword); err != nil {
		return providerErr(err)
	}
	return nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.UserProfile, error) {
	fields := map[string]any{}
	if upd.FirstName != nil {
		v := strings.TrimSpace(*upd.FirstName)
		if v == "" {
			return nil, invalid("first_name", "first name cannot be empty")
		}
		fields["first_name"] = v
	}
	if upd.LastName != nil {
		v := strings.TrimSpace(*upd.LastName)
		if v == "" {
			return nil, invalid("last_name", "last name cannot be empty")
		}
		fields["last_name"] = v
	}
	if upd.Phone != nil {
		fields["phone"] = *upd.Phone
	}
	if upd.Language != nil {
		if !upd.Language.Valid() {
			return nil, invalid("language", "unsupported language")
		}
		fields["language"] = *upd.Language
	}
	if upd.AvatarURL != nil {
		fields["avatar_url"] = *upd.AvatarURL
	}
	if upd.NotificationPreferences != nil {
		fields["notification_preferences"] = datatypes.NewJSONType(*upd.NotificationPreferences)
	}
	if len(fields) > 0 {
		fields["updated_at"] = s.now().UTC()
	}

	ok, err := s.repo.Profiles.Update(ctx, userID, fields)
	if err != nil {
		return nil, persistErr("update profile", err)
	}
	if !ok {
		return nil, notFound("profile", userID)
	}

	profile, err := s.repo.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fetchErr("get profile", err)
	}
	if profile == nil {
		return nil, notFound("profile", userID)
	}
	return profile, nil
}
