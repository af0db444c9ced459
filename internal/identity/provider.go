package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kasap-service/internal/hashing"
	"kasap-service/internal/models"
	"kasap-service/internal/producer"
	"kasap-service/internal/repository"
	"kasap-service/internal/service"
	"kasap-service/internal/util"

	"github.com/google/uuid"
	"github.com/nanorand/nanorand"
	"go.uber.org/zap"
)

const (
	minPasswordLength = 6
	resetCodeLength   = 6
	resetCodeTTL      = time.Hour
	resetCooldown     = time.Minute
	resetTemplate     = "reset_password"
)

// Provider is the built-in identity backend: accounts, bcrypt passwords,
// session-backed HS256 access tokens and e-mailed reset codes.
type Provider struct {
	users    repository.UserRepo
	sessions repository.SessionRepo
	resets   repository.PasswordResetRepo
	hasher   PasswordHasher
	tokens   TokenProvider
	limiter  RateLimiter   // nil falls back to the latest stored code
	mailer   EmailProducer // nil only logs the code

	accessTTL time.Duration
	now       func() time.Time
	log       *zap.Logger
}

var _ service.AuthProvider = (*Provider)(nil)

func NewProvider(
	repo *repository.Repository,
	hasher PasswordHasher,
	tokens TokenProvider,
	limiter RateLimiter,
	mailer EmailProducer,
	accessTTL time.Duration,
	log *zap.Logger,
) *Provider {
	return &Provider{
		users:     repo.Users,
		sessions:  repo.Sessions,
		resets:    repo.PasswordResets,
		hasher:    hasher,
		tokens:    tokens,
		limiter:   limiter,
		mailer:    mailer,
		accessTTL: accessTTL,
		now:       time.Now,
		log:       log,
	}
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") {
		return &service.ValidationError{Field: "email", Reason: "invalid email address"}
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &service.ValidationError{Field: "password", Reason: "password must be at least 6 characters"}
	}
	if len(password) > hashing.MaxPasswordBytes {
		return &service.ValidationError{Field: "password", Reason: "password must be at most 72 bytes"}
	}
	return nil
}

func toIdentity(u *models.User) *service.Identity {
	return &service.Identity{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*service.Identity, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	exists, err := p.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, service.ErrEmailExists
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	u := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return toIdentity(u), nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !p.hasher.Compare(u.PasswordHash, password) {
		return nil, service.ErrInvalidCredentials
	}
	if p.hasher.NeedsRehash(u.PasswordHash) {
		p.upgradeHash(ctx, u, password)
	}

	now := p.now().UTC()
	sess := &models.UserSession{
		ID:        uuid.New(),
		UserID:    u.ID,
		ExpiresAt: now.Add(p.accessTTL),
		CreatedAt: now,
	}
	if err := p.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	access, exp, err := p.tokens.SignAccess(ctx, u.ID, sess.ID, string(u.Role), p.accessTTL)
	if err != nil {
		return nil, err
	}
	return &service.Session{AccessToken: access, ExpiresAt: exp, Identity: *toIdentity(u)}, nil
}

// upgradeHash re-hashes a password stored at an outdated cost. Failure is
// logged only; the old hash keeps working.
func (p *Provider) upgradeHash(ctx context.Context, u *models.User, password string) {
	hash, err := p.hasher.Hash(password)
	if err == nil {
		err = p.users.UpdatePassword(ctx, u.ID, hash)
	}
	if err != nil {
		p.log.Warn("password rehash failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return
	}
	u.PasswordHash = hash
}

func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.tokens.ParseAndValidateAccess(ctx, accessToken)
	if err != nil {
		return service.ErrInvalidToken
	}
	// Already revoked sessions sign out silently.
	if _, err := p.sessions.Revoke(ctx, claims.SessionID); err != nil {
		return err
	}
	return nil
}

func (p *Provider) GetSession(ctx context.Context, accessToken string) (*service.Session, error) {
	claims, err := p.tokens.ParseAndValidateAccess(ctx, accessToken)
	if err != nil {
		return nil, service.ErrInvalidToken
	}
	sess, err := p.sessions.GetActive(ctx, claims.SessionID, p.now())
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != claims.UserID {
		return nil, service.ErrInvalidToken
	}
	u, err := p.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, service.ErrInvalidToken
	}
	return &service.Session{AccessToken: accessToken, ExpiresAt: claims.Exp, Identity: *toIdentity(u)}, nil
}

func (p *Provider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return &service.ValidationError{Field: "email", Reason: "invalid email address"}
	}

	if p.limiter != nil {
		// unknown addresses consume the window too
		ok, err := p.limiter.AcquireCooldown(ctx, "password_reset:"+email, resetCooldown)
		if err != nil {
			return err
		}
		if !ok {
			return service.ErrTooManyRequests
		}
	}

	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	if p.limiter == nil {
		latest, err := p.resets.FindLatestByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		if latest != nil && p.now().Sub(latest.CreatedAt) < resetCooldown {
			return service.ErrTooManyRequests
		}
	}

	code, err := nanorand.Gen(resetCodeLength)
	if err != nil {
		return err
	}

	now := p.now().UTC()
	reset := &models.PasswordResetToken{
		UserID:    u.ID,
		Email:     u.Email,
		CodeHash:  util.Sha256Base64URL(code),
		ExpiresAt: now.Add(resetCodeTTL),
		CreatedAt: now,
	}
	if err := p.resets.Create(ctx, reset); err != nil {
		return err
	}

	if p.mailer == nil {
		p.log.Info("password reset code issued", zap.String("email", email), zap.String("code", code))
		return nil
	}
	msg := producer.EmailMessage{
		To:       u.Email,
		Subject:  "KasapApp password reset",
		Template: resetTemplate,
		Data: map[string]any{
			"code":     code,
			"redirect": redirectTo,
		},
	}
	if err := p.mailer.SendEmail(ctx, u.ID.String(), msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (p *Provider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	reset, err := p.resets.GetValidByHash(ctx, util.Sha256Base64URL(strings.TrimSpace(code)), p.now())
	if err != nil {
		return err
	}
	if reset == nil {
		return service.ErrInvalidResetCode
	}

	ok, err := p.resets.Consume(ctx, reset.ID)
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrInvalidResetCode
	}

	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := p.users.UpdatePassword(ctx, reset.UserID, hash); err != nil {
		return err
	}

	if _, err := p.sessions.RevokeAllByUser(ctx, reset.UserID); err != nil {
		p.log.Warn("revoke sessions after reset failed", zap.String("user_id", reset.UserID.String()), zap.Error(err))
	}
	if _, err := p.resets.DeleteAllForUser(ctx, reset.UserID); err != nil {
		p.log.Warn("delete reset codes failed", zap.String("user_id", reset.UserID.String()), zap.Error(err))
	}
	return nil
}

func (p *Provider) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := p.sessions.RevokeAllByUser(ctx, id); err != nil {
		return err
	}
	if _, err := p.resets.DeleteAllForUser(ctx, id); err != nil {
		return err
	}
	return p.users.Delete(ctx, id)
}
