package token_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"kasap-service/internal/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestHSProvider_RoundTrip(t *testing.T) {
	p := token.NewHSProvider("secret", "kasap-service", "kasap-app")
	ctx := context.Background()
	sub, sid := uuid.New(), uuid.New()

	signed, exp, err := p.SignAccess(ctx, sub, sid, "butcher", 10*time.Minute)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := p.ParseAndValidateAccess(ctx, signed)
	if err != nil {
		t.Fatalf("ParseAndValidateAccess: %v", err)
	}
	if claims.UserID != sub || claims.SessionID != sid || claims.Role != "butcher" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestHSProvider_Rejects(t *testing.T) {
	ctx := context.Background()
	p := token.NewHSProvider("secret", "kasap-service", "kasap-app")

	expired, _, err := p.SignAccess(ctx, uuid.New(), uuid.New(), "customer", -time.Minute)
	if err != nil {
		t.Fatalf("SignAccess: %v", err)
	}
	if _, err := p.ParseAndValidateAccess(ctx, expired); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}

	other := token.NewHSProvider("other-secret", "kasap-service", "kasap-app")
	foreign, _, _ := other.SignAccess(ctx, uuid.New(), uuid.New(), "customer", time.Minute)
	if _, err := p.ParseAndValidateAccess(ctx, foreign); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected wrong signature to fail, got %v", err)
	}

	wrongAud := token.NewHSProvider("secret", "kasap-service", "admin-panel")
	aud, _, _ := wrongAud.SignAccess(ctx, uuid.New(), uuid.New(), "customer", time.Minute)
	if _, err := p.ParseAndValidateAccess(ctx, aud); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected wrong audience to fail, got %v", err)
	}

	if _, err := p.ParseAndValidateAccess(ctx, "not.a.jwt"); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected garbage to fail, got %v", err)
	}
}

func TestHSProvider_RejectsOtherAlgorithms(t *testing.T) {
	p := token.NewHSProvider("secret", "kasap-service", "kasap-app")
	claims := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"jti":  uuid.NewString(),
		"iss":  "kasap-service",
		"aud":  "kasap-app",
		"role": "admin",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := p.ParseAndValidateAccess(context.Background(), signed); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}

	delete(claims, "exp")
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if _, err := p.ParseAndValidateAccess(context.Background(), noExp); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected token without exp to be rejected, got %v", err)
	}
}
