package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kasap-service/internal/middleware"
	"kasap-service/internal/models"
	"kasap-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type resolverFunc func(ctx context.Context, token string) (*service.AuthUser, error)

func (f resolverFunc) GetCurrentUser(ctx context.Context, token string) (*service.AuthUser, error) {
	return f(ctx, token)
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{`Bearer "abc.def"`, "abc.def", true},
		{"Bearer abc, extra", "abc", true},
		{"Bearer abc trailing", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := middleware.ExtractBearerToken(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func newEngine(resolver middleware.SessionResolver, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := []gin.HandlerFunc{middleware.AuthRequired(resolver, zap.NewNop())}
	if len(roles) > 0 {
		chain = append(chain, middleware.RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		uid, _ := service.UserIDFromContext(c.Request.Context())
		c.String(http.StatusOK, uid.String())
	})
	r.GET("/p", chain...)
	return r
}

func do(r *gin.Engine, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	userID := uuid.New()
	resolver := resolverFunc(func(ctx context.Context, token string) (*service.AuthUser, error) {
		switch token {
		case "good":
			return &service.AuthUser{ID: userID, Role: models.RoleCustomer}, nil
		case "down":
			return nil, errors.Join(service.ErrNetwork, errors.New("dial"))
		default:
			return nil, service.ErrInvalidToken
		}
	})
	r := newEngine(resolver)

	w := do(r, "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer bad").Code)
	assert.Equal(t, http.StatusBadGateway, do(r, "Bearer down").Code)
}

func TestRequireRole(t *testing.T) {
	resolver := resolverFunc(func(ctx context.Context, token string) (*service.AuthUser, error) {
		role := models.Role(token)
		return &service.AuthUser{ID: uuid.New(), Role: role}, nil
	})
	r := newEngine(resolver, models.RoleButcher, models.RoleAdmin)

	assert.Equal(t, http.StatusOK, do(r, "Bearer butcher").Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer admin").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer customer").Code)
}
