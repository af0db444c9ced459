package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"kasap-service/internal/dto"
	"kasap-service/internal/models"
	"kasap-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys for user info
const (
	CtxUserID      = "user_id"
	CtxUserRole    = "user_role"
	CtxAccessToken = "access_token"
)

// SessionResolver resolves an access token to the signed-in user.
type SessionResolver interface {
	GetCurrentUser(ctx context.Context, accessToken string) (*service.AuthUser, error)
}

// AuthRequired validates the Bearer token and puts the user into both the
// gin context and the request context.
func AuthRequired(auth SessionResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := bearerFromRequest(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError(problem))
			return
		}

		user, err := auth.GetCurrentUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrNetwork) {
				log.Error("session lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadGateway, dto.NewBadGatewayError("session lookup failed"))
				return
			}
			if !errors.Is(err, service.ErrInvalidToken) {
				log.Warn("session lookup failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}

		ctx := service.WithUserID(c.Request.Context(), user.ID)
		ctx = service.WithRole(ctx, user.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Set(CtxUserID, user.ID.String())
		c.Set(CtxUserRole, string(user.Role))
		c.Set(CtxAccessToken, token)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
// Must run after AuthRequired.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := service.RoleFromContext(c.Request.Context())
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("insufficient role"))
	}
}

// bearerFromRequest returns the token, or a reason why there is none.
func bearerFromRequest(c *gin.Context) (token, problem string) {
	authz := c.GetHeader("Authorization")
	if authz == "" {
		return "", "missing Authorization header"
	}
	token, ok := ExtractBearerToken(authz)
	switch {
	case !ok:
		return "", "Authorization header is not a Bearer token"
	case token == "":
		return "", "empty token"
	}
	return token, ""
}

// ExtractBearerToken pulls the token out of an Authorization header and
// tolerates stray quotes or trailing garbage. Accepted forms:
//   - "Bearer abc.def.ghi"
//   - "Bearer \"abc.def.ghi\""
//   - "Bearer abc.def.ghi, extra"
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(parts[1]), " \"'")
	if i := strings.IndexRune(t, ','); i >= 0 {
		t = strings.Trim(strings.TrimSpace(t[:i]), " \"'")
	}
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = strings.Trim(strings.TrimSpace(t[:i]), " \"'")
	}
	return t, true
}
