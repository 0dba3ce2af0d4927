package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/production-portal-backend/internal/http/response"
	"github.com/yungbote/production-portal-backend/internal/platform/ctxutil"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
	"github.com/yungbote/production-portal-backend/internal/services"
)

var (
	errMissingToken    = errors.New("missing or invalid token")
	errAuthUnavailable = errors.New("authentication temporarily unavailable")
	errNoCaller        = errors.New("token does not identify a user")
)

type AuthMiddleware struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, auth services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), auth: auth}
}

// RequireAuth resolves the bearer token into the caller on the request
// context. Bad tokens are 401; a failing token backend is 503.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errMissingToken)
			return
		}
		ctx, err := am.auth.SetContextFromToken(c.Request.Context(), token)
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
			return
		case err != nil:
			am.log.Error("token verification failed", "error", err)
			response.RespondError(c, http.StatusServiceUnavailable, "retryable", errAuthUnavailable)
			return
		}
		if rd := ctxutil.GetRequestData(ctx); rd == nil || rd.UserID == uuid.Nil {
			response.RespondError(c, http.StatusForbidden, "forbidden", errNoCaller)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bearerToken accepts the scheme case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
