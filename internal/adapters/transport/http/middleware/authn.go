package middleware

import (
	"context"
	"net/http"
	"strings"

	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/jwt"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "token"

const claimsKey = "auth.claims"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (jwt.SessionClaims, error)
}

// TokenFrom returns the session token from the cookie, or from an
// "Authorization: Bearer" header when there is no cookie.
func TokenFrom(c *gin.Context) string {
	if tok, err := c.Cookie(SessionCookie); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireSession rejects requests without a valid, unrevoked session and
// stores the claims for ClaimsFrom.
func RequireSession(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := auth.Authenticate(c.Request.Context(), TokenFrom(c))
		switch {
		case err == nil:
			c.Set(claimsKey, claims)
			c.Next()
		case customErrors.IsInvalidToken(err):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		default:
			log.Error("authenticate", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
	}
}

func ClaimsFrom(c *gin.Context) (jwt.SessionClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return jwt.SessionClaims{}, false
	}
	claims, ok := v.(jwt.SessionClaims)
	return claims, ok
}
