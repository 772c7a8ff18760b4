package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed lifetime of a session token.
const SessionTTL = 7 * 24 * time.Hour

// SessionClaims are readable by anyone holding the token; only the signature
// protects them.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
}

type TokenIssuer interface {
	Issue(userID, email string) (token string, exp time.Time, jti string, err error)
	Verify(token string) (SessionClaims, error)
}
