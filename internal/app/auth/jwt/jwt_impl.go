package jwt

import (
	"errors"
	"time"

	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/jwt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errEmptySecret = errors.New("jwt secret is empty")

type JwtUtilImpl struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTUtil takes the signing secret explicitly; it is read-only for the
// lifetime of the returned util. Rotating it invalidates every token issued
// under the old value.
func NewJWTUtil(secret []byte, issuer string) (*JwtUtilImpl, error) {
	if len(secret) == 0 {
		return nil, customErrors.WrapInternal(errEmptySecret, "NewJWTUtil")
	}
	key := make([]byte, len(secret))
	copy(key, secret)

	return &JwtUtilImpl{
		secret: key,
		ttl:    jwt2.SessionTTL,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

func (j *JwtUtilImpl) Issue(userID, email string) (token string, exp time.Time, jti string, err error) {
	jti = uuid.NewString()
	now := j.now()

	claims := jwt2.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			ID:        jti,
		},
		UserID: userID,
		Email:  email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign session token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

// Verify returns an error matching ErrInvalidToken for a bad signature, a
// malformed token and an expired one alike. The wrapped reason is for logs.
func (j *JwtUtilImpl) Verify(raw string) (jwt2.SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &jwt2.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, opts...)
	if err != nil {
		return jwt2.SessionClaims{}, customErrors.WrapInvalidToken(err)
	}
	if !token.Valid {
		return jwt2.SessionClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt2.SessionClaims)
	if !ok {
		return jwt2.SessionClaims{}, customErrors.WrapInternal(
			errors.New("claims not SessionClaims"), "Verify",
		)
	}
	if claims.UserID == "" || claims.ID == "" {
		return jwt2.SessionClaims{}, customErrors.WrapInvalidToken(errors.New("missing identity claims"))
	}

	return *claims, nil
}
