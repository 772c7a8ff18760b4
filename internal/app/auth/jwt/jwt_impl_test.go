package jwt

import (
	"strings"
	"testing"
	"time"

	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/jwt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newUtil(t *testing.T, secret string) *JwtUtilImpl {
	t.Helper()
	util, err := NewJWTUtil([]byte(secret), "test")
	require.NoError(t, err)
	return util
}

func TestJWTUtil_IssueVerify(t *testing.T) {
	util := newUtil(t, "s3cret")

	token, exp, jti, err := util.Issue("user-1", "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, jti)
	require.WithinDuration(t, time.Now().Add(jwt2.SessionTTL), exp, 5*time.Second)

	claims, err := util.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, jti, claims.ID)
	require.NotNil(t, claims.IssuedAt)
}

func TestJWTUtil_EmptySecret(t *testing.T) {
	_, err := NewJWTUtil(nil, "test")
	require.True(t, customErrors.IsInternal(err))
}

func TestJWTUtil_Expired(t *testing.T) {
	util := newUtil(t, "s3cret")
	util.now = func() time.Time { return time.Now().Add(-jwt2.SessionTTL - time.Minute) }

	token, _, _, err := util.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	util.now = time.Now
	_, err = util.Verify(token)
	require.True(t, customErrors.IsInvalidToken(err))
	require.Contains(t, err.Error(), "expired")
}

func TestJWTUtil_ValidJustBeforeExpiry(t *testing.T) {
	util := newUtil(t, "s3cret")
	issuedAt := time.Now()
	util.now = func() time.Time { return issuedAt }

	token, _, _, err := util.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	util.now = func() time.Time { return issuedAt.Add(jwt2.SessionTTL - time.Second) }
	_, err = util.Verify(token)
	require.NoError(t, err)
}

func TestJWTUtil_TamperedSignature(t *testing.T) {
	util := newUtil(t, "s3cret")
	token, _, _, err := util.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	dot := strings.LastIndex(token, ".")
	sig := []byte(token[dot+1:])
	// flip the first signature character; the last one may only carry padding bits
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := token[:dot+1] + string(sig)

	_, err = util.Verify(tampered)
	require.True(t, customErrors.IsInvalidToken(err))
}

func TestJWTUtil_OtherSecret(t *testing.T) {
	token, _, _, err := newUtil(t, "one").Issue("user-1", "a@x.com")
	require.NoError(t, err)

	_, err = newUtil(t, "two").Verify(token)
	require.True(t, customErrors.IsInvalidToken(err))
}

func TestJWTUtil_Malformed(t *testing.T) {
	util := newUtil(t, "s3cret")
	for _, raw := range []string{"", "bad", "a.b.c"} {
		_, err := util.Verify(raw)
		require.True(t, customErrors.IsInvalidToken(err), raw)
	}
}

func TestJWTUtil_WrongIssuer(t *testing.T) {
	other, err := NewJWTUtil([]byte("s3cret"), "someone-else")
	require.NoError(t, err)
	token, _, _, err := other.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	_, err = newUtil(t, "s3cret").Verify(token)
	require.True(t, customErrors.IsInvalidToken(err))
}

func TestJWTUtil_InvalidAlg(t *testing.T) {
	util := newUtil(t, "s3cret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id":  "user-1",
		"jti": "x",
		"iss": "test",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = util.Verify(token)
	require.True(t, customErrors.IsInvalidToken(err))
}

func TestJWTUtil_MissingExpiry(t *testing.T) {
	util := newUtil(t, "s3cret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": "user-1", "jti": "x", "iss": "test",
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = util.Verify(token)
	require.True(t, customErrors.IsInvalidToken(err))
}

func TestJWTUtil_SecretCopied(t *testing.T) {
	secret := []byte("s3cret")
	util, err := NewJWTUtil(secret, "test")
	require.NoError(t, err)
	token, _, _, err := util.Issue("user-1", "a@x.com")
	require.NoError(t, err)

	secret[0] = 'X'
	_, err = util.Verify(token)
	require.NoError(t, err)
}
