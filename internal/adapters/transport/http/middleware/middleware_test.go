package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/jwt"
	"github.com/Miraines/MindHaven/auth-service/internal/infra/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

type authStub struct {
	want string
	err  error
}

func (a authStub) Authenticate(_ context.Context, token string) (jwt.SessionClaims, error) {
	if a.err != nil {
		return jwt.SessionClaims{}, a.err
	}
	if token != a.want {
		return jwt.SessionClaims{}, customErrors.ErrInvalidToken
	}
	return jwt.SessionClaims{UserID: "u1", Email: "a@x.com"}, nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	r := gin.New()
	r.GET("/p", RequireSession(authStub{want: "good"}, zap.NewNop()), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, claims.UserID)
	})

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "u1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "bearer good")
	require.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	w = serve(r, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestRequireSession_InternalError(t *testing.T) {
	r := gin.New()
	r.GET("/p", RequireSession(authStub{err: customErrors.WrapInternal(errors.New("redis down"), "IsRevoked")}, zap.NewNop()),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/p", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "redis")
}

func TestClaimsFrom_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ClaimsFrom(c)
	require.False(t, ok)
}

func TestHTTPRateLimitPerIP(t *testing.T) {
	limiter := ratelimit.NewPerKey(1, 1, 100, time.Hour)

	r := gin.New()
	r.Use(NewHTTPRateLimitPerIP(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func(addr string) int {
		rq := httptest.NewRequest(http.MethodGet, "/", nil)
		rq.RemoteAddr = addr
		return serve(r, rq).Code
	}

	require.Equal(t, http.StatusOK, req("1.2.3.4:12345"))
	require.Equal(t, http.StatusTooManyRequests, req("1.2.3.4:54321"))
	require.Equal(t, http.StatusOK, req("10.0.0.1:1111"))
}

func TestRequestLogger_RedactsCredentials(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "secret-cookie"})
	serve(r, req)

	incoming := logs.FilterMessage("incoming request").All()
	require.Len(t, incoming, 1)
	hdr, ok := incoming[0].ContextMap()["hdr"].(string)
	require.True(t, ok)
	require.NotContains(t, hdr, "secret-token")
	require.NotContains(t, hdr, "secret-cookie")
	require.Contains(t, hdr, "[redacted]")

	require.Equal(t, 1, logs.FilterMessage("completed").Len())
}
