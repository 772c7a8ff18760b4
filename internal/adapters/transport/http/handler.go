package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Miraines/MindHaven/auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MindHaven/auth-service/internal/adapters/transport/http/middleware"
	appsvc "github.com/Miraines/MindHaven/auth-service/internal/app/auth/service"
	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/jwt"
	lg "github.com/Miraines/MindHaven/auth-service/internal/infra/log"
	"github.com/Miraines/MindHaven/auth-service/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgSignupOK       = "User created successfully"
	msgSignupMissing  = "Missing required fields"
	msgDuplicateEmail = "User with this email already exists"
	msgLoginOK        = "Login successful"
	msgLoginMissing   = "Missing email or password"
	msgBadCredentials = "Invalid credentials"
	msgLogoutOK       = "Logged out"
	msgBadBody        = "Invalid request body"
	msgInternal       = "Internal Server Error"
	msgUnauthorized   = "Unauthorized"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// CookieOptions controls the attributes of the session cookie. Secure should
// be on in production.
type CookieOptions struct {
	Domain string
	Secure bool
}

type Handler struct {
	svc    appsvc.Service
	store  Pinger
	cookie CookieOptions
	log    *zap.Logger
}

func NewHandler(svc appsvc.Service, store Pinger, cookie CookieOptions, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, store: store, cookie: cookie, log: log}
}

func (h *Handler) Signup(c *gin.Context) {
	var body dto.SignupDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Debug("/signup bind error", zap.Error(err))
		metrics.Observe(metrics.OpSignup, metrics.ResultBadRequest)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msgBadBody})
		return
	}
	h.log.Info("/signup", lg.Fingerprint(body.Email))

	if _, err := h.svc.Signup(c.Request.Context(), body); err != nil {
		h.handleError(c, metrics.OpSignup, err, msgSignupMissing)
		return
	}

	metrics.Observe(metrics.OpSignup, metrics.ResultOK)
	c.JSON(http.StatusCreated, dto.MessageResponse{Message: msgSignupOK})
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Debug("/login bind error", zap.Error(err))
		metrics.Observe(metrics.OpLogin, metrics.ResultBadRequest)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msgBadBody})
		return
	}
	h.log.Info("/login", lg.Fingerprint(body.Email))

	previous := middleware.TokenFrom(c)

	session, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, metrics.OpLogin, err, msgLoginMissing)
		return
	}

	// One live token per client: the one being replaced is revoked.
	if previous != "" && previous != session.Token {
		if err := h.svc.Logout(c.Request.Context(), previous); err != nil && !customErrors.IsInvalidToken(err) {
			h.log.Warn("revoke replaced token", zap.Error(err))
		}
	}

	h.setSessionCookie(c, session.Token, int(jwt.SessionTTL/time.Second))
	metrics.Observe(metrics.OpLogin, metrics.ResultOK)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msgLoginOK})
}

// Logout always succeeds for the client: the cookie is cleared even when the
// token was already invalid or could not be revoked.
func (h *Handler) Logout(c *gin.Context) {
	result := metrics.ResultOK
	if tok := middleware.TokenFrom(c); tok != "" {
		if err := h.svc.Logout(c.Request.Context(), tok); err != nil {
			switch {
			case customErrors.IsInvalidToken(err):
				result = metrics.ResultUnauthorized
			default:
				result = metrics.ResultError
				h.log.Error("/logout", zap.Error(err))
			}
		}
	}

	h.setSessionCookie(c, "", -1)
	metrics.Observe(metrics.OpLogout, result)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msgLogoutOK})
}

func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msgUnauthorized})
		return
	}
	c.JSON(http.StatusOK, dto.MeResponse{ID: claims.UserID, Email: claims.Email})
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("/health store ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online"})
}

// setSessionCookie writes the token cookie; a negative maxAge deletes it.
func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.SessionCookie,
		value,
		maxAge,
		"/",
		h.cookie.Domain,
		h.cookie.Secure,
		true, // httpOnly
	)
}

// handleError maps service errors onto responses. Internal detail is logged
// and never sent to the client.
func (h *Handler) handleError(c *gin.Context, op string, err error, missingMsg string) {
	switch {
	case customErrors.IsMissingFields(err):
		metrics.Observe(op, metrics.ResultBadRequest)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: missingMsg})
	case customErrors.IsInvalidArgument(err):
		metrics.Observe(op, metrics.ResultBadRequest)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case customErrors.IsInvalidCredentials(err):
		metrics.Observe(op, metrics.ResultUnauthorized)
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msgBadCredentials})
	case customErrors.IsInvalidToken(err):
		metrics.Observe(op, metrics.ResultUnauthorized)
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: msgUnauthorized})
	case customErrors.IsDuplicateEmail(err):
		metrics.Observe(op, metrics.ResultConflict)
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: msgDuplicateEmail})
	default:
		metrics.Observe(op, metrics.ResultError)
		h.log.Error(c.FullPath(), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: msgInternal})
	}
}
