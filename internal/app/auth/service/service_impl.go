package service

import (
	"context"
	"errors"
	"time"

	"github.com/Miraines/MindHaven/auth-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/jwt"
	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/model"
	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/password"
	repo "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type authService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.TokenRepo
	hasher    password.Hasher
	jwtUtil   jwt.TokenIssuer
	v         *validator.Validate
	log       *zap.Logger

	// dummyHash is verified against when the email is unknown so that both
	// login failures cost one hash comparison.
	dummyHash string
}

type Service interface {
	Signup(context.Context, dto.SignupDTO) (model.User, error)
	Login(context.Context, dto.LoginDTO) (model.Session, error)
	Authenticate(ctx context.Context, token string) (jwt.SessionClaims, error)
	Logout(ctx context.Context, token string) error
}

// New wires the service. tr may be nil, in which case tokens cannot be
// revoked before they expire.
func New(
	ur repo.UserRepo,
	tr repo.TokenRepo,
	h password.Hasher,
	jm jwt.TokenIssuer,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	if tr == nil {
		tr = noopTokenRepo{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	dummy, err := h.Hash("mindhaven-unknown-user")
	if err != nil {
		log.Warn("dummy hash unavailable, unknown-email logins return faster", zap.Error(err))
	}
	return &authService{
		userRepo: ur, tokenRepo: tr, hasher: h, jwtUtil: jm, v: v, log: log,
		dummyHash: dummy,
	}
}

func (a *authService) Signup(ctx context.Context, in dto.SignupDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, validationError(err)
	}

	// The lookup only buys a friendlier error; the store's unique index is
	// what actually guarantees one record per email.
	_, err := a.userRepo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return model.User{}, customErrors.ErrDuplicateEmail
	case !errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.WrapInternal(err, "Signup")
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Hash")
	}

	user, err := a.userRepo.Create(ctx, in.Name, in.Email, hash)
	if err != nil {
		if errors.Is(err, customErrors.ErrDuplicateEmail) {
			return model.User{}, customErrors.ErrDuplicateEmail
		}
		return model.User{}, customErrors.WrapInternal(err, "Create")
	}

	user.PasswordHash = ""
	return user, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.Session, error) {
	if err := a.v.Struct(in); err != nil {
		return model.Session{}, validationError(err)
	}

	user, err := a.userRepo.FindByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		a.hasher.Verify(in.Password, a.dummyHash)
		return model.Session{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.Session{}, customErrors.WrapInternal(err, "Login")
	}

	if !a.hasher.Verify(in.Password, user.PasswordHash) {
		return model.Session{}, customErrors.ErrInvalidCredentials
	}

	token, exp, jti, err := a.jwtUtil.Issue(user.ID, user.Email)
	if err != nil {
		return model.Session{}, customErrors.WrapInternal(err, "Issue")
	}

	return model.Session{
		Token:     token,
		ExpiresAt: exp,
		TTL:       time.Until(exp),
		UserID:    user.ID,
		JTI:       jti,
	}, nil
}

func (a *authService) Authenticate(ctx context.Context, token string) (jwt.SessionClaims, error) {
	if token == "" {
		return jwt.SessionClaims{}, customErrors.ErrInvalidToken
	}

	claims, err := a.jwtUtil.Verify(token)
	if err != nil {
		a.log.Debug("token rejected", zap.Error(err))
		return jwt.SessionClaims{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return jwt.SessionClaims{}, customErrors.WrapInternal(err, "IsRevoked")
	}
	if revoked {
		return jwt.SessionClaims{}, customErrors.ErrInvalidToken
	}

	return claims, nil
}

func (a *authService) Logout(ctx context.Context, token string) error {
	claims, err := a.jwtUtil.Verify(token)
	if err != nil {
		return customErrors.ErrInvalidToken
	}

	if err := a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return customErrors.WrapInternal(err, "Revoke")
	}
	return nil
}

type noopTokenRepo struct{}

func (noopTokenRepo) Revoke(context.Context, string, time.Time) error { return nil }

func (noopTokenRepo) IsRevoked(context.Context, string) (bool, error) { return false, nil }
