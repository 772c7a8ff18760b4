package repo

import (
	"context"
	"time"

	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/model"
)

// UserRepo owns persistence of user records. Implementations must enforce
// email uniqueness in the store itself and report a violation as
// errors.ErrDuplicateEmail.
type UserRepo interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)

	Create(ctx context.Context, name, email, passwordHash string) (model.User, error)

	Ping(ctx context.Context) error
}

type TokenRepo interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	IsRevoked(ctx context.Context, jti string) (bool, error)
}
