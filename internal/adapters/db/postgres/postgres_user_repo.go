package postgres

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	"github.com/Miraines/MindHaven/auth-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type userRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex:idx_users_email;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toModel() model.User {
	return model.User{
		ID:           r.ID.String(),
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// PostgresUserRepo expects the users table with a unique index on email.
// The session must be opened with TranslateError so that drivers other than
// pgx report duplicates as gorm.ErrDuplicatedKey.
type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (p *PostgresUserRepo) Create(ctx context.Context, name, email, passwordHash string) (model.User, error) {
	rec := userRecord{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	res := p.db.WithContext(ctx).Create(&rec)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return model.User{}, customErrors.ErrDuplicateEmail
		}
		return model.User{}, customErrors.WrapInternal(err, "CreateUser")
	}
	return rec.toModel(), nil
}

func (p *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var rec userRecord
	res := p.db.WithContext(ctx).Where("email = ?", email).Take(&rec)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, "FindByEmail")
	}

	return rec.toModel(), nil
}

func (p *PostgresUserRepo) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
