package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// shared cache keeps one in-memory database across the pool's connections
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&userRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestPostgresUserRepo_CreateFind(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "A", "a@x.com", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "A", got.Name)
	require.Equal(t, "hash", got.PasswordHash)
}

func TestPostgresUserRepo_NotFound(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))

	_, err := repo.FindByEmail(context.Background(), "nobody@x.com")
	require.True(t, customErrors.IsNotFound(err))
}

func TestPostgresUserRepo_DuplicateEmail(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, "A", "a@x.com", "hash")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "B", "a@x.com", "hash2")
	require.ErrorIs(t, err, customErrors.ErrDuplicateEmail)
}

func TestPostgresUserRepo_ConcurrentDuplicate(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(context.Background(), "A", "same@x.com", "hash")
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, customErrors.ErrDuplicateEmail)
	}
	require.Equal(t, 1, ok)
}

func TestPostgresUserRepo_Ping(t *testing.T) {
	repo := NewPostgresUserRepo(setupDB(t))
	require.NoError(t, repo.Ping(context.Background()))
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("boom")))
}
