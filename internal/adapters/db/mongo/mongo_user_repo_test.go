package mongo

import (
	"context"
	"testing"
	"time"

	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoUserRepo(mt.Coll)

		u, err := repo.Create(context.Background(), "A", "a@x.com", "hash")
		require.NoError(mt, err)
		require.Len(mt, u.ID, 24)
		require.Equal(mt, "a@x.com", u.Email)
		require.False(mt, u.CreatedAt.IsZero())
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: uniq_email",
		}))
		repo := NewMongoUserRepo(mt.Coll)

		_, err := repo.Create(context.Background(), "A", "a@x.com", "hash")
		require.ErrorIs(mt, err, customErrors.ErrDuplicateEmail)
	})

	mt.Run("create other failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "document failed validation",
		}))
		repo := NewMongoUserRepo(mt.Coll)

		_, err := repo.Create(context.Background(), "A", "a@x.com", "hash")
		require.True(mt, customErrors.IsInternal(err))
	})

	mt.Run("find", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "A"},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "hash"},
			{Key: "createdAt", Value: created},
		}))
		repo := NewMongoUserRepo(mt.Coll)

		u, err := repo.FindByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		require.Equal(mt, id.Hex(), u.ID)
		require.Equal(mt, "hash", u.PasswordHash)
		require.True(mt, created.Equal(u.CreatedAt))
	})

	mt.Run("find missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))
		repo := NewMongoUserRepo(mt.Coll)

		_, err := repo.FindByEmail(context.Background(), "nobody@x.com")
		require.True(mt, customErrors.IsNotFound(err))
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoUserRepo(mt.Coll)

		require.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}
