package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

func counterResponse(seq int64) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
		{Key: "_id", Value: "users"},
		{Key: "seq", Value: seq},
	}})
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Now().UTC().Truncate(time.Millisecond)

	mt.Run("create assigns the next sequence id", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(counterResponse(42), mtest.CreateSuccessResponse())

		user, err := store.Users().Create(context.Background(), &domain.User{
			Username: "alice", PasswordHash: "hash", Role: domain.RoleUser, IsActive: true,
			CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(42), user.ID)
	})

	mt.Run("create maps duplicate key to ErrUserExists", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(counterResponse(43), mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := store.Users().Create(context.Background(), &domain.User{Username: "alice", Role: domain.RoleUser})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("find by username", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "board.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: int64(7)},
			{Key: "username", Value: "alice"},
			{Key: "password_hash", Value: "hash"},
			{Key: "role", Value: "MODERATOR"},
			{Key: "is_active", Value: false},
			{Key: "created_at", Value: now},
			{Key: "updated_at", Value: now},
		}))

		user, err := store.Users().FindByUsername(context.Background(), "alice")
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), user.ID)
		assert.Equal(mt, domain.RoleModerator, user.Role)
		assert.False(mt, user.IsActive)
	})

	mt.Run("find by username not found", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "board.users", mtest.FirstBatch))

		_, err := store.Users().FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("update without match", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := store.Users().Update(context.Background(), &domain.User{ID: 99, Username: "ghost"})
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("delete without match", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := store.Users().Delete(context.Background(), 99)
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestAdvertisementRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Now().UTC().Truncate(time.Millisecond)

	mt.Run("list pages through matching advertisements", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "board.advertisements", mtest.FirstBatch, bson.D{{Key: "n", Value: int64(3)}}),
			mtest.CreateCursorResponse(0, "board.advertisements", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: int64(3)},
				{Key: "title", Value: "Sofa"},
				{Key: "adv_group", Value: "BUY"},
				{Key: "is_active", Value: true},
				{Key: "author_id", Value: int64(1)},
				{Key: "created_at", Value: now},
				{Key: "updated_at", Value: now},
			}),
		)

		items, total, err := store.Advertisements().List(context.Background(), ports.ListAdvertisementsFilter{
			Group: domain.GroupBuy, Page: 2, Limit: 2,
		})
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), total)
		require.Len(mt, items, 1)
		assert.Equal(mt, int64(1), items[0].Author)
		assert.Equal(mt, domain.GroupBuy, items[0].Group)
	})

	mt.Run("create rejects unknown author", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "board.users", mtest.FirstBatch, bson.D{{Key: "n", Value: int64(0)}}))

		err := store.Advertisements().Create(context.Background(), &domain.Advertisement{Title: "Orphan", Author: 404})
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "board.advertisements", mtest.FirstBatch))

		_, err := store.Advertisements().FindByID(context.Background(), 5)
		assert.ErrorIs(mt, err, domain.ErrAdvertisementNotFound)
	})
}

func TestCommentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list returns empty slice", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "board.comments", mtest.FirstBatch))

		comments, err := store.Comments().ListByAdvertisement(context.Background(), 1)
		require.NoError(mt, err)
		assert.NotNil(mt, comments)
		assert.Empty(mt, comments)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		store := New(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := store.Comments().Delete(context.Background(), 1)
		assert.ErrorIs(mt, err, domain.ErrCommentNotFound)
	})
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	_, err := Open(context.Background(), Config{URI: "mongodb://localhost:27017"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database name is empty")

	_, err = Open(context.Background(), Config{URI: "bogus://nowhere", Database: "board", Timeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo store: connect")
}
