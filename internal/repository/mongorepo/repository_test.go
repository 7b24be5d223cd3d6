package mongorepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"blogAPI/internal/apperror"
	"blogAPI/internal/models"
)

func ns(mt *mtest.T, collection string) string {
	return mt.DB.Name() + "." + collection
}

func findAndModifyResponse(value interface{}) bson.D {
	return bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: value}}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
		err := repo.CreateUser(ctx, user)

		require.NoError(mt, err)
		assert.NotEmpty(mt, user.UserID)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: users_email_unique",
		}))

		err := repo.CreateUser(ctx, &models.User{Username: "alice", Email: "alice@example.com"})

		assert.Equal(mt, apperror.KindConflict, apperror.KindOf(err))
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "alice@example.com"},
			{Key: "password_hash", Value: "hash"},
		}))

		user, err := repo.GetUserByEmail(ctx, "alice@example.com")

		require.NoError(mt, err)
		assert.Equal(mt, "u1", user.UserID)
		assert.Equal(mt, "hash", user.PasswordHash)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch))

		_, err := repo.GetUserByID(ctx, "missing")

		assert.True(mt, apperror.IsNotFound(err))
	})

	mt.Run("update profile", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "username", Value: "alice"},
			{Key: "bio", Value: "hello"},
		}))

		bio := "hello"
		user, err := repo.UpdateProfile(ctx, "u1", models.ProfilePatch{Bio: &bio})

		require.NoError(mt, err)
		assert.Equal(mt, "hello", user.Bio)
	})

	mt.Run("update profile missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil))

		bio := "hello"
		_, err := repo.UpdateProfile(ctx, "missing", models.ProfilePatch{Bio: &bio})

		assert.True(mt, apperror.IsNotFound(err))
	})
}

func TestPostRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("create", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		post := &models.Post{AuthorID: "u1", Title: "T", Content: "C"}
		require.NoError(mt, repo.Create(ctx, post))

		assert.NotEmpty(mt, post.PostID)
		assert.NotNil(mt, post.Tags)
		assert.NotNil(mt, post.Likes)
	})

	mt.Run("get by id populates authors", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, postsCollection), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "p1"},
				{Key: "author_id", Value: "u1"},
				{Key: "title", Value: "Title"},
				{Key: "content", Value: "Body"},
				{Key: "tags", Value: bson.A{"go"}},
				{Key: "likes", Value: bson.A{"u2"}},
				{Key: "comments", Value: bson.A{
					bson.D{{Key: "_id", Value: "c1"}, {Key: "author_id", Value: "u2"}, {Key: "text", Value: "first"}, {Key: "created_at", Value: now}},
					bson.D{{Key: "_id", Value: "c2"}, {Key: "author_id", Value: "u1"}, {Key: "text", Value: "second"}, {Key: "created_at", Value: now}},
				}},
				{Key: "created_at", Value: now},
				{Key: "updated_at", Value: now},
			}),
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "u1"}, {Key: "username", Value: "alice"}},
				bson.D{{Key: "_id", Value: "u2"}, {Key: "username", Value: "bob"}},
			),
		)

		post, err := repo.GetByID(ctx, "p1")

		require.NoError(mt, err)
		assert.Equal(mt, "alice", post.Author.Username)
		assert.Equal(mt, []string{"u2"}, post.Likes)
		require.Len(mt, post.Comments, 2)
		assert.Equal(mt, "first", post.Comments[0].Text)
		assert.Equal(mt, "bob", post.Comments[0].Author.Username)
		assert.Equal(mt, "p1", post.Comments[1].PostID)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, postsCollection), mtest.FirstBatch))

		_, err := repo.GetByID(ctx, "missing")

		assert.True(mt, apperror.IsNotFound(err))
	})

	mt.Run("list keeps server order", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, postsCollection), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "p2"}, {Key: "author_id", Value: "u1"}, {Key: "created_at", Value: now.Add(time.Hour)}},
				bson.D{{Key: "_id", Value: "p1"}, {Key: "author_id", Value: "u1"}, {Key: "created_at", Value: now}},
			),
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "u1"}, {Key: "username", Value: "alice"}},
			),
		)

		posts, err := repo.List(ctx)

		require.NoError(mt, err)
		require.Len(mt, posts, 2)
		assert.Equal(mt, "p2", posts[0].PostID)
		assert.Equal(mt, "p1", posts[1].PostID)
		assert.NotNil(mt, posts[0].Likes)
		assert.NotNil(mt, posts[0].Comments)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		require.Equal(mt, "find", evt.CommandName)

		var sort bson.D
		require.NoError(mt, evt.Command.Lookup("sort").Unmarshal(&sort))
		require.Len(mt, sort, 2)
		assert.Equal(mt, "created_at", sort[0].Key)
		assert.EqualValues(mt, -1, sort[0].Value)
		assert.Equal(mt, "_id", sort[1].Key)
		assert.EqualValues(mt, 1, sort[1].Value)
	})

	mt.Run("update by owner", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.Update(ctx, &models.Post{PostID: "p1", AuthorID: "u1", Title: "T", Content: "C"})

		assert.NoError(mt, err)
	})

	mt.Run("update unmatched", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.Update(ctx, &models.Post{PostID: "p1", AuthorID: "u2"})

		assert.True(mt, apperror.IsNotFound(err))
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.Delete(ctx, "p1"))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.True(mt, apperror.IsNotFound(repo.Delete(ctx, "p1")))
	})

	mt.Run("toggle like adds", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(bson.D{
			{Key: "_id", Value: "p1"},
			{Key: "likes", Value: bson.A{"u2", "u1"}},
		}))

		liked, err := repo.ToggleLike(ctx, "p1", "u1")

		require.NoError(mt, err)
		assert.True(mt, liked)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)

		var update bson.A
		require.NoError(mt, evt.Command.Lookup("update").Unmarshal(&update))
		assert.JSONEq(mt, toggleLikeU1, pipelineJSON(mt, update))

		var query bson.D
		require.NoError(mt, evt.Command.Lookup("query").Unmarshal(&query))
		assert.Equal(mt, bson.D{{Key: "_id", Value: "p1"}}, query)
	})

	mt.Run("toggle like removes", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(bson.D{
			{Key: "_id", Value: "p1"},
			{Key: "likes", Value: bson.A{"u2"}},
		}))

		liked, err := repo.ToggleLike(ctx, "p1", "u1")

		require.NoError(mt, err)
		assert.False(mt, liked)
	})

	mt.Run("toggle like missing post", func(mt *mtest.T) {
		repo := NewPostRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil))

		_, err := repo.ToggleLike(ctx, "missing", "u1")

		assert.True(mt, apperror.IsNotFound(err))
	})
}

func TestCommentRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("append returns whole log", func(mt *mtest.T) {
		repo := NewCommentRepository(mt.DB)
		mt.AddMockResponses(
			findAndModifyResponse(bson.D{
				{Key: "_id", Value: "p1"},
				{Key: "comments", Value: bson.A{
					bson.D{{Key: "_id", Value: "c1"}, {Key: "author_id", Value: "u1"}, {Key: "text", Value: "first"}, {Key: "created_at", Value: now}},
					bson.D{{Key: "_id", Value: "c2"}, {Key: "author_id", Value: "u2"}, {Key: "text", Value: "second"}, {Key: "created_at", Value: now}},
				}},
			}),
			mtest.CreateCursorResponse(0, ns(mt, usersCollection), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "u1"}, {Key: "username", Value: "alice"}},
				bson.D{{Key: "_id", Value: "u2"}, {Key: "username", Value: "bob"}},
			),
		)

		comment := &models.Comment{PostID: "p1", AuthorID: "u2", Text: "second"}
		comments, err := repo.Append(ctx, comment)

		require.NoError(mt, err)
		require.Len(mt, comments, 2)
		assert.Equal(mt, "first", comments[0].Text)
		assert.Equal(mt, "bob", comments[1].Author.Username)
		assert.NotEmpty(mt, comment.CommentID)
	})

	mt.Run("append to missing post", func(mt *mtest.T) {
		repo := NewCommentRepository(mt.DB)
		mt.AddMockResponses(findAndModifyResponse(nil))

		_, err := repo.Append(ctx, &models.Comment{PostID: "missing", AuthorID: "u1", Text: "hi"})

		assert.True(mt, apperror.IsNotFound(err))
	})

	mt.Run("list empty log", func(mt *mtest.T) {
		repo := NewCommentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, postsCollection), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "p1"}, {Key: "comments", Value: bson.A{}}},
		))

		comments, err := repo.ListByPostID(ctx, "p1")

		require.NoError(mt, err)
		assert.NotNil(mt, comments)
		assert.Empty(mt, comments)
	})
}

// toggleLikeU1 is the update sent to flip u1's membership: remove when
// present, append otherwise, treating a missing array as empty.
const toggleLikeU1 = `{"pipeline": [{"$set": {"likes": {"$cond": [
	{"$in": ["u1", {"$ifNull": ["$likes", []]}]},
	{"$filter": {"input": {"$ifNull": ["$likes", []]}, "cond": {"$ne": ["$$this", "u1"]}}},
	{"$concatArrays": [{"$ifNull": ["$likes", []]}, ["u1"]]}
]}}}]}`

func pipelineJSON(t require.TestingT, pipeline interface{}) string {
	data, err := bson.MarshalExtJSON(bson.D{{Key: "pipeline", Value: pipeline}}, false, false)
	require.NoError(t, err)
	return string(data)
}

func TestToggleLikePipeline(t *testing.T) {
	assert.JSONEq(t, toggleLikeU1, pipelineJSON(t, toggleLikePipeline("u1")))
}
