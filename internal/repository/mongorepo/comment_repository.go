package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogAPI/internal/apperror"
	"blogAPI/internal/models"
)

type CommentRepository struct {
	posts *mongo.Collection
	users *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{
		posts: db.Collection(postsCollection),
		users: db.Collection(usersCollection),
	}
}

func (r *CommentRepository) Append(ctx context.Context, comment *models.Comment) ([]models.Comment, error) {
	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	entry := commentDocument{
		ID:        comment.CommentID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"comments": 1})

	var doc postDocument
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": comment.PostID}, bson.M{"$push": bson.M{"comments": entry}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post %s not found", comment.PostID)
		}
		return nil, fmt.Errorf("append comment: %w", err)
	}

	return r.populate(ctx, comment.PostID, doc)
}

func (r *CommentRepository) ListByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.FindOne().SetProjection(bson.M{"comments": 1})

	var doc postDocument
	if err := r.posts.FindOne(ctx, bson.M{"_id": postID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post %s not found", postID)
		}
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return r.populate(ctx, postID, doc)
}

func (r *CommentRepository) populate(ctx context.Context, postID string, doc postDocument) ([]models.Comment, error) {
	// only comment authors are needed; the post author is not projected
	authors, err := loadAuthors(ctx, r.users, postDocument{Comments: doc.Comments})
	if err != nil {
		return nil, err
	}
	return commentsToModel(postID, doc.Comments, authors), nil
}
