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

// newestFirst orders the feed; equal timestamps fall back to the identifier.
var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

type PostRepository struct {
	posts *mongo.Collection
	users *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{
		posts: db.Collection(postsCollection),
		users: db.Collection(usersCollection),
	}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.posts.InsertOne(ctx, newPostDocument(post)); err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	post.Likes = []string{}
	post.Comments = []models.Comment{}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var doc postDocument
	if err := r.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post %s not found", postID)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	authors, err := loadAuthors(ctx, r.users, doc)
	if err != nil {
		return nil, err
	}

	return doc.toModel(authors), nil
}

func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return r.find(ctx, bson.M{"author_id": authorID})
}

func (r *PostRepository) find(ctx context.Context, filter bson.M) ([]*models.Post, error) {
	cursor, err := r.posts.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	authors, err := loadAuthors(ctx, r.users, docs...)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, doc.toModel(authors))
	}

	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()

	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	update := bson.M{
		"$set": bson.M{
			"title":      post.Title,
			"content":    post.Content,
			"image":      post.Image,
			"image_key":  post.ImageKey,
			"tags":       tags,
			"updated_at": post.UpdatedAt,
		},
	}

	result, err := r.posts.UpdateOne(ctx, bson.M{"_id": post.PostID, "author_id": post.AuthorID}, update)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperror.NotFound("post %s not found", post.PostID)
	}

	return nil
}

func (r *PostRepository) Delete(ctx context.Context, postID string) error {
	result, err := r.posts.DeleteOne(ctx, bson.M{"_id": postID})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperror.NotFound("post %s not found", postID)
	}

	return nil
}

// toggleLikePipeline removes userID from likes when present and appends it
// otherwise. The server evaluates it atomically against the current array.
func toggleLikePipeline(userID string) mongo.Pipeline {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
			bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: likes},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", userID}}}},
			}}},
			bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
		}}}}}}},
	}
}

func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var doc struct {
		Likes []string `bson:"likes"`
	}
	err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": postID}, toggleLikePipeline(userID), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, apperror.NotFound("post %s not found", postID)
		}
		return false, fmt.Errorf("toggle like: %w", err)
	}

	for _, id := range doc.Likes {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
