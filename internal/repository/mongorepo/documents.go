// Package mongorepo stores users and posts in MongoDB. Posts embed their
// like set and comment log, so each like or comment is a single-document
// update.
package mongorepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogAPI/internal/models"
	"blogAPI/internal/repository"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
)

type commentDocument struct {
	ID        string    `bson:"_id"`
	AuthorID  string    `bson:"author_id"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
}

type postDocument struct {
	ID        string            `bson:"_id"`
	AuthorID  string            `bson:"author_id"`
	Title     string            `bson:"title"`
	Content   string            `bson:"content"`
	Image     string            `bson:"image"`
	ImageKey  string            `bson:"image_key"`
	Tags      []string          `bson:"tags"`
	Likes     []string          `bson:"likes"`
	Comments  []commentDocument `bson:"comments"`
	CreatedAt time.Time         `bson:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

func newPostDocument(post *models.Post) postDocument {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	return postDocument{
		ID:        post.PostID,
		AuthorID:  post.AuthorID,
		Title:     post.Title,
		Content:   post.Content,
		Image:     post.Image,
		ImageKey:  post.ImageKey,
		Tags:      tags,
		Likes:     []string{},
		Comments:  []commentDocument{},
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func (d postDocument) toModel(authors map[string]models.AuthorSummary) *models.Post {
	post := &models.Post{
		PostID:    d.ID,
		AuthorID:  d.AuthorID,
		Author:    summaryFor(authors, d.AuthorID),
		Title:     d.Title,
		Content:   d.Content,
		Image:     d.Image,
		ImageKey:  d.ImageKey,
		Tags:      append([]string{}, d.Tags...),
		Likes:     append([]string{}, d.Likes...),
		Comments:  commentsToModel(d.ID, d.Comments, authors),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	return post
}

func commentsToModel(postID string, docs []commentDocument, authors map[string]models.AuthorSummary) []models.Comment {
	comments := make([]models.Comment, 0, len(docs))
	for _, doc := range docs {
		comments = append(comments, models.Comment{
			CommentID: doc.ID,
			PostID:    postID,
			AuthorID:  doc.AuthorID,
			Author:    summaryFor(authors, doc.AuthorID),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		})
	}
	return comments
}

func summaryFor(authors map[string]models.AuthorSummary, userID string) models.AuthorSummary {
	if summary, ok := authors[userID]; ok {
		return summary
	}
	return models.AuthorSummary{UserID: userID}
}

// loadAuthors fetches the public profile of every user referenced by posts
// and their comments in one query.
func loadAuthors(ctx context.Context, users *mongo.Collection, docs ...postDocument) (map[string]models.AuthorSummary, error) {
	seen := make(map[string]struct{})
	ids := bson.A{}
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, doc := range docs {
		add(doc.AuthorID)
		for _, comment := range doc.Comments {
			add(comment.AuthorID)
		}
	}

	authors := make(map[string]models.AuthorSummary, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "avatar": 1})
	cursor, err := users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	defer cursor.Close(ctx)

	var found []models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	for i := range found {
		authors[found[i].UserID] = found[i].Summary()
	}

	return authors, nil
}

// EnsureIndexes creates the indexes the repositories rely on. Email
// uniqueness is enforced here, not by a lookup before insert.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(postsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create posts indexes: %w", err)
	}

	return nil
}

func NewRepository(db *mongo.Database) *repository.Repository {
	return &repository.Repository{
		User:    NewUserRepository(db),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
	}
}
