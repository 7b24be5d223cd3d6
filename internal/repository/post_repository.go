package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blogAPI/internal/apperror"
	"blogAPI/internal/models"
)

const postSelect = `
	SELECT p.post_id, p.author_id, p.title, p.content, p.image, p.image_key, p.tags,
		p.created_at, p.updated_at,
		COALESCE(u.username, '') AS author_username,
		COALESCE(u.avatar, '') AS author_avatar
	FROM posts p
	LEFT JOIN users u ON u.user_id = p.author_id`

// newestFirst orders the feed; equal timestamps fall back to the identifier.
const newestFirst = ` ORDER BY p.created_at DESC, p.post_id ASC`

type postRow struct {
	PostID         string         `db:"post_id"`
	AuthorID       string         `db:"author_id"`
	Title          string         `db:"title"`
	Content        string         `db:"content"`
	Image          string         `db:"image"`
	ImageKey       string         `db:"image_key"`
	Tags           pq.StringArray `db:"tags"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	AuthorUsername string         `db:"author_username"`
	AuthorAvatar   string         `db:"author_avatar"`
}

func (row postRow) toModel() *models.Post {
	tags := []string(row.Tags)
	if tags == nil {
		tags = []string{}
	}

	return &models.Post{
		PostID:   row.PostID,
		AuthorID: row.AuthorID,
		Author: models.AuthorSummary{
			UserID:   row.AuthorID,
			Username: row.AuthorUsername,
			Avatar:   row.AuthorAvatar,
		},
		Title:     row.Title,
		Content:   row.Content,
		Image:     row.Image,
		ImageKey:  row.ImageKey,
		Tags:      tags,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Likes:     []string{},
		Comments:  []models.Comment{},
	}
}

func fromModel(post *models.Post) postRow {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	return postRow{
		PostID:    post.PostID,
		AuthorID:  post.AuthorID,
		Title:     post.Title,
		Content:   post.Content,
		Image:     post.Image,
		ImageKey:  post.ImageKey,
		Tags:      pq.StringArray(tags),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

type likeRow struct {
	PostID string `db:"post_id"`
	UserID string `db:"user_id"`
}

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts
		(post_id, author_id, title, content, image, image_key, tags, created_at, updated_at)
		VALUES
		(:post_id, :author_id, :title, :content, :image, :image_key, :tags, :created_at, :updated_at)
	`

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.DB.NamedExecContext(ctx, query, fromModel(post)); err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	post.Likes = []string{}
	post.Comments = []models.Comment{}
	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var row postRow
	err := r.DB.GetContext(ctx, &row, postSelect+` WHERE p.post_id = $1`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post %s not found", postID)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	posts := []*models.Post{row.toModel()}
	if err := r.loadRelations(ctx, posts); err != nil {
		return nil, err
	}

	return posts[0], nil
}

func (r *PostRepositoryImpl) List(ctx context.Context) ([]*models.Post, error) {
	return r.selectPosts(ctx, postSelect+newestFirst)
}

func (r *PostRepositoryImpl) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return r.selectPosts(ctx, postSelect+` WHERE p.author_id = $1`+newestFirst, authorID)
}

func (r *PostRepositoryImpl) selectPosts(ctx context.Context, query string, args ...interface{}) ([]*models.Post, error) {
	var rows []postRow
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]*models.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toModel())
	}

	if err := r.loadRelations(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// loadRelations fills like sets and comment logs for posts with two queries.
func (r *PostRepositoryImpl) loadRelations(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(posts))
	byID := make(map[string]*models.Post, len(posts))
	for _, post := range posts {
		ids = append(ids, post.PostID)
		byID[post.PostID] = post
	}

	var likes []likeRow
	err := r.DB.SelectContext(ctx, &likes,
		`SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1) ORDER BY created_at, user_id`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load likes: %w", err)
	}
	for _, like := range likes {
		if post, ok := byID[like.PostID]; ok {
			post.Likes = append(post.Likes, like.UserID)
		}
	}

	var comments []commentRow
	err = r.DB.SelectContext(ctx, &comments, commentSelect+` WHERE c.post_id = ANY($1) ORDER BY c.seq`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}
	for _, comment := range comments {
		if post, ok := byID[comment.PostID]; ok {
			post.Comments = append(post.Comments, comment.toModel())
		}
	}

	return nil
}

func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			title = :title,
			content = :content,
			image = :image,
			image_key = :image_key,
			tags = :tags,
			updated_at = :updated_at
		WHERE post_id = :post_id AND author_id = :author_id
	`

	post.UpdatedAt = time.Now().UTC()

	result, err := r.DB.NamedExecContext(ctx, query, fromModel(post))
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("post %s not found", post.PostID)
	}

	return nil
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("post %s not found", postID)
	}

	return nil
}

// lockPost takes the row lock that serializes like and comment mutations of
// one post.
func lockPost(ctx context.Context, tx *sqlx.Tx, postID string) error {
	var id string
	err := tx.GetContext(ctx, &id, `SELECT post_id FROM posts WHERE post_id = $1 FOR UPDATE`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("post %s not found", postID)
		}
		return fmt.Errorf("lock post: %w", err)
	}
	return nil
}

func (r *PostRepositoryImpl) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle like: %w", err)
	}
	defer tx.Rollback()

	if err := lockPost(ctx, tx, postID); err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("remove like: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove like rows affected: %w", err)
	}

	liked := removed == 0
	if liked {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO post_likes (post_id, user_id, created_at) VALUES ($1, $2, $3)`,
			postID, userID, time.Now().UTC())
		if err != nil {
			return false, fmt.Errorf("add like: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle like: %w", err)
	}

	return liked, nil
}
