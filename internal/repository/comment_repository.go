package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogAPI/internal/apperror"
	"blogAPI/internal/models"
)

const commentSelect = `
	SELECT c.comment_id, c.post_id, c.author_id, c.text, c.created_at,
		COALESCE(u.username, '') AS author_username,
		COALESCE(u.avatar, '') AS author_avatar
	FROM comments c
	LEFT JOIN users u ON u.user_id = c.author_id`

type commentRow struct {
	CommentID      string    `db:"comment_id"`
	PostID         string    `db:"post_id"`
	AuthorID       string    `db:"author_id"`
	Text           string    `db:"text"`
	CreatedAt      time.Time `db:"created_at"`
	AuthorUsername string    `db:"author_username"`
	AuthorAvatar   string    `db:"author_avatar"`
}

func (row commentRow) toModel() models.Comment {
	return models.Comment{
		CommentID: row.CommentID,
		PostID:    row.PostID,
		AuthorID:  row.AuthorID,
		Author: models.AuthorSummary{
			UserID:   row.AuthorID,
			Username: row.AuthorUsername,
			Avatar:   row.AuthorAvatar,
		},
		Text:      row.Text,
		CreatedAt: row.CreatedAt,
	}
}

type CommentRepositoryImpl struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) *CommentRepositoryImpl {
	return &CommentRepositoryImpl{db: db}
}

func (r *CommentRepositoryImpl) Append(ctx context.Context, comment *models.Comment) ([]models.Comment, error) {
	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append comment: %w", err)
	}
	defer tx.Rollback()

	if err := lockPost(ctx, tx, comment.PostID); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO comments (comment_id, post_id, author_id, text, created_at) VALUES ($1, $2, $3, $4, $5)`,
		comment.CommentID, comment.PostID, comment.AuthorID, comment.Text, comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	comments, err := selectComments(ctx, tx, comment.PostID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append comment: %w", err)
	}

	return comments, nil
}

func (r *CommentRepositoryImpl) ListByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM posts WHERE post_id = $1)`, postID); err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return nil, apperror.NotFound("post %s not found", postID)
	}

	return selectComments(ctx, r.db, postID)
}

func selectComments(ctx context.Context, q sqlx.QueryerContext, postID string) ([]models.Comment, error) {
	var rows []commentRow
	if err := sqlx.SelectContext(ctx, q, &rows, commentSelect+` WHERE c.post_id = $1 ORDER BY c.seq`, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toModel())
	}

	return comments, nil
}
