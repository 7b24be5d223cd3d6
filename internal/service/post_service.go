package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blogAPI/internal/apperror"
	"blogAPI/internal/models"
	"blogAPI/internal/repository"
	"blogAPI/internal/storage"
)

type CreatePostInput struct {
	Title   string       `json:"title" validate:"required,max=200"`
	Content string       `json:"content" validate:"required"`
	Image   string       `json:"image" validate:"omitempty,max=2048"`
	Tags    []string     `json:"tags" validate:"max=20,dive,max=40"`
	Upload  *ImageUpload `json:"-"`
}

// ImageUpload is an image file sent along with a new or edited post.
type ImageUpload struct {
	FileName string
	Size     int64
	File     io.Reader
}

type PostService interface {
	Create(ctx context.Context, authorID string, input CreatePostInput) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	Update(ctx context.Context, postID, callerID string, patch models.PostPatch, upload *ImageUpload) (*models.Post, error)
	Delete(ctx context.Context, postID, callerID string) (*models.Post, error)
	ToggleLike(ctx context.Context, postID, callerID string) (*models.Post, error)
	AddComment(ctx context.Context, postID, authorID, text string) ([]models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
}

const maxCommentLength = 2000

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	images      storage.Storage
	log         *logrus.Logger
}

// NewPostService builds the post service. images may be nil, in which case
// uploads are rejected.
func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, images storage.Storage, log *logrus.Logger) PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		images:      images,
		log:         log,
	}
}

func (p *postService) Create(ctx context.Context, authorID string, input CreatePostInput) (*models.Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.Image = strings.TrimSpace(input.Image)

	if err := validateStruct(input); err != nil {
		return nil, err
	}

	post := &models.Post{
		PostID:   uuid.New().String(),
		AuthorID: authorID,
		Title:    input.Title,
		Content:  input.Content,
		Image:    input.Image,
		Tags:     models.NormalizeTags(input.Tags),
	}

	if input.Upload != nil {
		if err := p.uploadImage(ctx, post, input.Upload); err != nil {
			return nil, err
		}
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		if post.ImageKey != "" {
			p.removeImage(ctx, post.ImageKey)
		}
		return nil, err
	}

	p.log.WithFields(logrus.Fields{"post_id": post.PostID, "author_id": authorID}).Info("post created")

	return p.postRepo.GetByID(ctx, post.PostID)
}

func (p *postService) uploadImage(ctx context.Context, post *models.Post, upload *ImageUpload) error {
	if p.images == nil {
		return apperror.Validation("image uploads are disabled")
	}

	contentType, file, err := storage.DetectImage(upload.File)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return apperror.Validation("image must be a JPEG, PNG, GIF or WebP file")
		}
		return apperror.Internal("read image", err)
	}

	objectName, imageURL, err := p.images.UploadImage(ctx, post.PostID, upload.FileName, contentType, file, upload.Size)
	if err != nil {
		return apperror.Internal("upload image", err)
	}

	post.Image = imageURL
	post.ImageKey = objectName
	return nil
}

// removeImage deletes a stored object; failures are logged, never returned.
func (p *postService) removeImage(ctx context.Context, objectName string) {
	if p.images == nil {
		return
	}
	if err := p.images.DeleteImage(ctx, objectName); err != nil {
		p.log.WithError(err).WithField("object", objectName).Warn("failed to delete image")
	}
}

func (p *postService) List(ctx context.Context) ([]*models.Post, error) {
	return p.postRepo.List(ctx)
}

func (p *postService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return p.postRepo.ListByAuthor(ctx, authorID)
}

func (p *postService) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	return p.postRepo.GetByID(ctx, postID)
}

// Update applies patch and, when upload is set, stores it as the new image.
// The previously uploaded object is removed once the post is saved.
func (p *postService) Update(ctx context.Context, postID, callerID string, patch models.PostPatch, upload *ImageUpload) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := AssertOwner(post, callerID); err != nil {
		return nil, err
	}

	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	if patch.IsEmpty() && upload == nil {
		return post, nil
	}

	if upload != nil && patch.Image != nil {
		return nil, apperror.Validation("send either an image URL or an image file, not both")
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apperror.Validation("title must not be blank")
		}
		post.Title = title
	}

	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, apperror.Validation("content must not be blank")
		}
		post.Content = content
	}

	var staleKey string
	if patch.Image != nil {
		image := strings.TrimSpace(*patch.Image)
		if image != post.Image {
			staleKey = post.ImageKey
			post.ImageKey = ""
		}
		post.Image = image
	}

	if patch.Tags != nil {
		post.Tags = models.NormalizeTags(*patch.Tags)
	}

	var freshKey string
	if upload != nil {
		staleKey = post.ImageKey
		if err := p.uploadImage(ctx, post, upload); err != nil {
			return nil, err
		}
		freshKey = post.ImageKey
	}

	if err := p.postRepo.Update(ctx, post); err != nil {
		if freshKey != "" {
			p.removeImage(ctx, freshKey)
		}
		return nil, err
	}

	if staleKey != "" {
		p.removeImage(ctx, staleKey)
	}

	return post, nil
}

// Delete removes the post and returns it as it was before deletion.
func (p *postService) Delete(ctx context.Context, postID, callerID string) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := AssertOwner(post, callerID); err != nil {
		return nil, err
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return nil, err
	}

	if post.ImageKey != "" {
		p.removeImage(ctx, post.ImageKey)
	}

	p.log.WithField("post_id", postID).Info("post deleted")
	return post, nil
}

func (p *postService) ToggleLike(ctx context.Context, postID, callerID string) (*models.Post, error) {
	liked, err := p.postRepo.ToggleLike(ctx, postID, callerID)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{"post_id": postID, "user_id": callerID, "liked": liked}).Debug("like toggled")

	return p.postRepo.GetByID(ctx, postID)
}

func (p *postService) AddComment(ctx context.Context, postID, authorID, text string) ([]models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.Validation("comment text must not be empty")
	}
	if len([]rune(text)) > maxCommentLength {
		return nil, apperror.Validation("comment text must be at most %d characters", maxCommentLength)
	}

	return p.commentRepo.Append(ctx, &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	})
}

func (p *postService) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	return p.commentRepo.ListByPostID(ctx, postID)
}
