package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blogAPI/internal/models"
	"blogAPI/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*models.User, string, error) {
	args := m.Called(ctx, input)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *MockAuthService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, userID string) (*models.User, string, error) {
	args := m.Called(ctx, userID)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	args := m.Called(ctx, userID, patch)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) post(args mock.Arguments) (*models.Post, error) {
	if post := args.Get(0); post != nil {
		return post.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) posts(args mock.Arguments) ([]*models.Post, error) {
	if posts := args.Get(0); posts != nil {
		return posts.([]*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) comments(args mock.Arguments) ([]models.Comment, error) {
	if comments := args.Get(0); comments != nil {
		return comments.([]models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) Create(ctx context.Context, authorID string, input service.CreatePostInput) (*models.Post, error) {
	return m.post(m.Called(ctx, authorID, input))
}

func (m *MockPostService) List(ctx context.Context) ([]*models.Post, error) {
	return m.posts(m.Called(ctx))
}

func (m *MockPostService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return m.posts(m.Called(ctx, authorID))
}

func (m *MockPostService) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	return m.post(m.Called(ctx, postID))
}

func (m *MockPostService) Update(ctx context.Context, postID, callerID string, patch models.PostPatch, upload *service.ImageUpload) (*models.Post, error) {
	return m.post(m.Called(ctx, postID, callerID, patch, upload))
}

func (m *MockPostService) Delete(ctx context.Context, postID, callerID string) (*models.Post, error) {
	return m.post(m.Called(ctx, postID, callerID))
}

func (m *MockPostService) ToggleLike(ctx context.Context, postID, callerID string) (*models.Post, error) {
	return m.post(m.Called(ctx, postID, callerID))
}

func (m *MockPostService) AddComment(ctx context.Context, postID, authorID, text string) ([]models.Comment, error) {
	return m.comments(m.Called(ctx, postID, authorID, text))
}

func (m *MockPostService) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	return m.comments(m.Called(ctx, postID))
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
