package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"blogAPI/internal/models"
	"blogAPI/internal/repository"
)

type UserService interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      *logrus.Logger
}

func NewUserService(userRepo repository.UserRepository, log *logrus.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// UpdateProfile changes only bio and avatar. An empty patch returns the
// user unchanged.
func (s *userService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.User, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return s.userRepo.GetUserByID(ctx, userID)
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", userID).Debug("profile updated")
	return user, nil
}
