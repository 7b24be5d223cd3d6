package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"blogAPI/internal/apperror"
	"blogAPI/internal/config"
	"blogAPI/internal/models"
	"blogAPI/internal/repository"
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = apperror.Authentication("invalid email or password")

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	Refresh(ctx context.Context, userID string) (*models.User, string, error)
}

type authService struct {
	userRepo  repository.UserRepository
	tokens    *TokenService
	cost      int
	dummyHash []byte
	log       *logrus.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, cfg *config.Config, log *logrus.Logger) AuthService {
	// compared against when the email is unknown so both login failures
	// take the same time
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)
	if err != nil {
		log.WithError(err).WithField("cost", cfg.BcryptCost).Error("failed to prepare dummy password hash")
	}

	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		cost:      cfg.BcryptCost,
		dummyHash: dummyHash,
		log:       log,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = models.NormalizeEmail(input.Email)

	if err := validateStruct(input); err != nil {
		return nil, "", err
	}

	_, err := s.userRepo.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return nil, "", apperror.Conflict("email %s is already registered", input.Email)
	}
	if !apperror.IsNotFound(err) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, "", apperror.Validation("password must be at most 72 bytes")
		}
		return nil, "", apperror.Internal("hash password", err)
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.UserID)
	if err != nil {
		return nil, "", apperror.Internal("issue token", err)
	}

	s.log.WithField("user_id", user.UserID).Info("user registered")
	return user, token, nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperror.Validation("email and password are required")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("user_id", user.UserID).Debug("password mismatch")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.UserID)
	if err != nil {
		return nil, "", apperror.Internal("issue token", err)
	}

	return user, token, nil
}

// Refresh issues a new token for a caller the guard already authenticated.
func (s *authService) Refresh(ctx context.Context, userID string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.UserID)
	if err != nil {
		return nil, "", apperror.Internal("issue token", err)
	}

	return user, token, nil
}
