package service

import (
	"github.com/sirupsen/logrus"

	"blogAPI/internal/config"
	"blogAPI/internal/repository"
	"blogAPI/internal/storage"
)

type Service struct {
	User   UserService
	Post   PostService
	Auth   AuthService
	Tokens *TokenService
}

func NewService(rep *repository.Repository, cfg *config.Config, images storage.Storage, log *logrus.Logger) *Service {
	tokens := NewTokenService(cfg)

	return &Service{
		User:   NewUserService(rep.User, log),
		Post:   NewPostService(rep.Post, rep.Comment, images, log),
		Auth:   NewAuthService(rep.User, tokens, cfg, log),
		Tokens: tokens,
	}
}
