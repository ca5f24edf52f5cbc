package service

import (
	"github.com/arjun/vidtube-backend/internal/config"
	"github.com/arjun/vidtube-backend/internal/media"
	"github.com/arjun/vidtube-backend/internal/repository"
)

type Services struct {
	Auth *AuthService
	User *UserService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, uploader media.Uploader) *Services {
	tokens := NewTokenManager(cfg)
	return &Services{
		Auth: NewAuthService(repos.User, tokens, cfg),
		User: NewUserService(repos.User, repos.Subscription, uploader),
	}
}
