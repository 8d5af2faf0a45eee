package service

import (
	"github.com/asingh/agri-rental-website/internal/config"
	"github.com/asingh/agri-rental-website/internal/repository"
	"github.com/asingh/agri-rental-website/internal/storage"
)

type Services struct {
	Auth    *AuthService
	Listing *ListingService
}

func NewServices(repos *repository.Repositories, store storage.ImageStore, cfg *config.Config) *Services {
	return &Services{
		Auth:    NewAuthService(repos.User, repos.Session, cfg),
		Listing: NewListingService(repos.Equipment, store),
	}
}
