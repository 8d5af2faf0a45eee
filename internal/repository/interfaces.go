package repository

import (
	"context"
	"time"

	"github.com/asingh/agri-rental-website/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	// GetByToken returns the session with its owning user preloaded.
	GetByToken(ctx context.Context, token string) (*domain.UserSession, error)
	DeleteByToken(ctx context.Context, token string) error
	Delete(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type EquipmentRepository interface {
	// CreateWithImages inserts the equipment row, then calls attach with the
	// new id to obtain the image rows for the listing. Everything runs in one
	// transaction: an error from attach or from any insert rolls the whole
	// listing back.
	CreateWithImages(ctx context.Context, equipment *domain.Equipment, attach func(equipmentID uint) ([]*domain.EquipmentImage, error)) error
	// DeleteWithImages removes the equipment row (image rows cascade) and
	// returns the image URLs that were attached to it, for file cleanup by
	// the caller. Returns domain.ErrEquipmentNotFound when no row matched.
	DeleteWithImages(ctx context.Context, id uint) ([]string, error)
	GetByID(ctx context.Context, id uint) (*domain.Equipment, error)
	// List returns all equipment newest-first with images preloaded in
	// display order.
	List(ctx context.Context) ([]*domain.Equipment, error)
	ListByPhone(ctx context.Context, phone string) ([]*domain.Equipment, error)
}

type Repositories struct {
	User      UserRepository
	Session   SessionRepository
	Equipment EquipmentRepository
}
