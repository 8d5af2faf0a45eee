package postgres

import (
	"context"

	"github.com/asingh/agri-rental-website/internal/domain"
	"gorm.io/gorm"
)

type equipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *equipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) CreateWithImages(ctx context.Context, equipment *domain.Equipment, attach func(equipmentID uint) ([]*domain.EquipmentImage, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(equipment).Error; err != nil {
			return err
		}

		images, err := attach(equipment.ID)
		if err != nil {
			return err
		}

		for _, img := range images {
			img.EquipmentID = equipment.ID
			if err := tx.Create(img).Error; err != nil {
				return err
			}
		}

		equipment.Images = nil
		for _, img := range images {
			equipment.Images = append(equipment.Images, *img)
		}
		return nil
	})
}

func (r *equipmentRepository) DeleteWithImages(ctx context.Context, id uint) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.EquipmentImage{}).
			Where("equipment_id = ?", id).
			Order("image_order ASC").
			Pluck("image_url", &urls).Error; err != nil {
			return err
		}

		res := tx.Delete(&domain.Equipment{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrEquipmentNotFound
		}

		// Image rows cascade with the equipment row, but the delete is kept
		// explicit so the invariant holds even without the FK constraint.
		return tx.Delete(&domain.EquipmentImage{}, "equipment_id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id uint) (*domain.Equipment, error) {
	var equipment domain.Equipment
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("image_order ASC")
		}).
		First(&equipment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *equipmentRepository) List(ctx context.Context) ([]*domain.Equipment, error) {
	var equipment []*domain.Equipment
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("image_order ASC")
		}).
		Order("created_at DESC").
		Find(&equipment).Error
	if err != nil {
		return nil, err
	}
	return equipment, nil
}

func (r *equipmentRepository) ListByPhone(ctx context.Context, phone string) ([]*domain.Equipment, error) {
	var equipment []*domain.Equipment
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("image_order ASC")
		}).
		Where("phone_number = ?", phone).
		Order("created_at DESC").
		Find(&equipment).Error
	if err != nil {
		return nil, err
	}
	return equipment, nil
}
