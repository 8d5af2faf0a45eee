package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Equipment struct {
	ID             uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerName      string           `json:"owner_name" gorm:"not null"`
	PhoneNumber    string           `json:"phone_number" gorm:"type:varchar(10);not null;index"`
	MachineryType  string           `json:"machinery_type" gorm:"not null"`
	Price          float64          `json:"price" gorm:"not null"`
	Location       string           `json:"location" gorm:"not null"`
	AvailableFrom  datatypes.Date   `json:"available_from" gorm:"not null"`
	AvailableUntil datatypes.Date   `json:"available_until" gorm:"not null"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Images         []EquipmentImage `json:"images,omitempty" gorm:"foreignKey:EquipmentID;constraint:OnDelete:CASCADE"`
}

// EquipmentImage never outlives its Equipment: the row cascades with the
// listing and the file under ImageURL is removed best-effort after commit.
type EquipmentImage struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	EquipmentID uint      `json:"equipment_id" gorm:"not null;index"`
	ImageURL    string    `json:"image_url" gorm:"type:text;not null"`
	ImageOrder  int       `json:"image_order" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
}
