package domain

import (
	"time"
)

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string     `json:"name" gorm:"not null"`
	Phone        string     `json:"phone" gorm:"type:varchar(10);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	IsActive     bool       `json:"isActive" gorm:"not null;default:true"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserSession is one active login. A user may hold several concurrent
// sessions; each carries its own opaque token and expiry.
type UserSession struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint      `json:"userId" gorm:"not null;index"`
	User         User      `json:"-" gorm:"foreignKey:UserID"`
	SessionToken string    `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt    time.Time `json:"expiresAt" gorm:"not null"`
	IPAddress    string    `json:"-"`
	UserAgent    string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
