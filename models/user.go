package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values carried in access tokens.
const (
	RoleAdmin    = "admin"
	RoleSupplier = "supplier"
)

// User is an account that can log in: an administrator or a supplier's representative.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name" gorm:"not null"`
	Company      string    `json:"company" gorm:"default:''"`
	Phone        string    `json:"phone" gorm:"default:''"`
	Role         string    `json:"role" gorm:"size:16;not null;default:supplier"`
	IsActive     bool      `json:"is_active" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id and timestamps.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes UpdatedAt.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now().UTC()
	return nil
}
