package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialCategory groups catalog materials.
type MaterialCategory struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate assigns an id and creation time.
func (c *MaterialCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Material is a catalog raw material.
type Material struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	CategoryID  *string   `json:"category_id" gorm:"size:36;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Unit        string    `json:"unit" gorm:"default:'szt.'"`
	CreatedAt   time.Time `json:"created_at"`

	Category *MaterialCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// BeforeCreate assigns an id and creation time.
func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
