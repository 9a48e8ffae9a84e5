package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BeforeCreate assigns an id and creation time when the caller did not.
func (a *Auction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

// BeforeCreate assigns an id and invitation time when the caller did not.
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.InvitedAt.IsZero() {
		i.InvitedAt = time.Now().UTC()
	}
	if i.Status == "" {
		i.Status = InvitationStatusPending
	}
	return nil
}

// BeforeCreate assigns an id and creation time when the caller did not.
func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	return nil
}
