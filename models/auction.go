package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction. The string values are
// part of the external contract.
type AuctionStatus string

const (
	AuctionStatusPending   AuctionStatus = "pending"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusCompleted AuctionStatus = "completed"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// Valid reports whether s is one of the four known statuses.
func (s AuctionStatus) Valid() bool {
	switch s {
	case AuctionStatusPending, AuctionStatusActive, AuctionStatusCompleted, AuctionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave s.
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionStatusCompleted || s == AuctionStatusCancelled
}

// Auction is a time-boxed reverse auction for a quantity of one material.
type Auction struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	Title       string `json:"title" gorm:"size:300;not null"`
	Description string `json:"description" gorm:"type:text"`

	// Exactly one of MaterialID or the custom pair is populated; use MaterialRef.
	MaterialID         *string `json:"material_id" gorm:"size:36;index"`
	CustomMaterialName *string `json:"custom_material_name"`
	CustomMaterialUnit *string `json:"custom_material_unit"`

	Quantity        decimal.Decimal `json:"quantity" gorm:"type:numeric(18,3);not null"`
	Unit            string          `json:"unit"`
	DurationMinutes int             `json:"duration_minutes" gorm:"not null;default:10"`

	Status    AuctionStatus `json:"status" gorm:"size:16;not null;default:pending;index"`
	StartTime *time.Time    `json:"start_time"`
	EndTime   *time.Time    `json:"end_time"`

	WinnerID         *string             `json:"winner_id" gorm:"size:36"`
	WinningBid       decimal.NullDecimal `json:"winning_bid" gorm:"type:numeric(18,2)"`
	ResultsPublished bool                `json:"results_published" gorm:"not null;default:false"`

	CreatedBy string    `json:"created_by" gorm:"size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Material *Material `json:"-" gorm:"foreignKey:MaterialID"`
	Winner   *Supplier `json:"-" gorm:"foreignKey:WinnerID"`
}

// MaterialRef identifies what an auction is buying: a catalog entry or an
// ad-hoc material described by name and unit.
type MaterialRef interface {
	isMaterialRef()
}

// CatalogMaterial references a Material row by id.
type CatalogMaterial struct {
	ID string
}

// CustomMaterial describes a material that is not in the catalog.
type CustomMaterial struct {
	Name string
	Unit string
}

func (CatalogMaterial) isMaterialRef() {}
func (CustomMaterial) isMaterialRef()  {}

// MaterialRef returns the material variant stored on the auction, or nil if
// neither column pair is populated.
func (a *Auction) MaterialRef() MaterialRef {
	if a.MaterialID != nil && *a.MaterialID != "" {
		return CatalogMaterial{ID: *a.MaterialID}
	}
	if a.CustomMaterialName != nil {
		unit := ""
		if a.CustomMaterialUnit != nil {
			unit = *a.CustomMaterialUnit
		}
		return CustomMaterial{Name: *a.CustomMaterialName, Unit: unit}
	}
	return nil
}

// SetMaterial stores ref, clearing the columns of the other variant.
func (a *Auction) SetMaterial(ref MaterialRef) {
	a.MaterialID, a.CustomMaterialName, a.CustomMaterialUnit = nil, nil, nil
	switch m := ref.(type) {
	case CatalogMaterial:
		id := m.ID
		a.MaterialID = &id
	case CustomMaterial:
		name, unit := m.Name, m.Unit
		a.CustomMaterialName = &name
		a.CustomMaterialUnit = &unit
	}
}

// MaterialName resolves the display name of the material. Catalog materials
// need the Material association loaded.
func (a *Auction) MaterialName() string {
	switch m := a.MaterialRef().(type) {
	case CatalogMaterial:
		if a.Material != nil {
			return a.Material.Name
		}
	case CustomMaterial:
		return m.Name
	}
	return ""
}

// MaterialUnit resolves the unit: the catalog or custom unit, falling back to
// the auction's own unit.
func (a *Auction) MaterialUnit() string {
	switch m := a.MaterialRef().(type) {
	case CatalogMaterial:
		if a.Material != nil && a.Material.Unit != "" {
			return a.Material.Unit
		}
	case CustomMaterial:
		if m.Unit != "" {
			return m.Unit
		}
	}
	return a.Unit
}

// InvitationStatus tracks whether an invited supplier has bid yet.
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "pending"
	InvitationStatusBidPlaced InvitationStatus = "bid_placed"
)

// Invitation authorises one supplier to view and bid on one auction.
type Invitation struct {
	ID         string           `json:"id" gorm:"primaryKey;size:36"`
	AuctionID  string           `json:"auction_id" gorm:"size:36;not null;uniqueIndex:idx_invitation_auction_supplier"`
	SupplierID string           `json:"supplier_id" gorm:"size:36;not null;uniqueIndex:idx_invitation_auction_supplier;index"`
	Status     InvitationStatus `json:"status" gorm:"size:16;not null;default:pending"`
	InvitedAt  time.Time        `json:"invited_at"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

// Bid is an append-only price offer. Lower wins.
type Bid struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	AuctionID  string          `json:"auction_id" gorm:"size:36;not null;index:idx_bid_auction_amount,priority:1"`
	SupplierID string          `json:"supplier_id" gorm:"size:36;not null;index"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null;index:idx_bid_auction_amount,priority:2"`
	CreatedAt  time.Time       `json:"created_at"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}
