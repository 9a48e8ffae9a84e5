package services

//go:generate mockgen -source=auction_store.go -destination=mock_auction_store.go -package=services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuctionFilter narrows ListAuctions.
type AuctionFilter struct {
	Status     models.AuctionStatus
	MaterialID string
	// SupplierID limits the result to auctions the supplier is invited to.
	SupplierID string
	Page       int
	Limit      int
}

// StatusChange is applied by TransitionStatus together with the new status.
type StatusChange struct {
	To        models.AuctionStatus
	StartTime *time.Time
	EndTime   *time.Time
	// SetWinner writes WinnerID and WinningBid, including clearing them to NULL.
	SetWinner  bool
	WinnerID   *string
	WinningBid decimal.NullDecimal
}

// BidStats aggregates the bids of one auction.
type BidStats struct {
	Count  int64
	Lowest decimal.NullDecimal
}

// AuctionStore is the persistence boundary of the auction engine.
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction *models.Auction, supplierIDs []string) error
	GetAuction(ctx context.Context, id string) (*models.Auction, error)
	Snapshot(ctx context.Context, id string) (*AuctionSnapshot, error)
	ListAuctions(ctx context.Context, filter AuctionFilter) ([]AuctionSummary, int64, error)
	ActiveAuctions(ctx context.Context) ([]models.Auction, error)

	GetMaterial(ctx context.Context, id string) (*models.Material, error)
	MissingSuppliers(ctx context.Context, ids []string) ([]string, error)

	AddInvitations(ctx context.Context, auctionID string, supplierIDs []string, at time.Time) (int64, error)
	RemoveInvitation(ctx context.Context, auctionID, supplierID string) (bool, error)
	CountInvitations(ctx context.Context, auctionID string) (int64, error)
	HasInvitation(ctx context.Context, auctionID, supplierID string) (bool, error)

	// TransitionStatus updates the auction only if its current status is in
	// from. It reports whether the row changed.
	TransitionStatus(ctx context.Context, id string, from []models.AuctionStatus, change StatusChange) (bool, error)
	MarkResultsPublished(ctx context.Context, id string) (bool, error)

	// RecordBid inserts the bid and marks the invitation as bid_placed. When
	// newEndTime is set the auction's end_time is moved in the same
	// transaction; ErrNotActive is returned if the auction left active.
	RecordBid(ctx context.Context, bid *models.Bid, newEndTime *time.Time) error
	BidStats(ctx context.Context, auctionID string) (BidStats, error)
	// LowestBid returns the minimum-amount bid, earliest first on ties, or nil.
	LowestBid(ctx context.Context, auctionID string) (*models.Bid, error)

	// DeleteAuction removes bids, invitations and the auction if its status is
	// in allowed. It reports whether the auction was deleted.
	DeleteAuction(ctx context.Context, id string, allowed []models.AuctionStatus) (bool, error)
}

type gormAuctionStore struct {
	db *gorm.DB
}

// NewGormAuctionStore returns an AuctionStore backed by gorm.
func NewGormAuctionStore(db *gorm.DB) AuctionStore {
	return &gormAuctionStore{db: db}
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("store: get %s %s: %w", what, id, err)
}

func (s *gormAuctionStore) CreateAuction(ctx context.Context, auction *models.Auction, supplierIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(auction).Error; err != nil {
			return fmt.Errorf("store: create auction: %w", err)
		}
		if _, err := insertInvitations(tx, auction.ID, supplierIDs, auction.CreatedAt); err != nil {
			return err
		}
		return nil
	})
}

func insertInvitations(tx *gorm.DB, auctionID string, supplierIDs []string, at time.Time) (int64, error) {
	if len(supplierIDs) == 0 {
		return 0, nil
	}
	invitations := make([]models.Invitation, 0, len(supplierIDs))
	for _, sid := range supplierIDs {
		invitations = append(invitations, models.Invitation{
			AuctionID:  auctionID,
			SupplierID: sid,
			Status:     models.InvitationStatusPending,
			InvitedAt:  at,
		})
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&invitations)
	if res.Error != nil {
		return 0, fmt.Errorf("store: insert invitations for auction %s: %w", auctionID, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *gormAuctionStore) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	var auction models.Auction
	if err := s.db.WithContext(ctx).First(&auction, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "auction", id)
	}
	return &auction, nil
}

func (s *gormAuctionStore) Snapshot(ctx context.Context, id string) (*AuctionSnapshot, error) {
	db := s.db.WithContext(ctx)

	var snap AuctionSnapshot
	if err := db.Preload("Material.Category").Preload("Winner").First(&snap.Auction, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "auction", id)
	}
	if err := db.Preload("Supplier").Where("auction_id = ?", id).
		Order("amount ASC").Order("created_at ASC").Find(&snap.Bids).Error; err != nil {
		return nil, fmt.Errorf("store: bids of auction %s: %w", id, err)
	}
	if err := db.Preload("Supplier").Where("auction_id = ?", id).
		Order("invited_at ASC").Find(&snap.Invitations).Error; err != nil {
		return nil, fmt.Errorf("store: invitations of auction %s: %w", id, err)
	}
	return &snap, nil
}

func (s *gormAuctionStore) ListAuctions(ctx context.Context, filter AuctionFilter) ([]AuctionSummary, int64, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&models.Auction{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MaterialID != "" {
		query = query.Where("material_id = ?", filter.MaterialID)
	}
	if filter.SupplierID != "" {
		invited := db.Model(&models.Invitation{}).Select("auction_id").Where("supplier_id = ?", filter.SupplierID)
		query = query.Where("id IN (?)", invited)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("store: count auctions: %w", err)
	}

	var auctions []models.Auction
	err := query.Preload("Material.Category").Preload("Winner").
		Order("created_at DESC").
		Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit).
		Find(&auctions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("store: list auctions: %w", err)
	}
	if len(auctions) == 0 {
		return []AuctionSummary{}, total, nil
	}

	ids := make([]string, 0, len(auctions))
	for _, a := range auctions {
		ids = append(ids, a.ID)
	}

	type statsRow struct {
		AuctionID string
		BidsCount int64
		LowestBid decimal.NullDecimal
	}
	var stats []statsRow
	err = db.Model(&models.Bid{}).
		Select("auction_id, COUNT(*) AS bids_count, MIN(amount) AS lowest_bid").
		Where("auction_id IN ?", ids).
		Group("auction_id").
		Scan(&stats).Error
	if err != nil {
		return nil, 0, fmt.Errorf("store: bid stats: %w", err)
	}
	byAuction := make(map[string]statsRow, len(stats))
	for _, st := range stats {
		byAuction[st.AuctionID] = st
	}

	rows := make([]AuctionSummary, 0, len(auctions))
	for _, a := range auctions {
		st := byAuction[a.ID]
		rows = append(rows, AuctionSummary{Auction: a, BidsCount: st.BidsCount, LowestBid: st.LowestBid})
	}
	return rows, total, nil
}

func (s *gormAuctionStore) ActiveAuctions(ctx context.Context) ([]models.Auction, error) {
	var auctions []models.Auction
	err := s.db.WithContext(ctx).Where("status = ?", models.AuctionStatusActive).Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("store: active auctions: %w", err)
	}
	return auctions, nil
}

func (s *gormAuctionStore) GetMaterial(ctx context.Context, id string) (*models.Material, error) {
	var material models.Material
	if err := s.db.WithContext(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "material", id)
	}
	return &material, nil
}

func (s *gormAuctionStore) MissingSuppliers(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []string
	err := s.db.WithContext(ctx).Model(&models.Supplier{}).Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("store: lookup suppliers: %w", err)
	}
	known := make(map[string]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (s *gormAuctionStore) AddInvitations(ctx context.Context, auctionID string, supplierIDs []string, at time.Time) (int64, error) {
	return insertInvitations(s.db.WithContext(ctx), auctionID, supplierIDs, at)
}

func (s *gormAuctionStore) RemoveInvitation(ctx context.Context, auctionID, supplierID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("auction_id = ? AND supplier_id = ?", auctionID, supplierID).
		Delete(&models.Invitation{})
	if res.Error != nil {
		return false, fmt.Errorf("store: remove invitation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormAuctionStore) CountInvitations(ctx context.Context, auctionID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Invitation{}).Where("auction_id = ?", auctionID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("store: count invitations: %w", err)
	}
	return count, nil
}

func (s *gormAuctionStore) HasInvitation(ctx context.Context, auctionID, supplierID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("auction_id = ? AND supplier_id = ?", auctionID, supplierID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("store: check invitation: %w", err)
	}
	return count > 0, nil
}

func (s *gormAuctionStore) TransitionStatus(ctx context.Context, id string, from []models.AuctionStatus, change StatusChange) (bool, error) {
	updates := map[string]interface{}{"status": change.To}
	if change.StartTime != nil {
		updates["start_time"] = *change.StartTime
	}
	if change.EndTime != nil {
		updates["end_time"] = *change.EndTime
	}
	if change.SetWinner {
		updates["winner_id"] = change.WinnerID
		updates["winning_bid"] = change.WinningBid
	}

	res := s.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("store: transition auction %s to %s: %w", id, change.To, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormAuctionStore) MarkResultsPublished(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Auction{}).
		Where("id = ? AND status = ? AND results_published = ?", id, models.AuctionStatusCompleted, false).
		Update("results_published", true)
	if res.Error != nil {
		return false, fmt.Errorf("store: publish results of auction %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *gormAuctionStore) RecordBid(ctx context.Context, bid *models.Bid, newEndTime *time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bid).Error; err != nil {
			return fmt.Errorf("store: insert bid: %w", err)
		}

		err := tx.Model(&models.Invitation{}).
			Where("auction_id = ? AND supplier_id = ?", bid.AuctionID, bid.SupplierID).
			Update("status", models.InvitationStatusBidPlaced).Error
		if err != nil {
			return fmt.Errorf("store: mark invitation: %w", err)
		}

		if newEndTime != nil {
			res := tx.Model(&models.Auction{}).
				Where("id = ? AND status = ?", bid.AuctionID, models.AuctionStatusActive).
				Update("end_time", *newEndTime)
			if res.Error != nil {
				return fmt.Errorf("store: extend auction %s: %w", bid.AuctionID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("extend auction %s: %w", bid.AuctionID, ErrNotActive)
			}
		}
		return nil
	})
}

func (s *gormAuctionStore) BidStats(ctx context.Context, auctionID string) (BidStats, error) {
	var row struct {
		Count  int64
		Lowest decimal.NullDecimal
	}
	err := s.db.WithContext(ctx).Model(&models.Bid{}).
		Select("COUNT(*) AS count, MIN(amount) AS lowest").
		Where("auction_id = ?", auctionID).
		Scan(&row).Error
	if err != nil {
		return BidStats{}, fmt.Errorf("store: bid stats of auction %s: %w", auctionID, err)
	}
	return BidStats{Count: row.Count, Lowest: row.Lowest}, nil
}

func (s *gormAuctionStore) LowestBid(ctx context.Context, auctionID string) (*models.Bid, error) {
	var bid models.Bid
	err := s.db.WithContext(ctx).Preload("Supplier").
		Where("auction_id = ?", auctionID).
		Order("amount ASC").Order("created_at ASC").Order("id ASC").
		Take(&bid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: lowest bid of auction %s: %w", auctionID, err)
	}
	return &bid, nil
}

func (s *gormAuctionStore) DeleteAuction(ctx context.Context, id string, allowed []models.AuctionStatus) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var auction models.Auction
		err := tx.Where("id = ? AND status IN ?", id, allowed).
			Take(&auction).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("store: load auction %s: %w", id, err)
		}

		if err := tx.Where("auction_id = ?", id).Delete(&models.Bid{}).Error; err != nil {
			return fmt.Errorf("store: delete bids of auction %s: %w", id, err)
		}
		if err := tx.Where("auction_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("store: delete invitations of auction %s: %w", id, err)
		}
		if err := tx.Delete(&models.Auction{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("store: delete auction %s: %w", id, err)
		}
		deleted = true
		return nil
	})
	return deleted, err
}
