package controllers

import (
	"time"

	"auction-backend/models"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardController serves the summary screens for admins and suppliers.
type DashboardController struct {
	db *gorm.DB
}

// NewDashboardController creates a new DashboardController.
func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{db: db}
}

// AuctionCounts is the number of auctions per status.
type AuctionCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// RecentAuction is one row of the recent auctions widget.
type RecentAuction struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Status       models.AuctionStatus `json:"status"`
	MaterialName string               `json:"material_name"`
	BidsCount    int64                `json:"bids_count"`
	CreatedAt    time.Time            `json:"created_at"`
}

// TopSupplier is a supplier ranked by completed auctions won.
type TopSupplier struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	City        string `json:"city"`
	Wins        int64  `json:"wins"`
}

// GetDashboardData handles GET /api/stats/dashboard (admin).
func (dc *DashboardController) GetDashboardData(c *fiber.Ctx) error {
	var stats struct {
		CategoriesCount   int64           `json:"categories_count"`
		MaterialsCount    int64           `json:"materials_count"`
		SuppliersCount    int64           `json:"suppliers_count"`
		Auctions          AuctionCounts   `json:"auctions"`
		RecentAuctions    []RecentAuction `json:"recent_auctions"`
		TopSuppliers      []TopSupplier   `json:"top_suppliers"`
		TotalAuctionValue decimal.Decimal `json:"total_auction_value"`
	}

	dc.db.Model(&models.MaterialCategory{}).Count(&stats.CategoriesCount)
	dc.db.Model(&models.Material{}).Count(&stats.MaterialsCount)
	dc.db.Model(&models.Supplier{}).Count(&stats.SuppliersCount)

	counts, err := dc.auctionCounts(dc.db.Model(&models.Auction{}))
	if err != nil {
		return dc.fail(c, err)
	}
	stats.Auctions = counts

	stats.RecentAuctions = make([]RecentAuction, 0, 5)
	err = dc.db.Table("auctions AS a").
		Select("a.id, a.title, a.status, a.created_at, " +
			"COALESCE(m.name, a.custom_material_name, '') AS material_name, " +
			"(SELECT COUNT(*) FROM bids b WHERE b.auction_id = a.id) AS bids_count").
		Joins("LEFT JOIN materials m ON m.id = a.material_id").
		Order("a.created_at DESC").
		Limit(5).
		Scan(&stats.RecentAuctions).Error
	if err != nil {
		return dc.fail(c, err)
	}

	stats.TopSuppliers = make([]TopSupplier, 0, 5)
	err = dc.db.Table("suppliers AS s").
		Select("s.id, s.company_name, s.city, COUNT(a.id) AS wins").
		Joins("JOIN auctions a ON a.winner_id = s.id").
		Where("a.status = ?", models.AuctionStatusCompleted).
		Group("s.id, s.company_name, s.city").
		Order("wins DESC").
		Limit(5).
		Scan(&stats.TopSuppliers).Error
	if err != nil {
		return dc.fail(c, err)
	}

	err = dc.db.Model(&models.Auction{}).
		Select("COALESCE(SUM(winning_bid), 0)").
		Where("status = ? AND winning_bid IS NOT NULL", models.AuctionStatusCompleted).
		Row().Scan(&stats.TotalAuctionValue)
	if err != nil {
		return dc.fail(c, err)
	}

	return c.JSON(stats)
}

// GetSupplierDashboard handles GET /api/stats/me (supplier). Wins are only
// counted once results are published.
func (dc *DashboardController) GetSupplierDashboard(c *fiber.Ctx) error {
	supplierID, _ := c.Locals("supplier_id").(string)
	if supplierID == "" {
		return c.Status(403).JSON(fiber.Map{
			"error": "No supplier profile linked to this account",
		})
	}

	invited := dc.db.Model(&models.Auction{}).
		Where("id IN (?)", dc.db.Model(&models.Invitation{}).Select("auction_id").Where("supplier_id = ?", supplierID))
	counts, err := dc.auctionCounts(invited)
	if err != nil {
		return dc.fail(c, err)
	}

	var bidsPlaced, wins int64
	dc.db.Model(&models.Bid{}).Where("supplier_id = ?", supplierID).Count(&bidsPlaced)
	dc.db.Model(&models.Auction{}).
		Where("winner_id = ? AND status = ? AND results_published = ?", supplierID, models.AuctionStatusCompleted, true).
		Count(&wins)

	return c.JSON(fiber.Map{
		"invited_auctions": counts,
		"bids_placed":      bidsPlaced,
		"auctions_won":     wins,
	})
}

func (dc *DashboardController) auctionCounts(query *gorm.DB) (AuctionCounts, error) {
	var rows []struct {
		Status models.AuctionStatus
		Count  int64
	}
	if err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return AuctionCounts{}, err
	}

	var counts AuctionCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Status {
		case models.AuctionStatusPending:
			counts.Pending = row.Count
		case models.AuctionStatusActive:
			counts.Active = row.Count
		case models.AuctionStatusCompleted:
			counts.Completed = row.Count
		case models.AuctionStatusCancelled:
			counts.Cancelled = row.Count
		}
	}
	return counts, nil
}

func (dc *DashboardController) fail(c *fiber.Ctx, err error) error {
	utils.Error("Dashboard query failed", map[string]interface{}{"error": err.Error()})
	return c.Status(500).JSON(fiber.Map{
		"error": "Failed to load statistics",
	})
}
