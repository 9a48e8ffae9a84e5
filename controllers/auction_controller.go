package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-backend/models"
	"auction-backend/services"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AuctionController exposes the auction engine over HTTP.
type AuctionController struct {
	Auctions *services.AuctionService
	log      *logrus.Entry
}

// NewAuctionController creates a new AuctionController.
func NewAuctionController(auctions *services.AuctionService) *AuctionController {
	return &AuctionController{
		Auctions: auctions,
		log:      utils.Logger("auction_controller"),
	}
}

// CreateAuctionRequest is the body of POST /api/auctions. Either material_id
// or custom_material_name with custom_material_unit must be given.
type CreateAuctionRequest struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	MaterialID         string          `json:"material_id"`
	CustomMaterialName string          `json:"custom_material_name"`
	CustomMaterialUnit string          `json:"custom_material_unit"`
	Quantity           decimal.Decimal `json:"quantity"`
	Unit               string          `json:"unit"`
	DurationMinutes    int             `json:"duration_minutes"`
	SupplierIDs        []string        `json:"supplier_ids"`
}

// InviteRequest is the body of POST /api/auctions/:id/invite.
type InviteRequest struct {
	SupplierIDs []string `json:"supplier_ids"`
}

// BidRequest is the body of POST /api/auctions/:id/bid.
type BidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// principalFrom reads the caller set by utils.AuthMiddleware.
func principalFrom(c *fiber.Ctx) services.Principal {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	supplierID, _ := c.Locals("supplier_id").(string)
	return services.Principal{UserID: userID, Role: role, SupplierID: supplierID}
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrValidation, fiber.StatusBadRequest, "VALIDATION_ERROR"},
	{services.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{services.ErrNotInvited, fiber.StatusForbidden, "NOT_INVITED"},
	{services.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{services.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{services.ErrAlreadyTerminal, fiber.StatusConflict, "ALREADY_TERMINAL"},
	{services.ErrAlreadyPublished, fiber.StatusConflict, "ALREADY_PUBLISHED"},
	{services.ErrActiveDeletion, fiber.StatusConflict, "ACTIVE_DELETION"},
	{services.ErrNotActive, fiber.StatusConflict, "NOT_ACTIVE"},
	{services.ErrAuctionExpired, fiber.StatusConflict, "AUCTION_EXPIRED"},
	{services.ErrPreconditionFailed, fiber.StatusUnprocessableEntity, "PRECONDITION_FAILED"},
}

// respondError maps engine errors to status codes. Anything unrecognised is
// logged and reported as 500 without details.
func respondError(c *fiber.Ctx, log *logrus.Entry, err error) error {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(fiber.Map{
				"error": err.Error(),
				"code":  e.code,
			})
		}
	}

	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// ListAuctions handles GET /api/auctions.
func (ac *AuctionController) ListAuctions(c *fiber.Ctx) error {
	filter := services.AuctionFilter{
		Status:     models.AuctionStatus(c.Query("status")),
		MaterialID: c.Query("material_id"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", services.DefaultPageLimit),
	}

	page, err := ac.Auctions.List(c.UserContext(), principalFrom(c), filter)
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(page)
}

// GetAuction handles GET /api/auctions/:id.
func (ac *AuctionController) GetAuction(c *fiber.Ctx) error {
	view, err := ac.Auctions.Get(c.UserContext(), principalFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(view)
}

// CreateAuction handles POST /api/auctions.
func (ac *AuctionController) CreateAuction(c *fiber.Ctx) error {
	var req CreateAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	material, err := req.material()
	if err != nil {
		return respondError(c, ac.log, err)
	}

	auction, err := ac.Auctions.Create(c.UserContext(), principalFrom(c), services.AuctionSpec{
		Title:           req.Title,
		Description:     req.Description,
		Material:        material,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		DurationMinutes: req.DurationMinutes,
		SupplierIDs:     req.SupplierIDs,
	})
	if err != nil {
		return respondError(c, ac.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Auction created",
		"auction_id": auction.ID,
		"status":     auction.Status,
	})
}

func (r *CreateAuctionRequest) material() (models.MaterialRef, error) {
	materialID := strings.TrimSpace(r.MaterialID)
	customName := strings.TrimSpace(r.CustomMaterialName)

	switch {
	case materialID != "" && customName != "":
		return nil, fmt.Errorf("%w: material_id and custom_material_name are mutually exclusive", services.ErrValidation)
	case materialID != "":
		return models.CatalogMaterial{ID: materialID}, nil
	case customName != "":
		return models.CustomMaterial{Name: customName, Unit: r.CustomMaterialUnit}, nil
	}
	return nil, nil
}

// InviteSuppliers handles POST /api/auctions/:id/invite.
func (ac *AuctionController) InviteSuppliers(c *fiber.Ctx) error {
	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	added, err := ac.Auctions.Invite(c.UserContext(), principalFrom(c), c.Params("id"), req.SupplierIDs)
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Suppliers invited",
		"added":   added,
	})
}

// RemoveInvitation handles DELETE /api/auctions/:id/invite/:supplierId.
func (ac *AuctionController) RemoveInvitation(c *fiber.Ctx) error {
	err := ac.Auctions.Uninvite(c.UserContext(), principalFrom(c), c.Params("id"), c.Params("supplierId"))
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(fiber.Map{"message": "Invitation removed"})
}

// StartAuction handles POST /api/auctions/:id/start.
func (ac *AuctionController) StartAuction(c *fiber.Ctx) error {
	auction, err := ac.Auctions.Start(c.UserContext(), principalFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(fiber.Map{
		"message":    "Auction started",
		"start_time": auction.StartTime,
		"end_time":   auction.EndTime,
	})
}

// PlaceBid handles POST /api/auctions/:id/bid.
func (ac *AuctionController) PlaceBid(c *fiber.Ctx) error {
	var req BidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	res, err := ac.Auctions.PlaceBid(c.UserContext(), principalFrom(c), c.Params("id"), req.Amount)
	if err != nil {
		return respondError(c, ac.log, err)
	}

	message := "Bid placed"
	var newEnd *time.Time
	if res.TimeExtended {
		message = "Bid placed, auction extended by 30s"
		newEnd = &res.EndTime
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       message,
		"bid_id":        res.Bid.ID,
		"amount":        res.Bid.Amount,
		"lowest_bid":    res.LowestBid,
		"bids_count":    res.BidsCount,
		"time_extended": res.TimeExtended,
		"new_end_time":  newEnd,
	})
}

// PublishResults handles POST /api/auctions/:id/publish-results.
func (ac *AuctionController) PublishResults(c *fiber.Ctx) error {
	if err := ac.Auctions.PublishResults(c.UserContext(), principalFrom(c), c.Params("id")); err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(fiber.Map{"message": "Results published"})
}

// CancelAuction handles POST /api/auctions/:id/cancel.
func (ac *AuctionController) CancelAuction(c *fiber.Ctx) error {
	if err := ac.Auctions.Cancel(c.UserContext(), principalFrom(c), c.Params("id")); err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(fiber.Map{"message": "Auction cancelled"})
}

// DeleteAuction handles DELETE /api/auctions/:id.
func (ac *AuctionController) DeleteAuction(c *fiber.Ctx) error {
	if err := ac.Auctions.Delete(c.UserContext(), principalFrom(c), c.Params("id")); err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(fiber.Map{"message": "Auction deleted"})
}
