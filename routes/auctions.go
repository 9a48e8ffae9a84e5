package routes

import (
	"auction-backend/controllers"
	"auction-backend/models"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupAuctionRoutes registers the auction routes. Every route requires a token.
func SetupAuctionRoutes(app *fiber.App, auctionController *controllers.AuctionController) {
	auctions := app.Group("/api/auctions", utils.AuthMiddleware)
	adminOnly := utils.RequireRole(models.RoleAdmin)

	// GET /api/auctions - list auctions (suppliers see invited ones only)
	auctions.Get("/", auctionController.ListAuctions)

	// GET /api/auctions/:id - auction details, projected per caller
	auctions.Get("/:id", auctionController.GetAuction)

	// POST /api/auctions - create a pending auction
	auctions.Post("/", adminOnly, auctionController.CreateAuction)

	// POST /api/auctions/:id/invite - invite suppliers
	auctions.Post("/:id/invite", adminOnly, auctionController.InviteSuppliers)

	// DELETE /api/auctions/:id/invite/:supplierId - withdraw an invitation
	auctions.Delete("/:id/invite/:supplierId", adminOnly, auctionController.RemoveInvitation)

	// POST /api/auctions/:id/start - open bidding
	auctions.Post("/:id/start", adminOnly, auctionController.StartAuction)

	// POST /api/auctions/:id/bid - place a bid
	auctions.Post("/:id/bid", utils.RequireRole(models.RoleSupplier), auctionController.PlaceBid)

	// POST /api/auctions/:id/publish-results - reveal results to bidders
	auctions.Post("/:id/publish-results", adminOnly, auctionController.PublishResults)

	// POST /api/auctions/:id/cancel - cancel a pending or active auction
	auctions.Post("/:id/cancel", adminOnly, auctionController.CancelAuction)

	// DELETE /api/auctions/:id - delete a finished auction
	auctions.Delete("/:id", adminOnly, auctionController.DeleteAuction)
}
