package routes

import (
	"auction-backend/controllers"
	"auction-backend/models"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupStatsRoutes registers dashboard routes.
func SetupStatsRoutes(app *fiber.App, dashboardController *controllers.DashboardController) {
	stats := app.Group("/api/stats", utils.AuthMiddleware)

	// GET /api/stats/dashboard - catalog and auction totals for administrators
	stats.Get("/dashboard", utils.RequireRole(models.RoleAdmin), dashboardController.GetDashboardData)

	// GET /api/stats/me - the calling supplier's own activity
	stats.Get("/me", utils.RequireRole(models.RoleSupplier), dashboardController.GetSupplierDashboard)
}
