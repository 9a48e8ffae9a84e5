package routes

import (
	"auction-backend/controllers"
	"auction-backend/models"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupCatalogRoutes registers supplier and material catalog routes.
func SetupCatalogRoutes(app *fiber.App, catalogController *controllers.CatalogController) {
	adminOnly := utils.RequireRole(models.RoleAdmin)

	// Supplier data is visible to administrators only
	suppliers := app.Group("/api/suppliers", utils.AuthMiddleware, adminOnly)

	// GET /api/suppliers - list suppliers
	suppliers.Get("/", catalogController.GetSuppliers)

	// GET /api/suppliers/:id - supplier details
	suppliers.Get("/:id", catalogController.GetSupplier)

	// POST /api/suppliers - add a supplier, optionally with a login account
	suppliers.Post("/", catalogController.CreateSupplier)

	materials := app.Group("/api/materials", utils.AuthMiddleware)

	// GET /api/materials/categories - list categories (before /:id)
	materials.Get("/categories", catalogController.GetCategories)

	// POST /api/materials/categories - add a category
	materials.Post("/categories", adminOnly, catalogController.CreateCategory)

	// GET /api/materials - list materials
	materials.Get("/", catalogController.GetMaterials)

	// GET /api/materials/:id - material details
	materials.Get("/:id", catalogController.GetMaterial)

	// POST /api/materials - add a material
	materials.Post("/", adminOnly, catalogController.CreateMaterial)
}
