package routes

import (
	"auction-backend/controllers"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes registers login and current-user routes.
func SetupAuthRoutes(app *fiber.App, authController *controllers.AuthController) {
	auth := app.Group("/api/auth")

	// POST /api/auth/login - exchange credentials for an access token
	auth.Post("/login", authController.Login)

	// GET /api/auth/me - current user
	auth.Get("/me", utils.AuthMiddleware, authController.Me)
}
