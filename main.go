package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-backend/config"
	"auction-backend/controllers"
	"auction-backend/models"
	"auction-backend/routes"
	"auction-backend/services"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("Failed to load configuration", map[string]interface{}{"error": err.Error()})
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Database
	db, err := models.InitDB(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		utils.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	if err := models.AutoMigrate(db); err != nil {
		utils.Fatal("Failed to migrate database", map[string]interface{}{"error": err.Error()})
	}

	if err := controllers.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.Fatal("Failed to seed admin account", map[string]interface{}{"error": err.Error()})
	}
	controllers.SeedCategories(db)

	// Auction engine and websocket hub
	hub := services.NewHub()
	auctions := services.NewAuctionService(services.NewGormAuctionStore(db), hub)
	hub.SetAccessChecker(auctions.CanSubscribe)
	go hub.Run()

	closed, rearmed, err := auctions.ReconcileOnStartup(context.Background())
	if err != nil {
		utils.Error("Some active auctions were not reconciled", map[string]interface{}{"error": err.Error()})
	}
	utils.Info("Active auctions reconciled", map[string]interface{}{"closed": closed, "rearmed": rearmed})

	app := setupApp(db, auctions, hub, cfg.CORSOrigins)

	go func() {
		utils.Info("Server starting", map[string]interface{}{"addr": cfg.ListenAddr()})
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			utils.Fatal("Server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Info("Shutting down", nil)
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		utils.Error("Server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	auctions.Shutdown()
	hub.Stop()
}

// setupApp builds the Fiber application with every route registered.
func setupApp(db *gorm.DB, auctions *services.AuctionService, hub *services.Hub, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"code":    code,
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupAuthRoutes(app, controllers.NewAuthController(db))
	routes.SetupAuctionRoutes(app, controllers.NewAuctionController(auctions))
	routes.SetupCatalogRoutes(app, controllers.NewCatalogController(db))
	routes.SetupStatsRoutes(app, controllers.NewDashboardController(db))

	// WebSocket: token is passed as ?token=
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(hub.HandleWebSocket))

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "Auction backend is running",
			"timestamp": time.Now().Unix(),
		})
	})

	return app
}
