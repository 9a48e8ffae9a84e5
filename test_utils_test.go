package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"auction-backend/models"
	"auction-backend/services"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdminPassword = "admin-password"

var ctxTest = context.Background()

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

type testApp struct {
	app      *fiber.App
	db       *gorm.DB
	auctions *services.AuctionService
	admin    models.User
}

// setupTestDB opens a private in-memory database with every table migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	utils.ConfigureJWT("test-secret", time.Hour)
	db := setupTestDB(t)

	hub := services.NewHub()
	auctions := services.NewAuctionService(services.NewGormAuctionStore(db), hub)
	hub.SetAccessChecker(auctions.CanSubscribe)
	t.Cleanup(auctions.Shutdown)

	hash, err := utils.HashPassword(testAdminPassword)
	require.NoError(t, err)
	admin := models.User{
		Email:        "admin@test.pl",
		PasswordHash: hash,
		Name:         "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&admin).Error)

	return &testApp{
		app:      setupApp(db, auctions, hub, "*"),
		db:       db,
		auctions: auctions,
		admin:    admin,
	}
}

// createTestSupplier creates a supplier with an active login account.
func (ta *testApp) createTestSupplier(t *testing.T, company string) (models.Supplier, models.User) {
	t.Helper()

	user := models.User{
		Email:        uuid.NewString() + "@supplier.pl",
		PasswordHash: "unused",
		Name:         company,
		Company:      company,
		Role:         models.RoleSupplier,
		IsActive:     true,
	}
	require.NoError(t, ta.db.Create(&user).Error)

	supplier := models.Supplier{CompanyName: company, City: "Gdańsk", UserID: &user.ID}
	require.NoError(t, ta.db.Create(&supplier).Error)
	return supplier, user
}

func (ta *testApp) adminToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateJWT(ta.admin.ID, ta.admin.Email, models.RoleAdmin, "")
	require.NoError(t, err)
	return token
}

func supplierToken(t *testing.T, supplier models.Supplier, user models.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Email, models.RoleSupplier, supplier.ID)
	require.NoError(t, err)
	return token
}

// do sends a JSON request and decodes the JSON response into a map.
func (ta *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonData)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}
