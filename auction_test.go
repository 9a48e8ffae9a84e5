package main

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"auction-backend/models"
	"auction-backend/services"
	"auction-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestHealth(t *testing.T) {
	ta := setupTestApp(t)

	status, body := ta.do(t, "GET", "/api/health", "", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin(t *testing.T) {
	ta := setupTestApp(t)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
	}{
		{"valid credentials", map[string]string{"email": "ADMIN@test.pl", "password": testAdminPassword}, 200},
		{"wrong password", map[string]string{"email": "admin@test.pl", "password": "nope"}, 401},
		{"unknown user", map[string]string{"email": "ghost@test.pl", "password": "whatever"}, 401},
		{"missing fields", map[string]string{"email": ""}, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ta.do(t, "POST", "/api/auth/login", "", tt.request)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedStatus == 200 {
				assert.NotEmpty(t, body["token"])
				user := body["user"].(map[string]interface{})
				assert.Equal(t, models.RoleAdmin, user["role"])
			}
		})
	}
}

func TestSupplierLoginCarriesSupplierID(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)

	status, body := ta.do(t, "POST", "/api/suppliers", admin, map[string]interface{}{
		"company_name": "Stal-Pol",
		"nip":          "526-025-02-74",
		"city":         "Poznań",
		"is_local":     true,
		"email":        "biuro@stalpol.pl",
		"password":     "supplier-pass",
	})
	require.Equal(t, 201, status, body)
	supplierID := body["id"].(string)
	assert.Equal(t, "5260250274", body["nip"])

	status, body = ta.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "biuro@stalpol.pl",
		"password": "supplier-pass",
	})
	require.Equal(t, 200, status, body)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, models.RoleSupplier, user["role"])
	assert.Equal(t, supplierID, user["supplier_id"])

	status, body = ta.do(t, "GET", "/api/auth/me", body["token"].(string), nil)
	require.Equal(t, 200, status)
	assert.Equal(t, supplierID, body["supplier_id"])
}

func TestCreateSupplierValidation(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)
	require.True(t, ta.db.Migrator().HasColumn(&models.Supplier{}, "nip"))

	status, _ := ta.do(t, "POST", "/api/suppliers", admin, map[string]interface{}{"company_name": "Bad NIP", "nip": "1234567890"})
	assert.Equal(t, 400, status)

	status, _ = ta.do(t, "POST", "/api/suppliers", admin, map[string]interface{}{"nip": "5260250274"})
	assert.Equal(t, 400, status)

	status, _ = ta.do(t, "POST", "/api/suppliers", admin, map[string]interface{}{"company_name": "Alfa", "nip": "5260250274"})
	require.Equal(t, 201, status)
	status, _ = ta.do(t, "POST", "/api/suppliers", admin, map[string]interface{}{"company_name": "Alfa bis", "nip": "5260250274"})
	assert.Equal(t, 409, status)
	status, _ = ta.do(t, "POST", "/api/suppliers", admin, map[string]interface{}{"company_name": "ALFA"})
	assert.Equal(t, 409, status)
}

func TestCreateSupplierNameLookupFailure(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)

	err := ta.db.Callback().Query().Before("gorm:query").Register("fail_supplier_reads", func(db *gorm.DB) {
		if db.Statement.Table == "suppliers" {
			db.AddError(errors.New("connection reset"))
		}
	})
	require.NoError(t, err)

	status, body := ta.do(t, "POST", "/api/suppliers", admin, map[string]interface{}{"company_name": "Gamma"})
	assert.Equal(t, 500, status)
	assert.Equal(t, "Failed to check company name", body["error"])

	require.NoError(t, ta.db.Callback().Query().Remove("fail_supplier_reads"))
	var count int64
	require.NoError(t, ta.db.Model(&models.Supplier{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginDisabledAccount(t *testing.T) {
	ta := setupTestApp(t)

	hash, err := utils.HashPassword("supplier-password")
	require.NoError(t, err)
	user := models.User{Email: "off@supplier.pl", PasswordHash: hash, Name: "Off", Role: models.RoleSupplier}
	require.NoError(t, ta.db.Create(&user).Error)

	tests := []struct {
		name           string
		password       string
		expectedStatus int
		expectedError  string
	}{
		{"correct password", "supplier-password", 401, "Account is disabled"},
		{"wrong password", "nope", 401, "Invalid email or password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ta.do(t, "POST", "/api/auth/login", "", map[string]string{"email": user.Email, "password": tt.password})
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedError, body["error"])
			assert.Nil(t, body["token"])
		})
	}
}

func TestCatalogMaterials(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)

	status, category := ta.do(t, "POST", "/api/materials/categories", admin, map[string]string{"name": "Metals"})
	require.Equal(t, 201, status)

	status, material := ta.do(t, "POST", "/api/materials", admin, map[string]string{
		"name":        "Rebar 12mm",
		"unit":        "t",
		"category_id": category["id"].(string),
	})
	require.Equal(t, 201, status)

	status, _ = ta.do(t, "POST", "/api/materials", admin, map[string]string{"name": "Orphan", "category_id": uuid.NewString()})
	assert.Equal(t, 404, status)

	req := httptest.NewRequest("GET", "/api/materials?category_id="+category["id"].(string), nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var materials []models.Material
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&materials))
	require.Len(t, materials, 1)
	assert.Equal(t, material["id"], materials[0].ID)
	require.NotNil(t, materials[0].Category)
	assert.Equal(t, "Metals", materials[0].Category.Name)
}

func TestAuctionRoutesRequireAuth(t *testing.T) {
	ta := setupTestApp(t)
	supplier, user := ta.createTestSupplier(t, "Alfa")
	token := supplierToken(t, supplier, user)

	status, _ := ta.do(t, "GET", "/api/auctions", "", nil)
	assert.Equal(t, 401, status)

	status, _ = ta.do(t, "GET", "/api/auctions", "not-a-token", nil)
	assert.Equal(t, 401, status)

	status, _ = ta.do(t, "POST", "/api/auctions", token, map[string]interface{}{"title": "Steel"})
	assert.Equal(t, 403, status)

	status, _ = ta.do(t, "GET", "/api/suppliers", token, nil)
	assert.Equal(t, 403, status)
}

func TestAuctionLifecycleOverHTTP(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)
	alfa, alfaUser := ta.createTestSupplier(t, "Alfa")
	beta, betaUser := ta.createTestSupplier(t, "Beta")
	outsider, outsiderUser := ta.createTestSupplier(t, "Gamma")
	alfaToken := supplierToken(t, alfa, alfaUser)
	betaToken := supplierToken(t, beta, betaUser)
	outsiderToken := supplierToken(t, outsider, outsiderUser)

	status, body := ta.do(t, "POST", "/api/auctions", admin, map[string]interface{}{
		"title":                "Rebar for hall B",
		"custom_material_name": "Rebar",
		"custom_material_unit": "t",
		"quantity":             "120",
		"duration_minutes":     15,
		"supplier_ids":         []string{alfa.ID},
	})
	require.Equal(t, 201, status, body)
	id := body["auction_id"].(string)
	assert.Equal(t, "pending", body["status"])

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/invite", admin, map[string]interface{}{
		"supplier_ids": []string{beta.ID, alfa.ID},
	})
	require.Equal(t, 200, status, body)
	assert.EqualValues(t, 1, body["added"])

	// Bidding before start
	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/bid", alfaToken, map[string]interface{}{"amount": 100})
	assert.Equal(t, 409, status)
	assert.Equal(t, "NOT_ACTIVE", body["code"])

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/start", admin, nil)
	require.Equal(t, 200, status, body)
	assert.NotNil(t, body["end_time"])
	assert.True(t, ta.auctions.Scheduler().Pending(id))

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/start", admin, nil)
	assert.Equal(t, 409, status)
	assert.Equal(t, "INVALID_STATE", body["code"])

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/bid", alfaToken, map[string]interface{}{"amount": "100.50"})
	require.Equal(t, 201, status, body)
	assert.Equal(t, false, body["time_extended"])

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/bid", betaToken, map[string]interface{}{"amount": 95})
	require.Equal(t, 201, status, body)
	assert.Equal(t, "95", body["lowest_bid"])
	assert.EqualValues(t, 2, body["bids_count"])

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/bid", outsiderToken, map[string]interface{}{"amount": 90})
	assert.Equal(t, 403, status)
	assert.Equal(t, "NOT_INVITED", body["code"])

	for _, amount := range []interface{}{0, "0.001", "94.999"} {
		status, body = ta.do(t, "POST", "/api/auctions/"+id+"/bid", alfaToken, map[string]interface{}{"amount": amount})
		assert.Equal(t, 400, status, amount)
		assert.Equal(t, "VALIDATION_ERROR", body["code"], amount)
	}

	status, _ = ta.do(t, "POST", "/api/auctions/"+id+"/bid", admin, map[string]interface{}{"amount": 80})
	assert.Equal(t, 403, status)

	// Projections
	status, body = ta.do(t, "GET", "/api/auctions/"+id, admin, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["bids"], 2)
	assert.Len(t, body["invitations"], 2)

	status, body = ta.do(t, "GET", "/api/auctions/"+id, alfaToken, nil)
	require.Equal(t, 200, status)
	assert.NotContains(t, body, "bids")
	assert.Len(t, body["my_bids"], 1)
	assert.Equal(t, "95", body["lowest_bid"])

	status, _ = ta.do(t, "GET", "/api/auctions/"+id, outsiderToken, nil)
	assert.Equal(t, 403, status)

	status, body = ta.do(t, "GET", "/api/auctions", outsiderToken, nil)
	require.Equal(t, 200, status)
	assert.Empty(t, body["data"])

	status, body = ta.do(t, "GET", "/api/auctions?status=active", alfaToken, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 1)

	status, _ = ta.do(t, "GET", "/api/auctions?status=archived", admin, nil)
	assert.Equal(t, 400, status)

	// Active auctions cannot be deleted or have results published
	status, body = ta.do(t, "DELETE", "/api/auctions/"+id, admin, nil)
	assert.Equal(t, 409, status)
	assert.Equal(t, "ACTIVE_DELETION", body["code"])

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/publish-results", admin, nil)
	assert.Equal(t, 409, status)

	status, _ = ta.do(t, "POST", "/api/auctions/"+id+"/cancel", admin, nil)
	require.Equal(t, 200, status)
	assert.False(t, ta.auctions.Scheduler().Pending(id))

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/cancel", admin, nil)
	assert.Equal(t, 409, status)
	assert.Equal(t, "ALREADY_TERMINAL", body["code"])

	status, _ = ta.do(t, "DELETE", "/api/auctions/"+id, admin, nil)
	assert.Equal(t, 200, status)

	status, _ = ta.do(t, "GET", "/api/auctions/"+id, admin, nil)
	assert.Equal(t, 404, status)
}

func TestStartWithoutInvitations(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)

	status, body := ta.do(t, "POST", "/api/auctions", admin, map[string]interface{}{
		"title":                "Sand",
		"custom_material_name": "Sand",
		"custom_material_unit": "m3",
		"quantity":             40,
	})
	require.Equal(t, 201, status, body)
	id := body["auction_id"].(string)

	status, body = ta.do(t, "POST", "/api/auctions/"+id+"/start", admin, nil)
	assert.Equal(t, 422, status)
	assert.Equal(t, "PRECONDITION_FAILED", body["code"])
}

func TestCreateAuctionValidation(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)

	tests := []struct {
		name           string
		request        map[string]interface{}
		expectedStatus int
	}{
		{
			name:           "both material variants",
			request:        map[string]interface{}{"title": "Steel", "material_id": uuid.NewString(), "custom_material_name": "Steel", "quantity": 1},
			expectedStatus: 400,
		},
		{
			name:           "no material",
			request:        map[string]interface{}{"title": "Steel", "quantity": 1},
			expectedStatus: 400,
		},
		{
			name:           "unknown catalog material",
			request:        map[string]interface{}{"title": "Steel", "material_id": uuid.NewString(), "quantity": 1},
			expectedStatus: 404,
		},
		{
			name:           "short title",
			request:        map[string]interface{}{"title": "ab", "custom_material_name": "Steel", "custom_material_unit": "t", "quantity": 1},
			expectedStatus: 400,
		},
		{
			name:           "unknown supplier",
			request:        map[string]interface{}{"title": "Steel", "custom_material_name": "Steel", "custom_material_unit": "t", "quantity": 1, "supplier_ids": []string{uuid.NewString()}},
			expectedStatus: 404,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ta.do(t, "POST", "/api/auctions", admin, tt.request)
			assert.Equal(t, tt.expectedStatus, status, body)
		})
	}
}

func TestMalformedAuctionID(t *testing.T) {
	ta := setupTestApp(t)

	status, body := ta.do(t, "GET", "/api/auctions/not-a-uuid", ta.adminToken(t), nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRemoveInvitation(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)
	alfa, _ := ta.createTestSupplier(t, "Alfa")

	auction, err := ta.auctions.Create(ctxTest, services.Principal{UserID: ta.admin.ID, Role: models.RoleAdmin}, services.AuctionSpec{
		Title:       "Copper wire",
		Material:    models.CustomMaterial{Name: "Copper wire", Unit: "kg"},
		Quantity:    decimalOf(t, "500"),
		SupplierIDs: []string{alfa.ID},
	})
	require.NoError(t, err)

	status, _ := ta.do(t, "DELETE", "/api/auctions/"+auction.ID+"/invite/"+alfa.ID, admin, nil)
	assert.Equal(t, 200, status)

	status, _ = ta.do(t, "DELETE", "/api/auctions/"+auction.ID+"/invite/"+alfa.ID, admin, nil)
	assert.Equal(t, 404, status)
}

func TestDashboards(t *testing.T) {
	ta := setupTestApp(t)
	admin := ta.adminToken(t)
	alfa, alfaUser := ta.createTestSupplier(t, "Alfa")
	adminPrincipal := services.Principal{UserID: ta.admin.ID, Role: models.RoleAdmin}

	for _, title := range []string{"Gravel", "Cement"} {
		_, err := ta.auctions.Create(ctxTest, adminPrincipal, services.AuctionSpec{
			Title:       title,
			Material:    models.CustomMaterial{Name: title, Unit: "t"},
			Quantity:    decimalOf(t, "10"),
			SupplierIDs: []string{alfa.ID},
		})
		require.NoError(t, err)
	}
	started, err := ta.auctions.Create(ctxTest, adminPrincipal, services.AuctionSpec{
		Title:       "Timber",
		Material:    models.CustomMaterial{Name: "Timber", Unit: "m3"},
		Quantity:    decimalOf(t, "3"),
		SupplierIDs: []string{alfa.ID},
	})
	require.NoError(t, err)
	_, err = ta.auctions.Start(ctxTest, adminPrincipal, started.ID)
	require.NoError(t, err)

	alfaPrincipal := services.Principal{UserID: alfaUser.ID, Role: models.RoleSupplier, SupplierID: alfa.ID}
	_, err = ta.auctions.PlaceBid(ctxTest, alfaPrincipal, started.ID, decimalOf(t, "950"))
	require.NoError(t, err)

	status, body := ta.do(t, "GET", "/api/stats/dashboard", admin, nil)
	require.Equal(t, 200, status, body)
	assert.EqualValues(t, 1, body["suppliers_count"])
	auctions := body["auctions"].(map[string]interface{})
	assert.EqualValues(t, 3, auctions["total"])
	assert.EqualValues(t, 2, auctions["pending"])
	assert.EqualValues(t, 1, auctions["active"])
	assert.Len(t, body["recent_auctions"], 3)
	assert.Empty(t, body["top_suppliers"])

	alfaToken := supplierToken(t, alfa, alfaUser)
	status, body = ta.do(t, "GET", "/api/stats/me", alfaToken, nil)
	require.Equal(t, 200, status, body)
	assert.EqualValues(t, 1, body["bids_placed"])
	assert.EqualValues(t, 0, body["auctions_won"])
	invited := body["invited_auctions"].(map[string]interface{})
	assert.EqualValues(t, 3, invited["total"])

	status, _ = ta.do(t, "GET", "/api/stats/dashboard", alfaToken, nil)
	assert.Equal(t, 403, status)
}
