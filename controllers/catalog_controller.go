package controllers

import (
	"errors"
	"math"
	"strings"

	"auction-backend/models"
	"auction-backend/services"
	"auction-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogController manages suppliers, material categories and materials.
type CatalogController struct {
	DB *gorm.DB
}

// NewCatalogController creates a new CatalogController.
func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{DB: db}
}

// CreateSupplierRequest is the body of POST /api/suppliers. When Email and
// Password are both set a supplier login account is created alongside.
type CreateSupplierRequest struct {
	CompanyName string `json:"company_name"`
	NIP         string `json:"nip"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Description string `json:"description"`
	IsLocal     bool   `json:"is_local"`
	Password    string `json:"password"`
	ContactName string `json:"contact_name"`
}

// CreateCategoryRequest is the body of POST /api/materials/categories.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CreateMaterialRequest is the body of POST /api/materials.
type CreateMaterialRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
}

// SupplierPage is a page of suppliers.
type SupplierPage struct {
	Data       []models.Supplier   `json:"data"`
	Pagination services.Pagination `json:"pagination"`
}

// GetSuppliers handles GET /api/suppliers with optional search, city and
// is_local filters. Local suppliers come first.
func (cc *CatalogController) GetSuppliers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", services.DefaultPageLimit)
	if limit < 1 {
		limit = services.DefaultPageLimit
	}
	if limit > services.MaxPageLimit {
		limit = services.MaxPageLimit
	}

	query := cc.DB.Model(&models.Supplier{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		digits := models.NormalizeNIP(search)
		if len(digits) >= 3 {
			query = query.Where("company_name LIKE ? OR nip LIKE ?", "%"+search+"%", "%"+digits+"%")
		} else {
			query = query.Where("company_name LIKE ?", "%"+search+"%")
		}
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		query = query.Where("city LIKE ?", "%"+city+"%")
	}
	if isLocal := c.Query("is_local"); isLocal != "" {
		query = query.Where("is_local = ?", isLocal == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to load suppliers",
		})
	}

	suppliers := make([]models.Supplier, 0)
	err := query.Order("is_local DESC").Order("company_name").
		Offset((page - 1) * limit).Limit(limit).
		Find(&suppliers).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to load suppliers",
		})
	}

	return c.JSON(SupplierPage{
		Data: suppliers,
		Pagination: services.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// GetSupplier handles GET /api/suppliers/:id.
func (cc *CatalogController) GetSupplier(c *fiber.Ctx) error {
	var supplier models.Supplier
	if err := cc.DB.First(&supplier, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Supplier not found",
		})
	}
	return c.JSON(supplier)
}

// CreateSupplier handles POST /api/suppliers.
func (cc *CatalogController) CreateSupplier(c *fiber.Ctx) error {
	var req CreateSupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Company name is required",
		})
	}

	nip := ""
	if strings.TrimSpace(req.NIP) != "" {
		if !models.ValidNIP(req.NIP) {
			return c.Status(400).JSON(fiber.Map{
				"error": "Invalid NIP",
			})
		}
		nip = models.NormalizeNIP(req.NIP)

		var existing models.Supplier
		err := cc.DB.Where("nip = ?", nip).First(&existing).Error
		if err == nil {
			return c.Status(409).JSON(fiber.Map{
				"error": "Supplier with NIP " + nip + " already exists: " + existing.CompanyName,
			})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(500).JSON(fiber.Map{
				"error": "Failed to check NIP",
			})
		}
	}

	var sameName int64
	err := cc.DB.Model(&models.Supplier{}).Where("LOWER(company_name) = LOWER(?)", req.CompanyName).Count(&sameName).Error
	if err != nil {
		utils.Error("Supplier name lookup failed", map[string]interface{}{"company": req.CompanyName, "error": err.Error()})
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to check company name",
		})
	}
	if sameName > 0 {
		return c.Status(409).JSON(fiber.Map{
			"error": "Supplier \"" + req.CompanyName + "\" already exists",
		})
	}

	withAccount := req.Email != "" && req.Password != ""
	if withAccount && len(req.Password) < 8 {
		return c.Status(400).JSON(fiber.Map{
			"error": "Password must be at least 8 characters",
		})
	}

	supplier := models.Supplier{
		CompanyName: req.CompanyName,
		NIP:         nip,
		Address:     req.Address,
		City:        req.City,
		Region:      req.Region,
		Phone:       req.Phone,
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Website:     req.Website,
		Description: req.Description,
		IsLocal:     req.IsLocal,
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if withAccount {
			hash, err := utils.HashPassword(req.Password)
			if err != nil {
				return err
			}
			name := req.ContactName
			if name == "" {
				name = req.CompanyName
			}
			user := models.User{
				Email:        supplier.Email,
				PasswordHash: hash,
				Name:         name,
				Company:      req.CompanyName,
				Phone:        req.Phone,
				Role:         models.RoleSupplier,
				IsActive:     true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			supplier.UserID = &user.ID
		}
		return tx.Create(&supplier).Error
	})
	if err != nil {
		utils.Error("Failed to create supplier", map[string]interface{}{"company": req.CompanyName, "error": err.Error()})
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create supplier",
		})
	}

	return c.Status(201).JSON(supplier)
}

// GetCategories handles GET /api/materials/categories.
func (cc *CatalogController) GetCategories(c *fiber.Ctx) error {
	categories := make([]models.MaterialCategory, 0)
	if err := cc.DB.Order("name").Find(&categories).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to load categories",
		})
	}
	return c.JSON(categories)
}

// CreateCategory handles POST /api/materials/categories.
func (cc *CatalogController) CreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	category := models.MaterialCategory{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create category",
		})
	}
	return c.Status(201).JSON(category)
}

// GetMaterials handles GET /api/materials with an optional category_id filter.
func (cc *CatalogController) GetMaterials(c *fiber.Ctx) error {
	query := cc.DB.Preload("Category")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	materials := make([]models.Material, 0)
	if err := query.Order("name").Find(&materials).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to load materials",
		})
	}
	return c.JSON(materials)
}

// GetMaterial handles GET /api/materials/:id.
func (cc *CatalogController) GetMaterial(c *fiber.Ctx) error {
	var material models.Material
	if err := cc.DB.Preload("Category").First(&material, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Material not found",
		})
	}
	return c.JSON(material)
}

// CreateMaterial handles POST /api/materials.
func (cc *CatalogController) CreateMaterial(c *fiber.Ctx) error {
	var req CreateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	material := models.Material{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Unit:        strings.TrimSpace(req.Unit),
	}
	if req.CategoryID != "" {
		if _, err := uuid.Parse(req.CategoryID); err != nil {
			return c.Status(400).JSON(fiber.Map{
				"error": "Invalid category id",
			})
		}
		var count int64
		if err := cc.DB.Model(&models.MaterialCategory{}).Where("id = ?", req.CategoryID).Count(&count).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{
				"error": "Failed to check category",
			})
		}
		if count == 0 {
			return c.Status(404).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		material.CategoryID = &req.CategoryID
	}

	if err := cc.DB.Create(&material).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to create material",
		})
	}
	return c.Status(201).JSON(material)
}

// SeedCategories inserts the default material categories into an empty catalog.
func SeedCategories(db *gorm.DB) {
	defaults := []models.MaterialCategory{
		{Name: "Metals", Description: "Steel, aluminium, copper and alloys", Icon: "metal"},
		{Name: "Aggregates", Description: "Sand, gravel and crushed stone", Icon: "stone"},
		{Name: "Cement and concrete", Description: "Cement, ready-mix and precast", Icon: "cement"},
		{Name: "Timber", Description: "Sawn timber and wood panels", Icon: "wood"},
		{Name: "Plastics", Description: "Granulates, pipes and films", Icon: "plastic"},
		{Name: "Chemicals", Description: "Industrial chemicals and additives", Icon: "chemical"},
	}

	var count int64
	db.Model(&models.MaterialCategory{}).Count(&count)
	if count > 0 {
		utils.Info("Material categories already present", map[string]interface{}{"count": count})
		return
	}

	for _, category := range defaults {
		category := category
		if err := db.Create(&category).Error; err != nil {
			utils.Error("Failed to create category", map[string]interface{}{"name": category.Name, "error": err.Error()})
		}
	}
	utils.Info("Default material categories created", map[string]interface{}{"count": len(defaults)})
}
