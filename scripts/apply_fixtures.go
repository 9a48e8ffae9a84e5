package main

import (
	"fmt"

	"auction-backend/config"
	"auction-backend/controllers"
	"auction-backend/models"
	"auction-backend/utils"

	"gorm.io/gorm"
)

const demoSupplierPassword = "dostawca123"

type demoMaterial struct {
	Category string
	Name     string
	Unit     string
}

type demoSupplier struct {
	CompanyName string
	NIP         string
	City        string
	IsLocal     bool
	Email       string
}

var demoMaterials = []demoMaterial{
	{"Metals", "Rebar B500SP 12mm", "t"},
	{"Metals", "Steel sheet S235 2mm", "t"},
	{"Aggregates", "Washed sand 0-2mm", "t"},
	{"Aggregates", "Crushed granite 8-16mm", "t"},
	{"Cement and concrete", "Cement CEM I 42.5R", "t"},
	{"Timber", "Pine timber C24", "m3"},
	{"Plastics", "HDPE granulate", "kg"},
}

var demoSuppliers = []demoSupplier{
	{"Stal-Bud Poznań", "5260250274", "Poznań", true, "oferty@stalbud.example"},
	{"Kruszywa Północ", "7740001454", "Gdańsk", false, "handel@kruszywa.example"},
	{"Drewex", "", "Kraków", false, ""},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("Failed to load configuration", map[string]interface{}{"error": err.Error()})
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := models.InitDB(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		utils.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	if err := models.AutoMigrate(db); err != nil {
		utils.Fatal("Failed to migrate database", map[string]interface{}{"error": err.Error()})
	}

	if err := applyFixtures(db); err != nil {
		utils.Fatal("Failed to apply fixtures", map[string]interface{}{"error": err.Error()})
	}
	utils.Info("Fixtures applied", nil)
}

// applyFixtures loads the demo catalog. Rows that already exist are skipped,
// so running it twice is harmless.
func applyFixtures(db *gorm.DB) error {
	controllers.SeedCategories(db)

	var categories []models.MaterialCategory
	if err := db.Find(&categories).Error; err != nil {
		return err
	}
	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryIDs[c.Name] = c.ID
	}

	for _, m := range demoMaterials {
		categoryID, ok := categoryIDs[m.Category]
		if !ok {
			return fmt.Errorf("fixtures: unknown category %q", m.Category)
		}
		material := models.Material{Name: m.Name, Unit: m.Unit, CategoryID: &categoryID}
		if err := db.Where(models.Material{Name: m.Name}).FirstOrCreate(&material).Error; err != nil {
			return fmt.Errorf("fixtures: material %s: %w", m.Name, err)
		}
	}

	hash, err := utils.HashPassword(demoSupplierPassword)
	if err != nil {
		return err
	}

	for _, s := range demoSuppliers {
		var count int64
		if err := db.Model(&models.Supplier{}).Where("company_name = ?", s.CompanyName).Count(&count).Error; err != nil {
			return fmt.Errorf("fixtures: supplier %s: %w", s.CompanyName, err)
		}
		if count > 0 {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			supplier := models.Supplier{
				CompanyName: s.CompanyName,
				NIP:         s.NIP,
				City:        s.City,
				IsLocal:     s.IsLocal,
				Email:       s.Email,
			}
			if s.Email != "" {
				user := models.User{
					Email:        s.Email,
					PasswordHash: hash,
					Name:         s.CompanyName,
					Company:      s.CompanyName,
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
			return fmt.Errorf("fixtures: supplier %s: %w", s.CompanyName, err)
		}
	}
	return nil
}
