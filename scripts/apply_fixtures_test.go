package main

import (
	"fmt"
	"testing"

	"auction-backend/models"
	"auction-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestApplyFixturesIsRepeatable(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, models.AutoMigrate(db))

	require.NoError(t, applyFixtures(db))
	require.NoError(t, applyFixtures(db))

	var materials, suppliers, users int64
	db.Model(&models.Material{}).Count(&materials)
	db.Model(&models.Supplier{}).Count(&suppliers)
	db.Model(&models.User{}).Where("role = ?", models.RoleSupplier).Count(&users)
	assert.EqualValues(t, len(demoMaterials), materials)
	assert.EqualValues(t, len(demoSuppliers), suppliers)
	assert.EqualValues(t, 2, users)

	for _, s := range demoSuppliers {
		if s.NIP != "" {
			assert.True(t, models.ValidNIP(s.NIP), s.CompanyName)
		}
	}

	var account models.User
	require.NoError(t, db.Where("email = ?", "oferty@stalbud.example").First(&account).Error)
	assert.True(t, utils.CheckPasswordHash(demoSupplierPassword, account.PasswordHash))
}
