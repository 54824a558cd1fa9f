// internal/services/testing_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pawprintlab/petart-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Shop{},
		&models.ProductBase{},
		&models.ProductBaseOption{},
		&models.ProductBaseVariant{},
		&models.ProductBaseVariantOptionValue{},
		&models.AiStyle{},
		&models.ProductSettings{},
		&models.ProductStyleSelection{},
		&models.VariantMapping{},
		&models.Generation{},
	))

	return db
}

// seedCatalog creates two product bases (the first with two variants, the
// second with one) and two active styles with fixed UUIDs.
func seedCatalog(t *testing.T, db *gorm.DB) ([]models.ProductBase, []models.ProductBaseVariant, []models.AiStyle) {
	t.Helper()

	bases := []models.ProductBase{
		{UUID: "pb-canvas", Name: "Canvas Print", IsActive: true, SortOrder: 0},
		{UUID: "pb-mug", Name: "Mug", IsActive: true, SortOrder: 1},
	}
	for i := range bases {
		require.NoError(t, db.Create(&bases[i]).Error)
	}

	variants := []models.ProductBaseVariant{
		{ProductBaseID: bases[0].ID, Name: "Small", WidthPx: 1200, HeightPx: 1600, Price: 29.99, IsActive: true, SortOrder: 0},
		{ProductBaseID: bases[0].ID, Name: "Large", WidthPx: 2400, HeightPx: 3200, Price: 49.99, IsActive: true, SortOrder: 1},
		{ProductBaseID: bases[1].ID, Name: "Standard", WidthPx: 900, HeightPx: 900, Price: 14.99, IsActive: true, SortOrder: 0},
	}
	for i := range variants {
		require.NoError(t, db.Create(&variants[i]).Error)
	}

	styles := []models.AiStyle{
		{UUID: "11111111-1111-1111-1111-111111111111", Name: "Royal Portrait", PromptTemplate: "a royal portrait of {pet}", IsActive: true, SortOrder: 0},
		{UUID: "22222222-2222-2222-2222-222222222222", Name: "Pop Art", PromptTemplate: "pop art of {pet}", IsActive: true, SortOrder: 1},
	}
	for i := range styles {
		require.NoError(t, db.Create(&styles[i]).Error)
	}

	return bases, variants, styles
}
