// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pawprintlab/petart-backend/internal/config"
	"github.com/pawprintlab/petart-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
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
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_product_bases_active_sort ON product_bases(is_active, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_product_base_variants_base_sort ON product_base_variants(product_base_id, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_ai_styles_active_sort ON ai_styles(is_active, sort_order)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_variant_mappings_settings_variant ON variant_mappings(product_settings_id, product_base_variant_id) WHERE deleted_at IS NULL AND is_active",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_variant_mappings_settings_shopify ON variant_mappings(product_settings_id, shopify_variant_id) WHERE deleted_at IS NULL AND is_active",
		"CREATE INDEX IF NOT EXISTS idx_generations_shop_status ON generations(shop_domain, status)",
		"CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}
