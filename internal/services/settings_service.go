// internal/services/settings_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pawprintlab/petart-backend/internal/formstate"
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/reconcile"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

var ErrSettingsNotFound = errors.New("product settings not found")

// SettingsService persists per-product pet-art configuration. Saves are a
// full replace of style selections and variant mappings: the client always
// sends the complete desired state, the server never merges.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Load returns the settings row with its selections, or nil when the
// product has never been configured.
func (s *SettingsService) Load(shopDomain, productGID string) (*models.ProductSettings, error) {
	var settings models.ProductSettings
	err := s.db.Preload("StyleSelections", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("VariantMappings", "is_active = ?", true).
		Where("shop_domain = ? AND shopify_product_id = ?", shopDomain, productGID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &settings, nil
}

// Save validates and persists a save_product_settings payload. A non-nil
// details slice is a validation failure the caller maps onto form fields.
func (s *SettingsService) Save(shopDomain, productGID string, payload formstate.SavePayload) ([]utils.FieldError, error) {
	details, err := s.validatePayload(payload)
	if err != nil || len(details) > 0 {
		return details, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		settings, err := s.upsertSettings(tx, shopDomain, productGID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"is_enabled":             payload.IsEnabled,
			"selected_product_bases": pqArray(payload.SelectedProductBases),
		}
		if err := tx.Model(settings).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}

		// Full replace of style selections
		if err := tx.Unscoped().Where("product_settings_id = ?", settings.ID).
			Delete(&models.ProductStyleSelection{}).Error; err != nil {
			return fmt.Errorf("failed to clear style selections: %w", err)
		}
		for _, style := range payload.SelectedStyles {
			selection := models.ProductStyleSelection{
				ProductSettingsID: settings.ID,
				StyleUUID:         style.UUID,
				SortOrder:         style.SortOrder,
			}
			if err := tx.Create(&selection).Error; err != nil {
				return fmt.Errorf("failed to create style selection: %w", err)
			}
		}

		// Full replace of variant mappings
		if err := tx.Unscoped().Where("product_settings_id = ?", settings.ID).
			Delete(&models.VariantMapping{}).Error; err != nil {
			return fmt.Errorf("failed to clear variant mappings: %w", err)
		}
		for _, m := range payload.VariantMappings {
			mapping := models.VariantMapping{
				ProductSettingsID:    settings.ID,
				ProductBaseVariantID: m.ProductBaseVariantID,
				ShopifyVariantID:     m.ShopifyVariantID,
				IsActive:             true,
			}
			if err := tx.Create(&mapping).Error; err != nil {
				return fmt.Errorf("failed to create variant mapping: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// ReplaceMappings rewrites the stored mapping list for a product, applying
// the same one-per-variant invariants the reconciler guarantees in memory.
func (s *SettingsService) ReplaceMappings(shopDomain, productGID string, mappings []reconcile.Mapping) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		settings, err := s.upsertSettings(tx, shopDomain, productGID)
		if err != nil {
			return err
		}

		if err := tx.Unscoped().Where("product_settings_id = ?", settings.ID).
			Delete(&models.VariantMapping{}).Error; err != nil {
			return fmt.Errorf("failed to clear variant mappings: %w", err)
		}

		deduped := make([]reconcile.Mapping, 0, len(mappings))
		for _, m := range mappings {
			deduped = reconcile.UpdateMapping(deduped, m.ProductBaseVariantID, m.ShopifyVariantID)
		}

		for _, m := range deduped {
			mapping := models.VariantMapping{
				ProductSettingsID:    settings.ID,
				ProductBaseVariantID: m.ProductBaseVariantID,
				ShopifyVariantID:     m.ShopifyVariantID,
				IsActive:             true,
			}
			if err := tx.Create(&mapping).Error; err != nil {
				return fmt.Errorf("failed to create variant mapping: %w", err)
			}
		}
		return nil
	})
}

func (s *SettingsService) validatePayload(payload formstate.SavePayload) ([]utils.FieldError, error) {
	var details []utils.FieldError

	if len(payload.SelectedStyles) > 0 {
		uuids := make([]string, 0, len(payload.SelectedStyles))
		for _, st := range payload.SelectedStyles {
			uuids = append(uuids, st.UUID)
		}
		var count int64
		if err := s.db.Model(&models.AiStyle{}).
			Where("uuid IN ? AND is_active = ?", uuids, true).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count != int64(len(uuids)) {
			details = append(details, utils.FieldError{Field: "selectedStyles", Message: "one or more styles do not exist or are inactive"})
		}
	}

	if len(payload.SelectedProductBases) > 0 {
		var count int64
		if err := s.db.Model(&models.ProductBase{}).
			Where("uuid IN ?", []string(payload.SelectedProductBases)).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count != int64(len(payload.SelectedProductBases)) {
			details = append(details, utils.FieldError{Field: "selectedProductBases", Message: "one or more product bases do not exist"})
		}
	}

	if len(payload.VariantMappings) > 0 {
		seenVariant := make(map[uint]bool)
		seenShopify := make(map[string]bool)
		for _, m := range payload.VariantMappings {
			if seenVariant[m.ProductBaseVariantID] || seenShopify[m.ShopifyVariantID] {
				details = append(details, utils.FieldError{Field: "variantMappings", Message: "duplicate variant mapping"})
				break
			}
			seenVariant[m.ProductBaseVariantID] = true
			seenShopify[m.ShopifyVariantID] = true
		}

		ids := make([]uint, 0, len(payload.VariantMappings))
		for _, m := range payload.VariantMappings {
			ids = append(ids, m.ProductBaseVariantID)
		}
		var count int64
		if err := s.db.Model(&models.ProductBaseVariant{}).
			Where("id IN ?", ids).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count != int64(len(ids)) {
			details = append(details, utils.FieldError{Field: "variantMappings", Message: "mapping references an unknown product base variant"})
		}
	}

	return details, nil
}

func pqArray(s []string) pq.StringArray {
	return pq.StringArray(append([]string(nil), s...))
}

func (s *SettingsService) upsertSettings(tx *gorm.DB, shopDomain, productGID string) (*models.ProductSettings, error) {
	var settings models.ProductSettings
	err := tx.Where("shop_domain = ? AND shopify_product_id = ?", shopDomain, productGID).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.ProductSettings{
			ShopDomain:       shopDomain,
			ShopifyProductID: productGID,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return nil, fmt.Errorf("failed to create settings: %w", err)
		}
		return &settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &settings, nil
}
