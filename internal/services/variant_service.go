// internal/services/variant_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/pawprintlab/petart-backend/internal/metrics"
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/reconcile"
	"github.com/pawprintlab/petart-backend/internal/shopify"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

// ShopifyAPI is the slice of the Admin API client the services consume.
type ShopifyAPI interface {
	GetProduct(ctx context.Context, shopDomain, accessToken, productGID string) (*shopify.Product, error)
	CreateVariants(ctx context.Context, shopDomain, accessToken, productGID string, variants []shopify.VariantInput) ([]shopify.Variant, error)
	UpdateVariantPrice(ctx context.Context, shopDomain, accessToken, productGID, variantGID, price string, compareAtPrice *string) error
	DeleteVariants(ctx context.Context, shopDomain, accessToken, productGID string, variantGIDs []string) error
}

// SizeOptionName is the option axis under which auto-created Shopify
// variants are filed.
const SizeOptionName = "Size"

// VariantService bridges product-base variants and live Shopify variants:
// it auto-creates the Shopify side of missing mappings and forwards price
// and delete operations.
type VariantService struct {
	db       *gorm.DB
	settings *SettingsService
	api      ShopifyAPI
}

type CreateVariantsRequest struct {
	ProductBaseVariantIDs []uint `json:"productBaseVariantIds" validate:"required,min=1"`
}

type DeleteVariantRequest struct {
	ShopifyVariantID string `json:"shopifyVariantId" validate:"required,shopify_gid"`
}

type UpdateVariantPriceRequest struct {
	ShopifyVariantID string   `json:"shopifyVariantId" validate:"required,shopify_gid"`
	Price            float64  `json:"price" validate:"required,gt=0"`
	CompareAtPrice   *float64 `json:"compareAtPrice,omitempty" validate:"omitempty,gt=0"`
}

func NewVariantService(db *gorm.DB, settings *SettingsService, api ShopifyAPI) *VariantService {
	return &VariantService{db: db, settings: settings, api: api}
}

// CreateVariants creates one Shopify variant per requested product-base
// variant and records the new mappings. Already-mapped variants are skipped.
func (s *VariantService) CreateVariants(ctx context.Context, shop *models.Shop, productGID string, req *CreateVariantsRequest) ([]reconcile.Mapping, []utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.FieldErrorsFromValidation(err), nil
	}

	var variants []models.ProductBaseVariant
	if err := s.db.Where("id IN ?", req.ProductBaseVariantIDs).Find(&variants).Error; err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}
	if len(variants) != len(req.ProductBaseVariantIDs) {
		return nil, []utils.FieldError{{Field: "productBaseVariantIds", Message: "one or more product base variants do not exist"}}, nil
	}

	settings, err := s.settings.Load(shop.Domain, productGID)
	if err != nil {
		return nil, nil, err
	}

	existing := make([]reconcile.Mapping, 0)
	if settings != nil {
		for _, m := range settings.VariantMappings {
			existing = append(existing, reconcile.Mapping{
				ProductBaseVariantID: m.ProductBaseVariantID,
				ShopifyVariantID:     m.ShopifyVariantID,
			})
		}
	}
	mapped := make(map[uint]bool, len(existing))
	for _, m := range existing {
		mapped[m.ProductBaseVariantID] = true
	}

	var toCreate []models.ProductBaseVariant
	for _, v := range variants {
		if !mapped[v.ID] {
			toCreate = append(toCreate, v)
		}
	}
	if len(toCreate) == 0 {
		return existing, nil, nil
	}

	inputs := make([]shopify.VariantInput, 0, len(toCreate))
	for _, v := range toCreate {
		price := formatPrice(v.Price)
		input := shopify.VariantInput{
			Price: &price,
			OptionValues: []shopify.VariantOptionItem{
				{OptionName: SizeOptionName, Name: v.Name},
			},
		}
		if v.CompareAtPrice != nil {
			compareAt := formatPrice(*v.CompareAtPrice)
			input.CompareAtPrice = &compareAt
		}
		inputs = append(inputs, input)
	}

	created, err := s.api.CreateVariants(ctx, shop.Domain, shop.AccessToken, productGID, inputs)
	if err != nil {
		metrics.ShopifyAPICalls.WithLabelValues("create_variants", "error").Inc()
		return nil, nil, fmt.Errorf("failed to create shopify variants: %w", err)
	}
	metrics.ShopifyAPICalls.WithLabelValues("create_variants", "success").Inc()
	if len(created) != len(toCreate) {
		return nil, nil, errors.New("shopify returned an unexpected number of variants")
	}

	mappings := existing
	for i, v := range toCreate {
		mappings = reconcile.UpdateMapping(mappings, v.ID, created[i].ID)
	}
	if err := s.settings.ReplaceMappings(shop.Domain, productGID, mappings); err != nil {
		return nil, nil, err
	}

	return mappings, nil, nil
}

// DeleteVariant removes the Shopify variant and any mapping pointing at it.
func (s *VariantService) DeleteVariant(ctx context.Context, shop *models.Shop, productGID string, req *DeleteVariantRequest) ([]utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return utils.FieldErrorsFromValidation(err), nil
	}

	if err := s.api.DeleteVariants(ctx, shop.Domain, shop.AccessToken, productGID, []string{req.ShopifyVariantID}); err != nil {
		metrics.ShopifyAPICalls.WithLabelValues("delete_variants", "error").Inc()
		return nil, fmt.Errorf("failed to delete shopify variant: %w", err)
	}
	metrics.ShopifyAPICalls.WithLabelValues("delete_variants", "success").Inc()

	err := s.db.Where("shopify_variant_id = ?", req.ShopifyVariantID).
		Delete(&models.VariantMapping{}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to remove mapping: %w", err)
	}
	return nil, nil
}

// UpdateVariantPrice forwards a price change to Shopify. Local product-base
// prices are unaffected; Shopify owns the live price.
func (s *VariantService) UpdateVariantPrice(ctx context.Context, shop *models.Shop, productGID string, req *UpdateVariantPriceRequest) ([]utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return utils.FieldErrorsFromValidation(err), nil
	}

	var compareAt *string
	if req.CompareAtPrice != nil {
		v := formatPrice(*req.CompareAtPrice)
		compareAt = &v
	}

	err := s.api.UpdateVariantPrice(ctx, shop.Domain, shop.AccessToken, productGID, req.ShopifyVariantID, formatPrice(req.Price), compareAt)
	if err != nil {
		metrics.ShopifyAPICalls.WithLabelValues("update_variant_price", "error").Inc()
		return nil, fmt.Errorf("failed to update variant price: %w", err)
	}
	metrics.ShopifyAPICalls.WithLabelValues("update_variant_price", "success").Inc()
	return nil, nil
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}
