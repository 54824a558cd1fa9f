// internal/services/variant_service_test.go
package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/reconcile"
	"github.com/pawprintlab/petart-backend/internal/shopify"
)

// stubShopifyAPI records calls instead of hitting the Admin API.
type stubShopifyAPI struct {
	product      *shopify.Product
	createInputs []shopify.VariantInput
	deleted      []string
	priceUpdates map[string]string
	nextID       int
}

func newStubShopifyAPI() *stubShopifyAPI {
	return &stubShopifyAPI{
		product:      &shopify.Product{ID: testProduct, Title: "Pet Portrait"},
		priceUpdates: make(map[string]string),
		nextID:       1000,
	}
}

func (s *stubShopifyAPI) GetProduct(ctx context.Context, shopDomain, accessToken, productGID string) (*shopify.Product, error) {
	return s.product, nil
}

func (s *stubShopifyAPI) CreateVariants(ctx context.Context, shopDomain, accessToken, productGID string, variants []shopify.VariantInput) ([]shopify.Variant, error) {
	s.createInputs = append(s.createInputs, variants...)
	created := make([]shopify.Variant, 0, len(variants))
	for _, v := range variants {
		s.nextID++
		variant := shopify.Variant{
			ID:    fmt.Sprintf("gid://shopify/ProductVariant/%d", s.nextID),
			Price: *v.Price,
		}
		s.product.Variants = append(s.product.Variants, variant)
		created = append(created, variant)
	}
	return created, nil
}

func (s *stubShopifyAPI) UpdateVariantPrice(ctx context.Context, shopDomain, accessToken, productGID, variantGID, price string, compareAtPrice *string) error {
	s.priceUpdates[variantGID] = price
	return nil
}

func (s *stubShopifyAPI) DeleteVariants(ctx context.Context, shopDomain, accessToken, productGID string, variantGIDs []string) error {
	s.deleted = append(s.deleted, variantGIDs...)
	return nil
}

func testShopRecord(t *testing.T) *models.Shop {
	t.Helper()
	return &models.Shop{Domain: testShop, AccessToken: "shpat_test", IsActive: true}
}

func TestCreateVariantsSkipsAlreadyMapped(t *testing.T) {
	db := setupTestDB(t)
	_, variants, _ := seedCatalog(t, db)
	settings := NewSettingsService(db)
	api := newStubShopifyAPI()
	svc := NewVariantService(db, settings, api)

	// variant 0 is already mapped
	require.NoError(t, settings.ReplaceMappings(testShop, testProduct, []reconcile.Mapping{
		{ProductBaseVariantID: variants[0].ID, ShopifyVariantID: "gid://shopify/ProductVariant/100"},
	}))

	mappings, details, err := svc.CreateVariants(context.Background(), testShopRecord(t), testProduct, &CreateVariantsRequest{
		ProductBaseVariantIDs: []uint{variants[0].ID, variants[1].ID},
	})
	require.NoError(t, err)
	require.Empty(t, details)

	// Only the unmapped variant hit the API
	require.Len(t, api.createInputs, 1)
	require.NotNil(t, api.createInputs[0].Price)
	assert.Equal(t, "49.99", *api.createInputs[0].Price)
	require.Len(t, api.createInputs[0].OptionValues, 1)
	assert.Equal(t, SizeOptionName, api.createInputs[0].OptionValues[0].OptionName)
	assert.Equal(t, "Large", api.createInputs[0].OptionValues[0].Name)

	require.Len(t, mappings, 2)

	stored, err := settings.Load(testShop, testProduct)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.VariantMappings, 2)
}

func TestCreateVariantsRejectsUnknownVariant(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	settings := NewSettingsService(db)
	svc := NewVariantService(db, settings, newStubShopifyAPI())

	_, details, err := svc.CreateVariants(context.Background(), testShopRecord(t), testProduct, &CreateVariantsRequest{
		ProductBaseVariantIDs: []uint{9999},
	})
	require.NoError(t, err)
	require.NotEmpty(t, details)
	assert.Equal(t, "productBaseVariantIds", details[0].Field)
}

func TestDeleteVariantRemovesMapping(t *testing.T) {
	db := setupTestDB(t)
	_, variants, _ := seedCatalog(t, db)
	settings := NewSettingsService(db)
	api := newStubShopifyAPI()
	svc := NewVariantService(db, settings, api)

	require.NoError(t, settings.ReplaceMappings(testShop, testProduct, []reconcile.Mapping{
		{ProductBaseVariantID: variants[0].ID, ShopifyVariantID: "gid://shopify/ProductVariant/100"},
	}))

	details, err := svc.DeleteVariant(context.Background(), testShopRecord(t), testProduct, &DeleteVariantRequest{
		ShopifyVariantID: "gid://shopify/ProductVariant/100",
	})
	require.NoError(t, err)
	require.Empty(t, details)

	assert.Equal(t, []string{"gid://shopify/ProductVariant/100"}, api.deleted)

	stored, err := settings.Load(testShop, testProduct)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.VariantMappings)
}

func TestUpdateVariantPriceForwardsToShopify(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	api := newStubShopifyAPI()
	svc := NewVariantService(db, NewSettingsService(db), api)

	details, err := svc.UpdateVariantPrice(context.Background(), testShopRecord(t), testProduct, &UpdateVariantPriceRequest{
		ShopifyVariantID: "gid://shopify/ProductVariant/100",
		Price:            34.5,
	})
	require.NoError(t, err)
	require.Empty(t, details)
	assert.Equal(t, "34.50", api.priceUpdates["gid://shopify/ProductVariant/100"])
}

func TestUpdateVariantPriceValidatesGID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewVariantService(db, NewSettingsService(db), newStubShopifyAPI())

	details, err := svc.UpdateVariantPrice(context.Background(), testShopRecord(t), testProduct, &UpdateVariantPriceRequest{
		ShopifyVariantID: "not-a-gid",
		Price:            10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, details)
}
