// internal/handlers/editor_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pawprintlab/petart-backend/internal/config"
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/services"
	"github.com/pawprintlab/petart-backend/internal/shopify"
)

const (
	editorTestShop    = "pets.myshopify.com"
	editorTestProduct = "gid://shopify/Product/42"
)

// fakeShopifyAPI serves a fixed product and records mutations.
type fakeShopifyAPI struct {
	product *shopify.Product
	deleted []string
	nextID  int
}

func (f *fakeShopifyAPI) GetProduct(ctx context.Context, shopDomain, accessToken, productGID string) (*shopify.Product, error) {
	return f.product, nil
}

func (f *fakeShopifyAPI) CreateVariants(ctx context.Context, shopDomain, accessToken, productGID string, variants []shopify.VariantInput) ([]shopify.Variant, error) {
	created := make([]shopify.Variant, 0, len(variants))
	for _, v := range variants {
		f.nextID++
		variant := shopify.Variant{
			ID:    fmt.Sprintf("gid://shopify/ProductVariant/%d", f.nextID),
			Price: *v.Price,
		}
		f.product.Variants = append(f.product.Variants, variant)
		created = append(created, variant)
	}
	return created, nil
}

func (f *fakeShopifyAPI) UpdateVariantPrice(ctx context.Context, shopDomain, accessToken, productGID, variantGID, price string, compareAtPrice *string) error {
	return nil
}

func (f *fakeShopifyAPI) DeleteVariants(ctx context.Context, shopDomain, accessToken, productGID string, variantGIDs []string) error {
	f.deleted = append(f.deleted, variantGIDs...)
	return nil
}

type EditorTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	api      *fakeShopifyAPI
	variants []models.ProductBaseVariant
}

func (s *EditorTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.AutoMigrate(
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
	s.db = db

	s.seed()

	s.api = &fakeShopifyAPI{
		product: &shopify.Product{
			ID:    editorTestProduct,
			Title: "Pet Portrait",
			Variants: []shopify.Variant{
				{ID: "gid://shopify/ProductVariant/100", Title: "Small", Price: "29.99"},
			},
		},
		nextID: 1000,
	}

	cfg := &config.Config{Cache: config.CacheConfig{ProductTTL: 60}}
	settingsService := services.NewSettingsService(db)
	styleService := services.NewStyleService(db)
	editorService := services.NewEditorService(db, settingsService, styleService, s.api, cfg)
	variantService := services.NewVariantService(db, settingsService, s.api)
	handler := NewEditorHandler(editorService, variantService)

	shop := s.shop()
	s.router = gin.New()
	editor := s.router.Group("/editor", func(c *gin.Context) {
		c.Set("shop_domain", shop.Domain)
		c.Set("shop", shop)
	})
	editor.GET("/:productId", handler.GetEditor)
	editor.POST("/:productId/state", handler.ApplyStateOp)
	editor.POST("/:productId/actions", handler.DispatchAction)
}

func (s *EditorTestSuite) seed() {
	require.NoError(s.T(), s.db.Create(&models.Shop{
		Domain:      editorTestShop,
		AccessToken: "shpat_test",
		IsActive:    true,
	}).Error)

	base := models.ProductBase{UUID: "pb-canvas", Name: "Canvas Print", IsActive: true}
	require.NoError(s.T(), s.db.Create(&base).Error)

	s.variants = []models.ProductBaseVariant{
		{ProductBaseID: base.ID, Name: "Small", WidthPx: 1200, HeightPx: 1600, Price: 29.99, IsActive: true, SortOrder: 0},
		{ProductBaseID: base.ID, Name: "Large", WidthPx: 2400, HeightPx: 3200, Price: 49.99, IsActive: true, SortOrder: 1},
	}
	for i := range s.variants {
		require.NoError(s.T(), s.db.Create(&s.variants[i]).Error)
	}

	style := models.AiStyle{
		UUID:           "11111111-1111-1111-1111-111111111111",
		Name:           "Royal Portrait",
		PromptTemplate: "a royal portrait of {pet}",
		IsActive:       true,
	}
	require.NoError(s.T(), s.db.Create(&style).Error)

	settings := models.ProductSettings{
		ShopDomain:           editorTestShop,
		ShopifyProductID:     editorTestProduct,
		IsEnabled:            false,
		SelectedProductBases: pq.StringArray{"pb-canvas"},
	}
	require.NoError(s.T(), s.db.Create(&settings).Error)
	require.NoError(s.T(), s.db.Create(&models.ProductStyleSelection{
		ProductSettingsID: settings.ID,
		StyleUUID:         style.UUID,
		SortOrder:         0,
	}).Error)
	require.NoError(s.T(), s.db.Create(&models.VariantMapping{
		ProductSettingsID:    settings.ID,
		ProductBaseVariantID: s.variants[0].ID,
		ShopifyVariantID:     "gid://shopify/ProductVariant/100",
		IsActive:             true,
	}).Error)
}

func (s *EditorTestSuite) shop() *models.Shop {
	var shop models.Shop
	require.NoError(s.T(), s.db.Where("domain = ?", editorTestShop).First(&shop).Error)
	return &shop
}

func (s *EditorTestSuite) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *EditorTestSuite) loadEditor() map[string]interface{} {
	w := s.request(http.MethodGet, "/editor/42", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)

	var response struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &response))
	require.True(s.T(), response.Success)
	return response.Data
}

func (s *EditorTestSuite) TestLoaderPayload() {
	data := s.loadEditor()

	assert.Equal(s.T(), editorTestProduct, data["shopifyProductId"])
	assert.Equal(s.T(), editorTestShop, data["shop"])
	assert.Equal(s.T(), false, data["isEnabled"])
	assert.Equal(s.T(), []interface{}{"pb-canvas"}, data["selectedProductBases"])

	// Large is still unmapped, so the editor flags an update
	assert.Equal(s.T(), true, data["updateNeeded"])

	state := data["state"].(map[string]interface{})
	assert.Equal(s.T(), false, state["isDirty"])
	assert.Len(s.T(), state["availableVariants"], 2)
	assert.Len(s.T(), state["unmappedVariants"], 1)
}

func (s *EditorTestSuite) TestStateOpRequiresLoadedSession() {
	w := s.request(http.MethodPost, "/editor/42/state", gin.H{"op": "toggle_enabled"})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *EditorTestSuite) TestToggleEnabledAndSave() {
	s.loadEditor()

	w := s.request(http.MethodPost, "/editor/42/state", gin.H{"op": "toggle_enabled"})
	require.Equal(s.T(), http.StatusOK, w.Code)

	var stateResp struct {
		Data struct {
			IsDirty bool `json:"isDirty"`
			Values  struct {
				IsEnabled bool `json:"isEnabled"`
			} `json:"values"`
		} `json:"data"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &stateResp))
	assert.True(s.T(), stateResp.Data.IsDirty)
	assert.True(s.T(), stateResp.Data.Values.IsEnabled)

	w = s.request(http.MethodPost, "/editor/42/actions", gin.H{"action": "save_product_settings"})
	require.Equal(s.T(), http.StatusOK, w.Code)

	var actionResp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &actionResp))
	assert.True(s.T(), actionResp.Success)

	var settings models.ProductSettings
	require.NoError(s.T(), s.db.Where("shop_domain = ? AND shopify_product_id = ?", editorTestShop, editorTestProduct).
		First(&settings).Error)
	assert.True(s.T(), settings.IsEnabled)
}

func (s *EditorTestSuite) TestUnknownActionRejected() {
	s.loadEditor()

	w := s.request(http.MethodPost, "/editor/42/actions", gin.H{"action": "frobnicate"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "Unknown action", resp.Error)
}

func (s *EditorTestSuite) TestUnknownStateOpRejected() {
	s.loadEditor()

	w := s.request(http.MethodPost, "/editor/42/state", gin.H{"op": "explode"})
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *EditorTestSuite) TestCreateVariantsAction() {
	s.loadEditor()

	w := s.request(http.MethodPost, "/editor/42/actions", gin.H{
		"action":                "create_variants",
		"productBaseVariantIds": []uint{s.variants[1].ID},
	})
	require.Equal(s.T(), http.StatusOK, w.Code)

	var resp struct {
		Success         bool `json:"success"`
		VariantMappings []struct {
			ProductBaseVariantID uint   `json:"productBaseVariantId"`
			ShopifyVariantID     string `json:"shopifyVariantId"`
		} `json:"variantMappings"`
	}
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(s.T(), resp.Success)
	assert.Len(s.T(), resp.VariantMappings, 2)

	// The new Shopify variant exists on the fake product
	assert.Len(s.T(), s.api.product.Variants, 2)
}

func (s *EditorTestSuite) TestDeleteVariantAction() {
	s.loadEditor()

	w := s.request(http.MethodPost, "/editor/42/actions", gin.H{
		"action":           "delete_variant",
		"shopifyVariantId": "gid://shopify/ProductVariant/100",
	})
	require.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), []string{"gid://shopify/ProductVariant/100"}, s.api.deleted)

	var count int64
	require.NoError(s.T(), s.db.Model(&models.VariantMapping{}).
		Where("shopify_variant_id = ?", "gid://shopify/ProductVariant/100").Count(&count).Error)
	assert.Zero(s.T(), count)
}

func TestEditorTestSuite(t *testing.T) {
	suite.Run(t, new(EditorTestSuite))
}
