// internal/handlers/proxy.go
package handlers

import (
	"encoding/json"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pawprintlab/petart-backend/internal/metrics"
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/services"
	"github.com/pawprintlab/petart-backend/internal/shopify"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

// ProxyHandler serves storefront traffic routed through the Shopify app
// proxy: the widget's per-product config and generation submissions.
type ProxyHandler struct {
	settingsService   *services.SettingsService
	styleService      *services.StyleService
	generationService *services.GenerationService
	storageService    *services.StorageService
}

func NewProxyHandler(settingsService *services.SettingsService, styleService *services.StyleService, generationService *services.GenerationService, storageService *services.StorageService) *ProxyHandler {
	return &ProxyHandler{
		settingsService:   settingsService,
		styleService:      styleService,
		generationService: generationService,
		storageService:    storageService,
	}
}

// proxyStyle is the storefront view of a style. The prompt template never
// leaves the backend.
type proxyStyle struct {
	UUID            string `json:"uuid"`
	Name            string `json:"name"`
	ExampleImageURL string `json:"exampleImageUrl,omitempty"`
	SortOrder       int    `json:"sortOrder"`
}

// GET /proxy/config?shop=...&product_id=...
func (h *ProxyHandler) GetConfig(c *gin.Context) {
	shopDomain, _ := utils.GetShopDomainFromContext(c)
	productID := c.Query("product_id")
	if shopDomain == "" || productID == "" {
		utils.BadRequestResponse(c, "shop and product_id are required", nil)
		return
	}
	productGID := shopify.ProductGID(productID)

	settings, err := h.settingsService.Load(shopDomain, productGID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load configuration")
		return
	}
	if settings == nil || !settings.IsEnabled {
		utils.SuccessResponse(c, gin.H{"enabled": false})
		return
	}

	styles, err := h.styleService.List(false)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load styles")
		return
	}

	selected := make(map[string]int, len(settings.StyleSelections))
	for _, sel := range settings.StyleSelections {
		selected[sel.StyleUUID] = sel.SortOrder
	}

	out := make([]proxyStyle, 0, len(selected))
	for _, style := range styles {
		sortOrder, ok := selected[style.UUID]
		if !ok {
			continue
		}
		out = append(out, proxyStyle{
			UUID:            style.UUID,
			Name:            style.Name,
			ExampleImageURL: style.ExampleImageURL,
			SortOrder:       sortOrder,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })

	utils.SuccessResponse(c, gin.H{
		"enabled": true,
		"styles":  out,
	})
}

// POST /proxy/generations
func (h *ProxyHandler) CreateGeneration(c *gin.Context) {
	shopDomain, _ := utils.GetShopDomainFromContext(c)
	if shopDomain == "" {
		utils.BadRequestResponse(c, "shop is required", nil)
		return
	}

	var req services.CreateGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	generation, details, err := h.generationService.CreatePending(shopDomain, &req)
	if err != nil {
		logrus.WithError(err).WithField("shop", shopDomain).Error("Failed to create generation")
		utils.InternalErrorResponse(c, "Failed to create generation")
		return
	}
	if len(details) > 0 {
		utils.ErrorResponse(c, 400, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	metrics.GenerationsCreated.Inc()
	utils.CreatedResponse(c, gin.H{
		"generation": publicGeneration(generation),
	})
}

// GET /proxy/generations/:uuid
func (h *ProxyHandler) GetGeneration(c *gin.Context) {
	shopDomain, _ := utils.GetShopDomainFromContext(c)
	if shopDomain == "" {
		utils.BadRequestResponse(c, "shop is required", nil)
		return
	}

	generation, err := h.generationService.Get(shopDomain, c.Param("uuid"))
	if err != nil {
		utils.NotFoundResponse(c, "Generation not found")
		return
	}

	utils.SuccessResponse(c, gin.H{"generation": publicGeneration(generation)})
}

// POST /proxy/upload
func (h *ProxyHandler) UploadPetPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		utils.BadRequestResponse(c, "No photo uploaded", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read photo", nil)
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("pet-photos")
	result, err := h.storageService.UploadFile(file, fileHeader, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"photo": result})
}

// publicGeneration strips internal fields before the row leaves the proxy.
func publicGeneration(g *models.Generation) gin.H {
	out := gin.H{
		"uuid":   g.UUID,
		"status": g.Status,
	}
	if g.ResultImageURL != "" {
		out["resultImageUrl"] = g.ResultImageURL
	}
	return out
}

// bindJSON unmarshals a pre-read body, shared by handlers that verify the
// raw payload before parsing.
func bindJSON(body []byte, dest interface{}) error {
	return json.Unmarshal(body, dest)
}
