// internal/handlers/generation.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pawprintlab/petart-backend/internal/config"
	"github.com/pawprintlab/petart-backend/internal/middleware"
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/services"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

// GenerationHandler serves the admin generation dashboard and the vendor
// callback webhook.
type GenerationHandler struct {
	generationService *services.GenerationService
	cfg               *config.Config
}

func NewGenerationHandler(generationService *services.GenerationService, cfg *config.Config) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		cfg:               cfg,
	}
}

// GET /generations
func (h *GenerationHandler) GetGenerations(c *gin.Context) {
	shopDomain, exists := utils.GetShopDomainFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := services.GenerationSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if status := c.Query("status"); status != "" {
		generationStatus := models.GenerationStatus(status)
		params.Status = &generationStatus
	}
	if styleUUID := c.Query("style_uuid"); styleUUID != "" {
		params.StyleUUID = &styleUUID
	}
	if productID := c.Query("product_id"); productID != "" {
		params.ShopifyProductID = &productID
	}

	generations, total, err := h.generationService.Search(shopDomain, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(generations, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /generations/counts
func (h *GenerationHandler) GetStatusCounts(c *gin.Context) {
	shopDomain, exists := utils.GetShopDomainFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	counts, err := h.generationService.StatusCounts(shopDomain)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"counts": counts})
}

// GET /generations/:uuid
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	shopDomain, exists := utils.GetShopDomainFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	generation, err := h.generationService.Get(shopDomain, c.Param("uuid"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Generation not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"generation": generation})
}

// POST /webhooks/generation
//
// Vendor callback. The raw body is HMAC-verified before any parsing.
func (h *GenerationHandler) HandleWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read request body", nil)
		return
	}

	signature := c.GetHeader("X-Webhook-Signature")
	if !middleware.WebhookSignature(h.cfg.Generation.WebhookSecret, body, signature) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid signature"})
		return
	}

	var req services.GenerationWebhookRequest
	if err := bindJSON(body, &req); err != nil {
		utils.BadRequestResponse(c, "Invalid JSON body", err.Error())
		return
	}

	generation, details, err := h.generationService.ApplyWebhook(&req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Generation not found")
			return
		}
		logrus.WithError(err).WithField("generation", req.GenerationUUID).Error("Failed to apply generation webhook")
		utils.InternalErrorResponse(c, "Failed to apply webhook")
		return
	}
	if len(details) > 0 {
		utils.ErrorResponse(c, 400, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	utils.SuccessResponse(c, gin.H{"generation": generation})
}
