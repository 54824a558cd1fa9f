// internal/handlers/editor.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pawprintlab/petart-backend/internal/formstate"
	"github.com/pawprintlab/petart-backend/internal/metrics"
	"github.com/pawprintlab/petart-backend/internal/middleware"
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/services"
	"github.com/pawprintlab/petart-backend/internal/shopify"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

// EditorHandler serves the per-product settings editor: the loader payload,
// form state mutations and the action dispatch endpoint.
type EditorHandler struct {
	editorService  *services.EditorService
	variantService *services.VariantService
}

func NewEditorHandler(editorService *services.EditorService, variantService *services.VariantService) *EditorHandler {
	return &EditorHandler{
		editorService:  editorService,
		variantService: variantService,
	}
}

// GET /editor/:productId
func (h *EditorHandler) GetEditor(c *gin.Context) {
	shop, exists := middleware.GetShopFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productGID := shopify.ProductGID(c.Param("productId"))

	data, err := h.editorService.LoadEditor(c.Request.Context(), shop, productGID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product not found")
			return
		}
		logrus.WithError(err).WithField("product", productGID).Error("Failed to load editor")
		utils.InternalErrorResponse(c, "Failed to load editor")
		return
	}

	utils.SuccessResponse(c, data)
}

// POST /editor/:productId/state
func (h *EditorHandler) ApplyStateOp(c *gin.Context) {
	shop, exists := middleware.GetShopFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productGID := shopify.ProductGID(c.Param("productId"))

	var op services.StateOp
	if err := c.ShouldBindJSON(&op); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	state, details, err := h.editorService.ApplyStateOp(shop.Domain, productGID, &op)
	if err != nil {
		if errors.Is(err, services.ErrNoEditorSession) {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if len(details) > 0 {
		utils.ActionError(c, http.StatusBadRequest, "Invalid form operation", details)
		return
	}

	utils.SuccessResponse(c, state)
}

// POST /editor/:productId/actions
//
// The single dispatch endpoint for the editor's mutations. The JSON body
// carries an action discriminator; everything else in the body belongs to
// that action's payload.
func (h *EditorHandler) DispatchAction(c *gin.Context) {
	shop, exists := middleware.GetShopFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	productGID := shopify.ProductGID(c.Param("productId"))

	body, err := c.GetRawData()
	if err != nil {
		utils.ActionError(c, http.StatusBadRequest, "Failed to read request body", nil)
		return
	}

	var probe struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		utils.ActionError(c, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	switch probe.Action {
	case formstate.ActionSaveProductSettings:
		h.saveProductSettings(c, shop.Domain, productGID)
	case "create_variants":
		h.createVariants(c, shop, productGID, body)
	case "delete_variant":
		h.deleteVariant(c, shop, productGID, body)
	case "update_variant_price":
		h.updateVariantPrice(c, shop, productGID, body)
	default:
		utils.ActionError(c, http.StatusBadRequest, "Unknown action", nil)
	}
}

// save_product_settings runs through the session's submission coordinator
// so the optimistic commit, in-flight rejection and error mapping all
// behave exactly as the editor state machine promises.
func (h *EditorHandler) saveProductSettings(c *gin.Context, shopDomain, productGID string) {
	state, err := h.editorService.SubmitSettings(shopDomain, productGID)
	switch {
	case errors.Is(err, services.ErrNoEditorSession):
		metrics.SettingsSaves.WithLabelValues("no_session").Inc()
		utils.ActionError(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, formstate.ErrSubmitInFlight):
		metrics.SettingsSaves.WithLabelValues("in_flight").Inc()
		utils.ActionError(c, http.StatusConflict, "A save is already in progress", nil)
	case errors.Is(err, formstate.ErrValidationFailed):
		metrics.SettingsSaves.WithLabelValues("invalid").Inc()
		utils.ActionError(c, http.StatusBadRequest, "Validation failed", stateFieldErrors(state))
	case err != nil:
		metrics.SettingsSaves.WithLabelValues("error").Inc()
		logrus.WithError(err).WithField("product", productGID).Error("Failed to save settings")
		utils.ActionError(c, http.StatusInternalServerError, "Failed to save settings", nil)
	default:
		metrics.SettingsSaves.WithLabelValues("success").Inc()
		utils.ActionSuccess(c, "Settings saved")
	}
}

func (h *EditorHandler) createVariants(c *gin.Context, shop *models.Shop, productGID string, body []byte) {
	var req services.CreateVariantsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.ActionError(c, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	mappings, details, err := h.variantService.CreateVariants(c.Request.Context(), shop, productGID, &req)
	if err != nil {
		logrus.WithError(err).WithField("product", productGID).Error("Failed to create variants")
		utils.ActionError(c, http.StatusBadGateway, "Failed to create variants", nil)
		return
	}
	if len(details) > 0 {
		utils.ActionError(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	h.editorService.DropSession(shop.Domain, productGID)
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Variants created",
		"variantMappings": mappings,
	})
}

func (h *EditorHandler) deleteVariant(c *gin.Context, shop *models.Shop, productGID string, body []byte) {
	var req services.DeleteVariantRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.ActionError(c, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	details, err := h.variantService.DeleteVariant(c.Request.Context(), shop, productGID, &req)
	if err != nil {
		logrus.WithError(err).WithField("product", productGID).Error("Failed to delete variant")
		utils.ActionError(c, http.StatusBadGateway, "Failed to delete variant", nil)
		return
	}
	if len(details) > 0 {
		utils.ActionError(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	h.editorService.DropSession(shop.Domain, productGID)
	utils.ActionSuccess(c, "Variant deleted")
}

func (h *EditorHandler) updateVariantPrice(c *gin.Context, shop *models.Shop, productGID string, body []byte) {
	var req services.UpdateVariantPriceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		utils.ActionError(c, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}

	details, err := h.variantService.UpdateVariantPrice(c.Request.Context(), shop, productGID, &req)
	if err != nil {
		logrus.WithError(err).WithField("product", productGID).Error("Failed to update variant price")
		utils.ActionError(c, http.StatusBadGateway, "Failed to update variant price", nil)
		return
	}
	if len(details) > 0 {
		utils.ActionError(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	utils.ActionSuccess(c, "Price updated")
}

func stateFieldErrors(state *formstate.State) []utils.FieldError {
	if state == nil {
		return nil
	}
	var details []utils.FieldError
	for field, message := range state.FieldErrors {
		details = append(details, utils.FieldError{Field: field, Message: message})
	}
	return details
}
