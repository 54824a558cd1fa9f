// internal/handlers/style.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pawprintlab/petart-backend/internal/formstate"
	"github.com/pawprintlab/petart-backend/internal/services"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

type StyleHandler struct {
	styleService   *services.StyleService
	storageService *services.StorageService
}

func NewStyleHandler(styleService *services.StyleService, storageService *services.StorageService) *StyleHandler {
	return &StyleHandler{
		styleService:   styleService,
		storageService: storageService,
	}
}

// GET /styles
func (h *StyleHandler) GetStyles(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))

	styles, err := h.styleService.List(includeInactive)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"styles": styles})
}

// GET /styles/:uuid
func (h *StyleHandler) GetStyle(c *gin.Context) {
	style, err := h.styleService.Get(c.Param("uuid"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Style not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"style": style})
}

// POST /styles
func (h *StyleHandler) CreateStyle(c *gin.Context) {
	var req services.SaveStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	style, details, err := h.styleService.Create(&req)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if len(details) > 0 {
		utils.ErrorResponse(c, 400, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Style created",
		"style":   style,
	})
}

// PUT /styles/:uuid
func (h *StyleHandler) UpdateStyle(c *gin.Context) {
	var req services.SaveStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	style, details, err := h.styleService.Update(c.Param("uuid"), &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Style not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if len(details) > 0 {
		utils.ErrorResponse(c, 400, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Style updated",
		"style":   style,
	})
}

// DELETE /styles/:uuid
func (h *StyleHandler) DeleteStyle(c *gin.Context) {
	if err := h.styleService.Delete(c.Param("uuid")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Style not found")
			return
		}
		if strings.Contains(err.Error(), "selected on products") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Style deleted"})
}

// PUT /styles/reorder
func (h *StyleHandler) ReorderStyles(c *gin.Context) {
	var req struct {
		Order []formstate.StyleOrder `json:"order" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.styleService.Reorder(req.Order); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Styles reordered"})
}

// POST /styles/upload-image
func (h *StyleHandler) UploadExampleImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "No image uploaded", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read image", nil)
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions("styles")
	result, err := h.storageService.UploadFile(file, fileHeader, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Image uploaded",
		"image":   result,
	})
}
