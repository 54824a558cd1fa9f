// internal/handlers/product_base.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pawprintlab/petart-backend/internal/services"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

type ProductBaseHandler struct {
	productBaseService *services.ProductBaseService
}

func NewProductBaseHandler(productBaseService *services.ProductBaseService) *ProductBaseHandler {
	return &ProductBaseHandler{productBaseService: productBaseService}
}

// GET /product-bases
func (h *ProductBaseHandler) GetProductBases(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	bases, total, err := h.productBaseService.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(bases, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /product-bases/:uuid
func (h *ProductBaseHandler) GetProductBase(c *gin.Context) {
	base, err := h.productBaseService.Get(c.Param("uuid"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product base not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"productBase": base})
}

// POST /product-bases
func (h *ProductBaseHandler) CreateProductBase(c *gin.Context) {
	var req services.SaveProductBaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	base, details, err := h.productBaseService.Create(&req)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	if len(details) > 0 {
		utils.ErrorResponse(c, 400, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     "Product base created",
		"productBase": base,
	})
}

// PUT /product-bases/:uuid
func (h *ProductBaseHandler) UpdateProductBase(c *gin.Context) {
	var req services.SaveProductBaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	base, details, err := h.productBaseService.Update(c.Param("uuid"), &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product base not found")
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
		"message":     "Product base updated",
		"productBase": base,
	})
}

// DELETE /product-bases/:uuid
func (h *ProductBaseHandler) DeleteProductBase(c *gin.Context) {
	if err := h.productBaseService.Delete(c.Param("uuid")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product base not found")
			return
		}
		if strings.Contains(err.Error(), "active variant mappings") {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Product base deleted"})
}
