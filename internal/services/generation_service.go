// internal/services/generation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

// GenerationService records image-generation attempts. Rows are created by
// the storefront proxy, advanced by the vendor webhook and read-only from
// the admin dashboard.
type GenerationService struct {
	db           *gorm.DB
	styleService *StyleService
}

type CreateGenerationRequest struct {
	ShopifyProductID string  `json:"shopifyProductId" validate:"required,shopify_gid"`
	StyleUUID        string  `json:"styleUuid" validate:"required,uuid"`
	WidthPx          int     `json:"widthPx" validate:"omitempty,gt=0"`
	HeightPx         int     `json:"heightPx" validate:"omitempty,gt=0"`
	SourceImageURL   string  `json:"sourceImageUrl" validate:"required,url"`
	OrderID          *string `json:"orderId,omitempty"`
	CustomerID       *string `json:"customerId,omitempty"`
}

type GenerationWebhookRequest struct {
	GenerationUUID string `json:"generationUuid" validate:"required,uuid"`
	Status         string `json:"status" validate:"required,oneof=processing completed failed"`
	ResultImageURL string `json:"resultImageUrl,omitempty" validate:"omitempty,url"`
	UpscaleStatus  string `json:"upscaleStatus,omitempty" validate:"omitempty,oneof=none pending completed failed"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

type GenerationSearchParams struct {
	utils.PaginationParams
	Status           *models.GenerationStatus
	StyleUUID        *string
	ShopifyProductID *string
}

func NewGenerationService(db *gorm.DB, styleService *StyleService) *GenerationService {
	return &GenerationService{db: db, styleService: styleService}
}

// CreatePending records a storefront generation request and bumps the
// style's usage counter.
func (s *GenerationService) CreatePending(shopDomain string, req *CreateGenerationRequest) (*models.Generation, []utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.FieldErrorsFromValidation(err), nil
	}

	style, err := s.styleService.Get(req.StyleUUID)
	if err != nil {
		return nil, []utils.FieldError{{Field: "styleUuid", Message: "style not found"}}, nil
	}
	if !style.IsActive {
		return nil, []utils.FieldError{{Field: "styleUuid", Message: "style is not active"}}, nil
	}

	generation := &models.Generation{
		ShopDomain:       shopDomain,
		ShopifyProductID: req.ShopifyProductID,
		StyleUUID:        req.StyleUUID,
		WidthPx:          req.WidthPx,
		HeightPx:         req.HeightPx,
		SourceImageURL:   req.SourceImageURL,
		Status:           models.GenerationStatusPending,
		UpscaleStatus:    models.UpscaleStatusNone,
		OrderID:          req.OrderID,
		CustomerID:       req.CustomerID,
	}
	if err := s.db.Create(generation).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create generation: %w", err)
	}

	if err := s.styleService.IncrementUsage(req.StyleUUID); err != nil {
		logrus.WithError(err).WithField("style", req.StyleUUID).Warn("Failed to increment style usage")
	}

	return generation, nil, nil
}

// ApplyWebhook advances a generation through its status transitions.
func (s *GenerationService) ApplyWebhook(req *GenerationWebhookRequest) (*models.Generation, []utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.FieldErrorsFromValidation(err), nil
	}

	var generation models.Generation
	if err := s.db.Where("uuid = ?", req.GenerationUUID).First(&generation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("generation not found")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	newStatus := models.GenerationStatus(req.Status)
	if !validTransition(generation.Status, newStatus) {
		return nil, []utils.FieldError{{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", generation.Status, newStatus),
		}}, nil
	}

	updates := map[string]interface{}{"status": newStatus}
	if req.ResultImageURL != "" {
		updates["result_image_url"] = req.ResultImageURL
	}
	if req.UpscaleStatus != "" {
		updates["upscale_status"] = models.UpscaleStatus(req.UpscaleStatus)
	}
	if req.ErrorMessage != "" {
		updates["error_message"] = req.ErrorMessage
	}
	if newStatus == models.GenerationStatusCompleted || newStatus == models.GenerationStatusFailed {
		now := time.Now()
		updates["processed_at"] = &now
	}

	if err := s.db.Model(&generation).Updates(updates).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update generation: %w", err)
	}

	if err := s.db.Where("uuid = ?", req.GenerationUUID).First(&generation).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to reload generation: %w", err)
	}
	return &generation, nil, nil
}

func (s *GenerationService) Search(shopDomain string, params GenerationSearchParams) ([]models.Generation, int64, error) {
	query := s.db.Model(&models.Generation{}).Where("shop_domain = ?", shopDomain)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.StyleUUID != nil {
		query = query.Where("style_uuid = ?", *params.StyleUUID)
	}
	if params.ShopifyProductID != nil {
		query = query.Where("shopify_product_id = ?", *params.ShopifyProductID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count generations: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var generations []models.Generation
	if err := query.Find(&generations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch generations: %w", err)
	}
	return generations, total, nil
}

func (s *GenerationService) Get(shopDomain, generationUUID string) (*models.Generation, error) {
	var generation models.Generation
	err := s.db.Where("shop_domain = ? AND uuid = ?", shopDomain, generationUUID).
		First(&generation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("generation not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &generation, nil
}

// StatusCounts returns the dashboard counters grouped by status.
func (s *GenerationService) StatusCounts(shopDomain string) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := s.db.Model(&models.Generation{}).
		Select("status, COUNT(*) as count").
		Where("shop_domain = ?", shopDomain).
		Group("status").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}

	counts := map[string]int64{
		string(models.GenerationStatusPending):    0,
		string(models.GenerationStatusProcessing): 0,
		string(models.GenerationStatusCompleted):  0,
		string(models.GenerationStatusFailed):     0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func validTransition(from, to models.GenerationStatus) bool {
	switch from {
	case models.GenerationStatusPending:
		return to == models.GenerationStatusProcessing || to == models.GenerationStatusFailed
	case models.GenerationStatusProcessing:
		return to == models.GenerationStatusCompleted || to == models.GenerationStatusFailed
	default:
		return false
	}
}
