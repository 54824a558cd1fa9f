// internal/services/product_base_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

type ProductBaseService struct {
	db *gorm.DB
}

// VariantInput is one desired variant in a product-base save. The client
// always sends the complete variant list; optional empty fields carry no
// validation errors thanks to the omitempty guards.
type VariantInput struct {
	Name           string            `json:"name" validate:"required,min=1,max=255"`
	WidthPx        int               `json:"widthPx" validate:"required,gt=0"`
	HeightPx       int               `json:"heightPx" validate:"required,gt=0"`
	Price          float64           `json:"price" validate:"required,gt=0"`
	CompareAtPrice *float64          `json:"compareAtPrice,omitempty" validate:"omitempty,gt=0"`
	OptionValues   map[string]string `json:"optionValues,omitempty"`
	IsActive       *bool             `json:"isActive,omitempty"`
	SortOrder      int               `json:"sortOrder"`
}

// SaveProductBaseRequest is shared by create and update. Updates replace
// options, variants and option values wholesale rather than diffing.
type SaveProductBaseRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=255"`
	Description string         `json:"description,omitempty"`
	OptionNames []string       `json:"optionNames"`
	Variants    []VariantInput `json:"variants" validate:"required,min=1,dive"`
	IsActive    *bool          `json:"isActive,omitempty"`
	SortOrder   int            `json:"sortOrder"`
}

func NewProductBaseService(db *gorm.DB) *ProductBaseService {
	return &ProductBaseService{db: db}
}

func (s *ProductBaseService) List(params utils.PaginationParams) ([]models.ProductBase, int64, error) {
	query := s.db.Model(&models.ProductBase{}).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Variants.OptionValues")

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count product bases: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "sort_order"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var bases []models.ProductBase
	if err := query.Find(&bases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch product bases: %w", err)
	}

	return bases, total, nil
}

func (s *ProductBaseService) Get(baseUUID string) (*models.ProductBase, error) {
	var base models.ProductBase
	err := s.db.Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Variants.OptionValues").
		Where("uuid = ?", baseUUID).First(&base).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product base not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &base, nil
}

func (s *ProductBaseService) Create(req *SaveProductBaseRequest) (*models.ProductBase, []utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.FieldErrorsFromValidation(err), nil
	}
	if details := validateOptionValues(req); len(details) > 0 {
		return nil, details, nil
	}

	base := &models.ProductBase{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    boolOrDefault(req.IsActive, true),
		SortOrder:   req.SortOrder,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(base).Error; err != nil {
			return fmt.Errorf("failed to create product base: %w", err)
		}
		return s.insertChildren(tx, base, req)
	})
	if err != nil {
		return nil, nil, err
	}

	created, err := s.Get(base.UUID)
	return created, nil, err
}

// Update replaces options, variants and option values wholesale: existing
// rows are deleted and the request's complete lists are reinserted. The
// server never merges partial state.
func (s *ProductBaseService) Update(baseUUID string, req *SaveProductBaseRequest) (*models.ProductBase, []utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.FieldErrorsFromValidation(err), nil
	}
	if details := validateOptionValues(req); len(details) > 0 {
		return nil, details, nil
	}

	var base models.ProductBase
	if err := s.db.Where("uuid = ?", baseUUID).First(&base).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("product base not found")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
			"is_active":   boolOrDefault(req.IsActive, base.IsActive),
			"sort_order":  req.SortOrder,
		}
		if err := tx.Model(&base).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update product base: %w", err)
		}

		if err := s.deleteChildren(tx, base.ID); err != nil {
			return err
		}
		return s.insertChildren(tx, &base, req)
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.Get(base.UUID)
	return updated, nil, err
}

// Delete soft-deletes a product base. Refused while any active variant
// mapping still references one of its variants.
func (s *ProductBaseService) Delete(baseUUID string) error {
	var base models.ProductBase
	if err := s.db.Where("uuid = ?", baseUUID).First(&base).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product base not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	var mappingCount int64
	err := s.db.Model(&models.VariantMapping{}).
		Joins("JOIN product_base_variants ON product_base_variants.id = variant_mappings.product_base_variant_id").
		Where("product_base_variants.product_base_id = ? AND variant_mappings.is_active = ?", base.ID, true).
		Count(&mappingCount).Error
	if err != nil {
		return fmt.Errorf("failed to check mappings: %w", err)
	}
	if mappingCount > 0 {
		return errors.New("cannot delete product base with active variant mappings")
	}

	if err := s.db.Delete(&base).Error; err != nil {
		return fmt.Errorf("failed to delete product base: %w", err)
	}
	return nil
}

func (s *ProductBaseService) deleteChildren(tx *gorm.DB, baseID uint) error {
	var variantIDs []uint
	if err := tx.Model(&models.ProductBaseVariant{}).
		Where("product_base_id = ?", baseID).Pluck("id", &variantIDs).Error; err != nil {
		return fmt.Errorf("failed to list variants: %w", err)
	}

	if len(variantIDs) > 0 {
		if err := tx.Unscoped().Where("product_base_variant_id IN ?", variantIDs).
			Delete(&models.ProductBaseVariantOptionValue{}).Error; err != nil {
			return fmt.Errorf("failed to delete option values: %w", err)
		}
	}
	if err := tx.Unscoped().Where("product_base_id = ?", baseID).
		Delete(&models.ProductBaseVariant{}).Error; err != nil {
		return fmt.Errorf("failed to delete variants: %w", err)
	}
	if err := tx.Unscoped().Where("product_base_id = ?", baseID).
		Delete(&models.ProductBaseOption{}).Error; err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	return nil
}

func (s *ProductBaseService) insertChildren(tx *gorm.DB, base *models.ProductBase, req *SaveProductBaseRequest) error {
	optionsByName := make(map[string]uint, len(req.OptionNames))
	for i, name := range req.OptionNames {
		option := models.ProductBaseOption{
			ProductBaseID: base.ID,
			Name:          name,
			SortOrder:     i,
		}
		if err := tx.Create(&option).Error; err != nil {
			return fmt.Errorf("failed to create option: %w", err)
		}
		optionsByName[name] = option.ID
	}

	for i, input := range req.Variants {
		sortOrder := input.SortOrder
		if sortOrder == 0 {
			sortOrder = i
		}
		variant := models.ProductBaseVariant{
			ProductBaseID:  base.ID,
			Name:           input.Name,
			WidthPx:        input.WidthPx,
			HeightPx:       input.HeightPx,
			Price:          input.Price,
			CompareAtPrice: input.CompareAtPrice,
			IsActive:       boolOrDefault(input.IsActive, true),
			SortOrder:      sortOrder,
		}
		if err := tx.Create(&variant).Error; err != nil {
			return fmt.Errorf("failed to create variant: %w", err)
		}

		for optionName, value := range input.OptionValues {
			optionValue := models.ProductBaseVariantOptionValue{
				ProductBaseVariantID: variant.ID,
				ProductBaseOptionID:  optionsByName[optionName],
				Value:                value,
			}
			if err := tx.Create(&optionValue).Error; err != nil {
				return fmt.Errorf("failed to create option value: %w", err)
			}
		}
	}
	return nil
}

func validateOptionValues(req *SaveProductBaseRequest) []utils.FieldError {
	known := make(map[string]bool, len(req.OptionNames))
	for _, name := range req.OptionNames {
		known[name] = true
	}

	var details []utils.FieldError
	for i, v := range req.Variants {
		for optionName := range v.OptionValues {
			if !known[optionName] {
				details = append(details, utils.FieldError{
					Field:   fmt.Sprintf("variants[%d].optionValues", i),
					Message: fmt.Sprintf("option %q is not declared in optionNames", optionName),
				})
			}
		}
	}
	return details
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
