// internal/services/style_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pawprintlab/petart-backend/internal/formstate"
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

type StyleService struct {
	db *gorm.DB
}

type SaveStyleRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=255"`
	PromptTemplate  string   `json:"promptTemplate" validate:"required,min=1"`
	ExampleImageURL string   `json:"exampleImageUrl,omitempty" validate:"omitempty,url"`
	Tags            []string `json:"tags,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
	SortOrder       int      `json:"sortOrder"`
}

func NewStyleService(db *gorm.DB) *StyleService {
	return &StyleService{db: db}
}

func (s *StyleService) List(includeInactive bool) ([]models.AiStyle, error) {
	query := s.db.Model(&models.AiStyle{}).Order("sort_order ASC, created_at ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var styles []models.AiStyle
	if err := query.Find(&styles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch styles: %w", err)
	}
	return styles, nil
}

func (s *StyleService) Get(styleUUID string) (*models.AiStyle, error) {
	var style models.AiStyle
	if err := s.db.Where("uuid = ?", styleUUID).First(&style).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("style not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &style, nil
}

func (s *StyleService) Create(req *SaveStyleRequest) (*models.AiStyle, []utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.FieldErrorsFromValidation(err), nil
	}

	style := &models.AiStyle{
		Name:            req.Name,
		PromptTemplate:  req.PromptTemplate,
		ExampleImageURL: req.ExampleImageURL,
		Tags:            pqArray(req.Tags),
		IsActive:        boolOrDefault(req.IsActive, true),
		SortOrder:       req.SortOrder,
	}
	if err := s.db.Create(style).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create style: %w", err)
	}
	return style, nil, nil
}

func (s *StyleService) Update(styleUUID string, req *SaveStyleRequest) (*models.AiStyle, []utils.FieldError, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.FieldErrorsFromValidation(err), nil
	}

	style, err := s.Get(styleUUID)
	if err != nil {
		return nil, nil, err
	}

	updates := map[string]interface{}{
		"name":              req.Name,
		"prompt_template":   req.PromptTemplate,
		"example_image_url": req.ExampleImageURL,
		"tags":              pqArray(req.Tags),
		"is_active":         boolOrDefault(req.IsActive, style.IsActive),
		"sort_order":        req.SortOrder,
	}
	if err := s.db.Model(style).Updates(updates).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update style: %w", err)
	}
	updated, err := s.Get(styleUUID)
	return updated, nil, err
}

func (s *StyleService) Delete(styleUUID string) error {
	style, err := s.Get(styleUUID)
	if err != nil {
		return err
	}

	var selectionCount int64
	if err := s.db.Model(&models.ProductStyleSelection{}).
		Where("style_uuid = ?", styleUUID).Count(&selectionCount).Error; err != nil {
		return fmt.Errorf("failed to check selections: %w", err)
	}
	if selectionCount > 0 {
		return errors.New("cannot delete style that is selected on products")
	}

	if err := s.db.Delete(style).Error; err != nil {
		return fmt.Errorf("failed to delete style: %w", err)
	}
	return nil
}

// Reorder applies the {uuid, sortOrder} list from the admin drag-and-drop.
func (s *StyleService) Reorder(order []formstate.StyleOrder) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range order {
			result := tx.Model(&models.AiStyle{}).
				Where("uuid = ?", entry.UUID).
				Update("sort_order", entry.SortOrder)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder style %s: %w", entry.UUID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("style %s not found", entry.UUID)
			}
		}
		return nil
	})
}

func (s *StyleService) IncrementUsage(styleUUID string) error {
	return s.db.Model(&models.AiStyle{}).
		Where("uuid = ?", styleUUID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}
