// internal/models/ai_style.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AiStyle is a named AI prompt template with an example image shown to
// storefront customers.
type AiStyle struct {
	BaseModel
	UUID            string         `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	Name            string         `json:"name" gorm:"size:255;not null"`
	PromptTemplate  string         `json:"prompt_template" gorm:"type:text;not null"`
	ExampleImageURL string         `json:"example_image_url" gorm:"size:1024"`
	Tags            pq.StringArray `json:"tags" gorm:"type:text[]"`
	IsActive        bool           `json:"is_active" gorm:"default:true;index"`
	SortOrder       int            `json:"sort_order" gorm:"default:0"`
	UsageCount      int64          `json:"usage_count" gorm:"default:0"`
}

func (s *AiStyle) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.New().String()
	}
	return nil
}
