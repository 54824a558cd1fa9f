// internal/models/generation.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generation is one record of an AI-driven image transformation request and
// its result. Rows are created by the storefront proxy, advanced by the
// vendor webhook, and read-only from the admin dashboard.
type Generation struct {
	BaseModel
	UUID             string           `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	ShopDomain       string           `json:"shop_domain" gorm:"size:255;not null;index"`
	ShopifyProductID string           `json:"shopify_product_id" gorm:"size:255;not null;index"`
	StyleUUID        string           `json:"style_uuid" gorm:"type:uuid;not null;index"`
	WidthPx          int              `json:"width_px"`
	HeightPx         int              `json:"height_px"`
	SourceImageURL   string           `json:"source_image_url" gorm:"size:1024;not null"`
	ResultImageURL   string           `json:"result_image_url,omitempty" gorm:"size:1024"`
	Status           GenerationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	UpscaleStatus    UpscaleStatus    `json:"upscale_status" gorm:"type:varchar(20);default:'none'"`
	OrderID          *string          `json:"order_id,omitempty" gorm:"size:255"`
	CustomerID       *string          `json:"customer_id,omitempty" gorm:"size:255"`
	ErrorMessage     string           `json:"error_message,omitempty" gorm:"type:text"`
	ProcessedAt      *time.Time       `json:"processed_at,omitempty"`
}

func (g *Generation) BeforeCreate(tx *gorm.DB) error {
	if g.UUID == "" {
		g.UUID = uuid.New().String()
	}
	return nil
}
