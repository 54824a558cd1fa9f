// internal/models/product_base.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductBase is a merchant-defined template for a physical good
// (e.g. "Ceramic Mug") with configurable options and variants.
type ProductBase struct {
	BaseModel
	UUID        string `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	Name        string `json:"name" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	IsActive    bool   `json:"is_active" gorm:"default:true;index"`
	SortOrder   int    `json:"sort_order" gorm:"default:0"`

	// Relationships
	Options  []ProductBaseOption  `json:"options,omitempty" gorm:"foreignKey:ProductBaseID;constraint:OnDelete:CASCADE"`
	Variants []ProductBaseVariant `json:"variants,omitempty" gorm:"foreignKey:ProductBaseID;constraint:OnDelete:CASCADE"`
}

func (pb *ProductBase) BeforeCreate(tx *gorm.DB) error {
	if pb.UUID == "" {
		pb.UUID = uuid.New().String()
	}
	return nil
}

// ProductBaseOption is a named axis of variation (e.g. "Size") scoped to
// one product base. Options are replaced wholesale on product-base update.
type ProductBaseOption struct {
	BaseModel
	ProductBaseID uint   `json:"product_base_id" gorm:"not null;index"`
	Name          string `json:"name" gorm:"size:100;not null"`
	SortOrder     int    `json:"sort_order" gorm:"default:0"`
}

// ProductBaseVariant is one concrete size/option combination of a product
// base, with its own price and pixel dimensions for image generation.
type ProductBaseVariant struct {
	BaseModel
	ProductBaseID  uint     `json:"product_base_id" gorm:"not null;index"`
	Name           string   `json:"name" gorm:"size:255;not null"`
	WidthPx        int      `json:"width_px" gorm:"not null"`
	HeightPx       int      `json:"height_px" gorm:"not null"`
	Price          float64  `json:"price" gorm:"type:decimal(10,2);not null"`
	CompareAtPrice *float64 `json:"compare_at_price,omitempty" gorm:"type:decimal(10,2)"`
	IsActive       bool     `json:"is_active" gorm:"default:true"`
	SortOrder      int      `json:"sort_order" gorm:"default:0"`

	OptionValues []ProductBaseVariantOptionValue `json:"option_values,omitempty" gorm:"foreignKey:ProductBaseVariantID;constraint:OnDelete:CASCADE"`
}

// ProductBaseVariantOptionValue binds a variant to its chosen value for
// one option axis.
type ProductBaseVariantOptionValue struct {
	BaseModel
	ProductBaseVariantID uint   `json:"product_base_variant_id" gorm:"not null;index"`
	ProductBaseOptionID  uint   `json:"product_base_option_id" gorm:"not null;index"`
	Value                string `json:"value" gorm:"size:100;not null"`
}
