// internal/models/settings.go
package models

import "github.com/lib/pq"

// ProductSettings holds the pet-art configuration for one Shopify product:
// whether the widget is enabled, which styles and product bases are offered,
// and how product-base variants map onto live Shopify variants.
type ProductSettings struct {
	BaseModel
	ShopDomain           string         `json:"shop_domain" gorm:"size:255;not null;index:idx_product_settings_shop_product,unique"`
	ShopifyProductID     string         `json:"shopify_product_id" gorm:"size:255;not null;index:idx_product_settings_shop_product,unique"`
	IsEnabled            bool           `json:"is_enabled" gorm:"default:false"`
	SelectedProductBases pq.StringArray `json:"selected_product_bases" gorm:"type:text[]"`

	// Relationships
	StyleSelections []ProductStyleSelection `json:"style_selections,omitempty" gorm:"foreignKey:ProductSettingsID;constraint:OnDelete:CASCADE"`
	VariantMappings []VariantMapping        `json:"variant_mappings,omitempty" gorm:"foreignKey:ProductSettingsID;constraint:OnDelete:CASCADE"`
}

// ProductStyleSelection records one selected style and its display order.
// Selections are replaced wholesale on save, never merged.
type ProductStyleSelection struct {
	BaseModel
	ProductSettingsID uint   `json:"product_settings_id" gorm:"not null;index"`
	StyleUUID         string `json:"style_uuid" gorm:"type:uuid;not null"`
	SortOrder         int    `json:"sort_order" gorm:"default:0"`
}

// VariantMapping associates one product-base variant with one live Shopify
// variant. At most one active mapping may exist per product-base variant and
// per Shopify variant.
type VariantMapping struct {
	BaseModel
	ProductSettingsID    uint   `json:"product_settings_id" gorm:"not null;index"`
	ProductBaseVariantID uint   `json:"product_base_variant_id" gorm:"not null;index"`
	ShopifyVariantID     string `json:"shopify_variant_id" gorm:"size:255;not null;index"`
	IsActive             bool   `json:"is_active" gorm:"default:true"`
}
