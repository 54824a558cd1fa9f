// internal/models/shop.go
package models

import "time"

// Shop is an installed merchant store.
type Shop struct {
	BaseModel
	Domain      string     `json:"domain" gorm:"size:255;uniqueIndex;not null"`
	AccessToken string     `json:"-" gorm:"size:255;not null"`
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	InstalledAt *time.Time `json:"installed_at,omitempty"`
}
