// internal/shopify/types.go
package shopify

import "strings"

// Product is the externally owned Shopify product fetched live from the
// Admin API. Never persisted as a source of truth; only identifiers are
// referenced by local records.
type Product struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	Status   string    `json:"status"`
	Variants []Variant `json:"variants"`
}

type Variant struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	SKU            string  `json:"sku"`
	Price          string  `json:"price"`
	CompareAtPrice *string `json:"compareAtPrice,omitempty"`
}

// HasVariant reports whether the product still carries the given variant GID.
func (p *Product) HasVariant(variantGID string) bool {
	for _, v := range p.Variants {
		if v.ID == variantGID {
			return true
		}
	}
	return false
}

// ProductGID builds the Admin API global id for a numeric product id.
func ProductGID(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return "gid://shopify/Product/" + id
}

// LegacyID extracts the trailing numeric id from a GID, or returns the
// input unchanged when it is not a GID.
func LegacyID(gid string) string {
	if idx := strings.LastIndex(gid, "/"); idx >= 0 {
		return gid[idx+1:]
	}
	return gid
}
