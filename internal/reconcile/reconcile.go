// Package reconcile computes the relationship between the merchant's
// product-base selection and the live Shopify variant list: which
// product-base variants are offerable, which still need a Shopify variant,
// and how mappings change as selections move. All functions are pure and
// order-preserving; callers pass the already-updated selection rather than
// reading shared state.
package reconcile

import "github.com/pawprintlab/petart-backend/internal/models"

// Mapping associates one product-base variant with one Shopify variant.
// An empty ShopifyVariantID never appears in a stored mapping list; it is
// only used as the deletion argument to UpdateMapping.
type Mapping struct {
	ProductBaseVariantID uint   `json:"productBaseVariantId"`
	ShopifyVariantID     string `json:"shopifyVariantId"`
}

// AvailableVariants filters variants to those whose owning product base is
// in the selected set. Output preserves the input order of variants.
func AvailableVariants(bases []models.ProductBase, selectedBaseUUIDs []string, variants []models.ProductBaseVariant) []models.ProductBaseVariant {
	selected := make(map[string]bool, len(selectedBaseUUIDs))
	for _, u := range selectedBaseUUIDs {
		selected[u] = true
	}

	selectedIDs := make(map[uint]bool, len(bases))
	for _, b := range bases {
		if selected[b.UUID] {
			selectedIDs[b.ID] = true
		}
	}

	available := make([]models.ProductBaseVariant, 0, len(variants))
	for _, v := range variants {
		if selectedIDs[v.ProductBaseID] {
			available = append(available, v)
		}
	}
	return available
}

// UnmappedVariants returns the available variants that no mapping references.
func UnmappedVariants(available []models.ProductBaseVariant, mappings []Mapping) []models.ProductBaseVariant {
	mapped := make(map[uint]bool, len(mappings))
	for _, m := range mappings {
		mapped[m.ProductBaseVariantID] = true
	}

	unmapped := make([]models.ProductBaseVariant, 0, len(available))
	for _, v := range available {
		if !mapped[v.ID] {
			unmapped = append(unmapped, v)
		}
	}
	return unmapped
}

// UpdateMapping removes any mapping for productBaseVariantID and any mapping
// for the (non-empty) shopifyVariantID, then appends the new pair. This keeps
// both uniqueness invariants: one mapping per product-base variant, one per
// Shopify variant. An empty shopifyVariantID is the deletion case: the
// existing mapping is removed without a replacement.
func UpdateMapping(mappings []Mapping, productBaseVariantID uint, shopifyVariantID string) []Mapping {
	result := make([]Mapping, 0, len(mappings)+1)
	for _, m := range mappings {
		if m.ProductBaseVariantID == productBaseVariantID {
			continue
		}
		if shopifyVariantID != "" && m.ShopifyVariantID == shopifyVariantID {
			continue
		}
		result = append(result, m)
	}

	if shopifyVariantID != "" {
		result = append(result, Mapping{
			ProductBaseVariantID: productBaseVariantID,
			ShopifyVariantID:     shopifyVariantID,
		})
	}
	return result
}

// ClearOrphanedMappings retains only mappings whose product-base variant is
// still valid. Called with the post-toggle selection whenever the selected
// product bases shrink.
func ClearOrphanedMappings(mappings []Mapping, validVariantIDs []uint) []Mapping {
	valid := make(map[uint]bool, len(validVariantIDs))
	for _, id := range validVariantIDs {
		valid[id] = true
	}

	result := make([]Mapping, 0, len(mappings))
	for _, m := range mappings {
		if valid[m.ProductBaseVariantID] {
			result = append(result, m)
		}
	}
	return result
}

// VariantIDs extracts the ids of a variant slice, preserving order.
func VariantIDs(variants []models.ProductBaseVariant) []uint {
	ids := make([]uint, 0, len(variants))
	for _, v := range variants {
		ids = append(ids, v.ID)
	}
	return ids
}
