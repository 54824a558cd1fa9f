// internal/formstate/snapshot.go
package formstate

import (
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/reconcile"
)

// Snapshot is the full set of editable form values for one product. The
// store keeps two: the current values the merchant is editing and the last
// committed values, and derives the dirty flag by deep comparison.
type Snapshot struct {
	IsEnabled            bool                `json:"isEnabled"`
	SelectedStyles       []string            `json:"selectedStyles"`
	SelectedProductBases []string            `json:"selectedProductBases"`
	VariantMappings      []reconcile.Mapping `json:"variantMappings"`
}

func (s Snapshot) Clone() Snapshot {
	c := Snapshot{IsEnabled: s.IsEnabled}
	c.SelectedStyles = append([]string(nil), s.SelectedStyles...)
	c.SelectedProductBases = append([]string(nil), s.SelectedProductBases...)
	c.VariantMappings = append([]reconcile.Mapping(nil), s.VariantMappings...)
	return c
}

// Equal is a deep comparison that treats nil and empty slices alike, so a
// freshly initialized form never reads as dirty.
func (s Snapshot) Equal(other Snapshot) bool {
	if s.IsEnabled != other.IsEnabled {
		return false
	}
	if !stringSlicesEqual(s.SelectedStyles, other.SelectedStyles) {
		return false
	}
	if !stringSlicesEqual(s.SelectedProductBases, other.SelectedProductBases) {
		return false
	}
	if len(s.VariantMappings) != len(other.VariantMappings) {
		return false
	}
	for i := range s.VariantMappings {
		if s.VariantMappings[i] != other.VariantMappings[i] {
			return false
		}
	}
	return true
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ReferenceData is the read-only catalog fetched on session load. It is
// immutable for the lifetime of one session; a reload is required to
// refresh it.
type ReferenceData struct {
	ProductBases []models.ProductBase
	Variants     []models.ProductBaseVariant
	Options      []models.ProductBaseOption
	OptionValues []models.ProductBaseVariantOptionValue
	Styles       []models.AiStyle
}

// InitialState is the loader-supplied payload that seeds both snapshots.
type InitialState struct {
	IsEnabled            bool
	SelectedStyles       []string
	SelectedProductBases []string
	VariantMappings      []reconcile.Mapping
	Reference            ReferenceData
}
