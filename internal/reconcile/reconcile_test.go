package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawprintlab/petart-backend/internal/models"
)

func base(id uint, uuid string) models.ProductBase {
	return models.ProductBase{BaseModel: models.BaseModel{ID: id}, UUID: uuid}
}

func variant(id, baseID uint) models.ProductBaseVariant {
	return models.ProductBaseVariant{BaseModel: models.BaseModel{ID: id}, ProductBaseID: baseID}
}

func TestAvailableVariantsFiltersBySelectedBase(t *testing.T) {
	bases := []models.ProductBase{base(1, "pb1"), base(2, "pb2")}
	variants := []models.ProductBaseVariant{variant(10, 1), variant(20, 2), variant(30, 1)}

	available := AvailableVariants(bases, []string{"pb1"}, variants)

	assert.Len(t, available, 2)
	assert.Equal(t, uint(10), available[0].ID)
	assert.Equal(t, uint(30), available[1].ID)
}

func TestAvailableVariantsIsIdempotent(t *testing.T) {
	bases := []models.ProductBase{base(1, "pb1"), base(2, "pb2")}
	variants := []models.ProductBaseVariant{variant(10, 1), variant(20, 2)}

	first := AvailableVariants(bases, []string{"pb1", "pb2"}, variants)
	second := AvailableVariants(bases, []string{"pb1", "pb2"}, variants)

	assert.Equal(t, first, second)
}

func TestAvailableVariantsEmptySelection(t *testing.T) {
	bases := []models.ProductBase{base(1, "pb1")}
	variants := []models.ProductBaseVariant{variant(10, 1)}

	assert.Empty(t, AvailableVariants(bases, nil, variants))
}

func TestUnmappedVariantsDerivation(t *testing.T) {
	bases := []models.ProductBase{base(1, "pb1")}
	variants := []models.ProductBaseVariant{variant(10, 1)}
	available := AvailableVariants(bases, []string{"pb1"}, variants)

	var mappings []Mapping
	unmapped := UnmappedVariants(available, mappings)
	assert.Len(t, unmapped, 1)
	assert.Equal(t, uint(10), unmapped[0].ID)

	mappings = UpdateMapping(mappings, 10, "gid://shopify/ProductVariant/55")
	assert.Empty(t, UnmappedVariants(available, mappings))
}

func TestUpdateMappingUniquenessInvariant(t *testing.T) {
	var mappings []Mapping
	mappings = UpdateMapping(mappings, 10, "gid1")
	mappings = UpdateMapping(mappings, 20, "gid2")
	mappings = UpdateMapping(mappings, 10, "gid3") // re-map variant 10
	mappings = UpdateMapping(mappings, 30, "gid2") // steal gid2 from variant 20

	seenVariant := make(map[uint]bool)
	seenShopify := make(map[string]bool)
	for _, m := range mappings {
		assert.False(t, seenVariant[m.ProductBaseVariantID], "duplicate product-base variant %d", m.ProductBaseVariantID)
		assert.False(t, seenShopify[m.ShopifyVariantID], "duplicate shopify variant %s", m.ShopifyVariantID)
		seenVariant[m.ProductBaseVariantID] = true
		seenShopify[m.ShopifyVariantID] = true
	}

	assert.Len(t, mappings, 2)
	assert.Contains(t, mappings, Mapping{ProductBaseVariantID: 10, ShopifyVariantID: "gid3"})
	assert.Contains(t, mappings, Mapping{ProductBaseVariantID: 30, ShopifyVariantID: "gid2"})
}

func TestUpdateMappingDeletionRestoresPriorState(t *testing.T) {
	before := []Mapping{{ProductBaseVariantID: 20, ShopifyVariantID: "gidA"}}

	after := UpdateMapping(before, 10, "gid123")
	assert.Len(t, after, 2)

	restored := UpdateMapping(after, 10, "")
	assert.Equal(t, before, restored)
}

func TestClearOrphanedMappingsOnDeselect(t *testing.T) {
	bases := []models.ProductBase{base(1, "pbA"), base(2, "pbB")}
	variants := []models.ProductBaseVariant{variant(1, 1), variant(2, 2), variant(3, 1)}
	mappings := []Mapping{
		{ProductBaseVariantID: 1, ShopifyVariantID: "s1"},
		{ProductBaseVariantID: 2, ShopifyVariantID: "s2"},
		{ProductBaseVariantID: 3, ShopifyVariantID: "s3"},
	}

	// Deselect pbA: cleanup runs against the post-toggle selection.
	available := AvailableVariants(bases, []string{"pbB"}, variants)
	cleaned := ClearOrphanedMappings(mappings, VariantIDs(available))

	assert.Equal(t, []Mapping{{ProductBaseVariantID: 2, ShopifyVariantID: "s2"}}, cleaned)
}
