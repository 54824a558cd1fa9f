package formstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/reconcile"
)

func testInitialState() InitialState {
	bases := []models.ProductBase{
		{BaseModel: models.BaseModel{ID: 1}, UUID: "pb1", Name: "Canvas"},
		{BaseModel: models.BaseModel{ID: 2}, UUID: "pb2", Name: "Mug"},
	}
	variants := []models.ProductBaseVariant{
		{BaseModel: models.BaseModel{ID: 10}, ProductBaseID: 1, Name: "30x40"},
		{BaseModel: models.BaseModel{ID: 11}, ProductBaseID: 1, Name: "50x70"},
		{BaseModel: models.BaseModel{ID: 20}, ProductBaseID: 2, Name: "11oz"},
	}
	styles := []models.AiStyle{
		{BaseModel: models.BaseModel{ID: 1}, UUID: "style-royal", Name: "Royal Portrait"},
		{BaseModel: models.BaseModel{ID: 2}, UUID: "style-pop", Name: "Pop Art"},
	}

	return InitialState{
		IsEnabled:            true,
		SelectedStyles:       []string{"style-royal"},
		SelectedProductBases: []string{"pb1"},
		VariantMappings: []reconcile.Mapping{
			{ProductBaseVariantID: 10, ShopifyVariantID: "gid://shopify/ProductVariant/100"},
		},
		Reference: ReferenceData{ProductBases: bases, Variants: variants, Styles: styles},
	}
}

func TestInitializeIsClean(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	state := store.State()
	assert.False(t, state.IsDirty)
	assert.False(t, state.IsSubmitting)
	assert.Empty(t, state.FieldErrors)
}

func TestDirtyStateRoundTrip(t *testing.T) {
	store := NewStore()
	initial := testInitialState()
	store.Initialize(initial)

	before := store.Snapshot()
	store.ToggleEnabled()
	assert.True(t, store.IsDirty())

	store.ResetForm()
	assert.False(t, store.IsDirty())
	assert.True(t, store.Snapshot().Equal(before))
}

func TestToggleStyleAddsAndRemoves(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	require.NoError(t, store.ToggleStyle("style-pop"))
	assert.Equal(t, []string{"style-royal", "style-pop"}, store.Snapshot().SelectedStyles)
	assert.True(t, store.IsDirty())

	require.NoError(t, store.ToggleStyle("style-pop"))
	assert.Equal(t, []string{"style-royal"}, store.Snapshot().SelectedStyles)
	assert.False(t, store.IsDirty())

	assert.ErrorIs(t, store.ToggleStyle("nope"), ErrUnknownStyle)
}

func TestToggleProductBaseClearsOrphanedMappings(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	// Deselecting pb1 orphans the mapping for variant 10.
	require.NoError(t, store.ToggleProductBase("pb1"))

	snap := store.Snapshot()
	assert.Empty(t, snap.SelectedProductBases)
	assert.Empty(t, snap.VariantMappings)
	assert.True(t, store.IsDirty())
}

func TestUpdateVariantMappingRejectsUnavailableVariant(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	// Variant 20 belongs to pb2, which is not selected.
	err := store.UpdateVariantMapping(20, "gid://shopify/ProductVariant/200")
	assert.ErrorIs(t, err, ErrVariantNotAvailable)

	require.NoError(t, store.UpdateVariantMapping(11, "gid://shopify/ProductVariant/101"))
	state := store.State()
	assert.Empty(t, state.UnmappedVariants)
}

func TestUpdateVariantMappingDeletion(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	require.NoError(t, store.UpdateVariantMapping(10, ""))
	snap := store.Snapshot()
	assert.Empty(t, snap.VariantMappings)

	state := store.State()
	assert.Len(t, state.UnmappedVariants, 2)
}

func TestChangedFields(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	assert.Empty(t, store.ChangedFields())

	store.ToggleEnabled()
	require.NoError(t, store.ToggleStyle("style-pop"))

	changed := store.ChangedFields()
	assert.ElementsMatch(t, []string{"isEnabled", "selectedStyles"}, changed)
}

func TestStateDerivesUnmappedVariants(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	state := store.State()
	assert.Len(t, state.AvailableVariants, 2)
	require.Len(t, state.UnmappedVariants, 1)
	assert.Equal(t, uint(11), state.UnmappedVariants[0].ID)
}
