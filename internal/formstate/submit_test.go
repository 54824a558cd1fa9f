package formstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitFormOptimisticCommit(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())
	store.ToggleEnabled()
	require.True(t, store.IsDirty())

	var got SavePayload
	err := store.SubmitForm(func(p SavePayload) error {
		got = p
		// The dirty flag is already off before the round trip resolves.
		assert.False(t, store.IsDirty())
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, ActionSaveProductSettings, got.Action)
	assert.False(t, got.IsEnabled)
	assert.Equal(t, []StyleOrder{{UUID: "style-royal", SortOrder: 0}}, got.SelectedStyles)
	assert.Equal(t, []string{"pb1"}, got.SelectedProductBases)

	state := store.State()
	assert.True(t, state.IsSubmitting)
	assert.True(t, state.IsSaving)
	assert.True(t, state.IsLoading)
	assert.True(t, state.PreventStateReset)

	store.FinishSubmit(true, "", nil)
	state = store.State()
	assert.False(t, state.IsSubmitting)
	assert.False(t, state.IsSaving)
	assert.False(t, state.IsLoading)
	assert.False(t, state.PreventStateReset)
	assert.False(t, state.IsDirty)
}

func TestSubmitFormFailureLeavesFormOptimisticallyClean(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())
	store.ToggleEnabled()

	err := store.SubmitForm(func(SavePayload) error { return errors.New("boom") })
	assert.Error(t, err)

	store.FinishSubmit(false, "Request failed", []FieldError{
		{Field: "selectedStyles", Message: "style no longer exists"},
	})

	state := store.State()
	// Known gap kept from the original design: the committed snapshot stays
	// advanced, so the form still reads clean after a failed save.
	assert.False(t, state.IsDirty)
	assert.False(t, state.IsSubmitting)
	assert.Equal(t, "Request failed", state.FormError)
	assert.Equal(t, "style no longer exists", state.FieldErrors["selectedStyles"])
}

func TestSubmitFormRejectsOverlappingSubmit(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	require.NoError(t, store.SubmitForm(func(SavePayload) error { return nil }))

	err := store.SubmitForm(func(SavePayload) error {
		t.Fatal("transport must not run for an overlapping submit")
		return nil
	})
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	store.FinishSubmit(true, "", nil)
	assert.NoError(t, store.SubmitForm(func(SavePayload) error { return nil }))
	store.FinishSubmit(true, "", nil)
}

func TestSubmitFormPreFlightValidation(t *testing.T) {
	store := NewStore()
	initial := testInitialState()
	initial.SelectedStyles = nil
	store.Initialize(initial)

	called := false
	err := store.SubmitForm(func(SavePayload) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.False(t, called)

	state := store.State()
	assert.False(t, state.IsSubmitting)
	assert.Contains(t, state.FieldErrors, "selectedStyles")
}

func TestFinishSubmitDefaultsFormError(t *testing.T) {
	store := NewStore()
	store.Initialize(testInitialState())

	require.NoError(t, store.SubmitForm(func(SavePayload) error { return nil }))
	store.FinishSubmit(false, "", nil)

	assert.Equal(t, "Request failed", store.State().FormError)
}
