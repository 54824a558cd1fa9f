// internal/formstate/store.go
package formstate

import (
	"errors"
	"sync"

	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/reconcile"
)

var (
	ErrVariantNotAvailable = errors.New("product base variant is not available for mapping")
	ErrUnknownStyle        = errors.New("unknown style")
	ErrUnknownProductBase  = errors.New("unknown product base")
)

// FieldError is one field-level validation failure, mapped 1:1 onto the
// form regardless of whether it originated client-side or server-side.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Store tracks current vs committed form values for one product's pet-art
// settings. All mutations go through its methods; the mutex is the only
// discipline needed since each editor session is driven by one merchant.
type Store struct {
	mu        sync.Mutex
	ref       ReferenceData
	current   Snapshot
	committed Snapshot

	fieldErrors map[string]string
	formError   string

	isDirty           bool
	isSubmitting      bool
	isSaving          bool
	isLoading         bool
	preventStateReset bool
}

func NewStore() *Store {
	return &Store{fieldErrors: make(map[string]string)}
}

// Initialize sets both snapshots from loader-provided data in one atomic
// update and resets all UI flags.
func (s *Store) Initialize(initial InitialState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		IsEnabled:            initial.IsEnabled,
		SelectedStyles:       initial.SelectedStyles,
		SelectedProductBases: initial.SelectedProductBases,
		VariantMappings:      initial.VariantMappings,
	}
	s.ref = initial.Reference
	s.current = snap.Clone()
	s.committed = snap.Clone()
	s.fieldErrors = make(map[string]string)
	s.formError = ""
	s.isDirty = false
	s.isSubmitting = false
	s.isSaving = false
	s.isLoading = false
	s.preventStateReset = false
}

func (s *Store) ToggleEnabled() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.IsEnabled = !s.current.IsEnabled
	s.recomputeDirty()
}

func (s *Store) ToggleStyle(styleUUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.styleExists(styleUUID) {
		return ErrUnknownStyle
	}

	for i, u := range s.current.SelectedStyles {
		if u == styleUUID {
			s.current.SelectedStyles = append(s.current.SelectedStyles[:i], s.current.SelectedStyles[i+1:]...)
			s.recomputeDirty()
			return nil
		}
	}
	s.current.SelectedStyles = append(s.current.SelectedStyles, styleUUID)
	s.recomputeDirty()
	return nil
}

// SetSelectedStyles replaces the selection wholesale; element order is the
// display order and becomes sortOrder on save.
func (s *Store) SetSelectedStyles(styleUUIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range styleUUIDs {
		if !s.styleExists(u) {
			return ErrUnknownStyle
		}
	}
	s.current.SelectedStyles = append([]string(nil), styleUUIDs...)
	s.recomputeDirty()
	return nil
}

// ToggleProductBase flips one base in or out of the selection and then
// clears mappings orphaned by the change. Cleanup runs against the
// post-toggle selection so a deselected base cannot be read stale.
func (s *Store) ToggleProductBase(baseUUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.baseExists(baseUUID) {
		return ErrUnknownProductBase
	}

	found := false
	for i, u := range s.current.SelectedProductBases {
		if u == baseUUID {
			s.current.SelectedProductBases = append(s.current.SelectedProductBases[:i], s.current.SelectedProductBases[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.current.SelectedProductBases = append(s.current.SelectedProductBases, baseUUID)
	}

	available := reconcile.AvailableVariants(s.ref.ProductBases, s.current.SelectedProductBases, s.ref.Variants)
	s.current.VariantMappings = reconcile.ClearOrphanedMappings(s.current.VariantMappings, reconcile.VariantIDs(available))
	s.recomputeDirty()
	return nil
}

// UpdateVariantMapping maps a product-base variant onto a Shopify variant;
// an empty shopifyVariantID removes the mapping.
func (s *Store) UpdateVariantMapping(productBaseVariantID uint, shopifyVariantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shopifyVariantID != "" && !s.variantAvailable(productBaseVariantID) {
		return ErrVariantNotAvailable
	}
	s.current.VariantMappings = reconcile.UpdateMapping(s.current.VariantMappings, productBaseVariantID, shopifyVariantID)
	s.recomputeDirty()
	return nil
}

// ResetForm discards the current snapshot and restores the committed one.
// Available any time, not just while dirty.
func (s *Store) ResetForm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.committed.Clone()
	s.fieldErrors = make(map[string]string)
	s.formError = ""
	s.isDirty = false
}

func (s *Store) SetFieldError(field, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fieldErrors[field] = message
}

func (s *Store) ClearErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fieldErrors = make(map[string]string)
	s.formError = ""
}

// ChangedFields returns the top-level keys whose value deep-differs from
// the committed snapshot, for partial-update payloads.
func (s *Store) ChangedFields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []string
	if s.current.IsEnabled != s.committed.IsEnabled {
		changed = append(changed, "isEnabled")
	}
	if !stringSlicesEqual(s.current.SelectedStyles, s.committed.SelectedStyles) {
		changed = append(changed, "selectedStyles")
	}
	if !stringSlicesEqual(s.current.SelectedProductBases, s.committed.SelectedProductBases) {
		changed = append(changed, "selectedProductBases")
	}
	mappingsEqual := len(s.current.VariantMappings) == len(s.committed.VariantMappings)
	if mappingsEqual {
		for i := range s.current.VariantMappings {
			if s.current.VariantMappings[i] != s.committed.VariantMappings[i] {
				mappingsEqual = false
				break
			}
		}
	}
	if !mappingsEqual {
		changed = append(changed, "variantMappings")
	}
	return changed
}

func (s *Store) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDirty
}

func (s *Store) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSubmitting
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

func (s *Store) CommittedSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed.Clone()
}

// State is the serializable view returned to the admin UI after every
// mutation: flags, values, errors and the reconciler-derived variant lists.
type State struct {
	IsDirty           bool                          `json:"isDirty"`
	IsSubmitting      bool                          `json:"isSubmitting"`
	IsSaving          bool                          `json:"isSaving"`
	IsLoading         bool                          `json:"isLoading"`
	PreventStateReset bool                          `json:"preventStateReset"`
	Values            Snapshot                      `json:"values"`
	FieldErrors       map[string]string             `json:"fieldErrors"`
	FormError         string                        `json:"formError,omitempty"`
	AvailableVariants []models.ProductBaseVariant   `json:"availableVariants"`
	UnmappedVariants  []models.ProductBaseVariant   `json:"unmappedVariants"`
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	available := reconcile.AvailableVariants(s.ref.ProductBases, s.current.SelectedProductBases, s.ref.Variants)
	unmapped := reconcile.UnmappedVariants(available, s.current.VariantMappings)

	errs := make(map[string]string, len(s.fieldErrors))
	for k, v := range s.fieldErrors {
		errs[k] = v
	}

	return State{
		IsDirty:           s.isDirty,
		IsSubmitting:      s.isSubmitting,
		IsSaving:          s.isSaving,
		IsLoading:         s.isLoading,
		PreventStateReset: s.preventStateReset,
		Values:            s.current.Clone(),
		FieldErrors:       errs,
		FormError:         s.formError,
		AvailableVariants: available,
		UnmappedVariants:  unmapped,
	}
}

// Callers must hold s.mu.

func (s *Store) recomputeDirty() {
	s.isDirty = !s.current.Equal(s.committed)
}

func (s *Store) styleExists(styleUUID string) bool {
	for _, st := range s.ref.Styles {
		if st.UUID == styleUUID {
			return true
		}
	}
	return false
}

func (s *Store) baseExists(baseUUID string) bool {
	for _, b := range s.ref.ProductBases {
		if b.UUID == baseUUID {
			return true
		}
	}
	return false
}

func (s *Store) variantAvailable(variantID uint) bool {
	available := reconcile.AvailableVariants(s.ref.ProductBases, s.current.SelectedProductBases, s.ref.Variants)
	for _, v := range available {
		if v.ID == variantID {
			return true
		}
	}
	return false
}
