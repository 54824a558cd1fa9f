// internal/formstate/submit.go
package formstate

import (
	"errors"

	"github.com/pawprintlab/petart-backend/internal/reconcile"
)

var (
	// ErrSubmitInFlight rejects overlapping submissions. The original UI only
	// disabled the save button; the coordinator now enforces this itself.
	ErrSubmitInFlight = errors.New("a submission is already in flight")

	// ErrValidationFailed means pre-flight validation populated field errors
	// and the submit was aborted before any network call.
	ErrValidationFailed = errors.New("validation failed")
)

// ActionSaveProductSettings is the discriminator for the settings save payload.
const ActionSaveProductSettings = "save_product_settings"

// StyleOrder serializes one selected style with its recomputed sort order.
type StyleOrder struct {
	UUID      string `json:"uuid"`
	SortOrder int    `json:"sortOrder"`
}

// SavePayload is the JSON body posted to the action dispatch boundary.
type SavePayload struct {
	Action               string              `json:"action"`
	IsEnabled            bool                `json:"isEnabled"`
	SelectedStyles       []StyleOrder        `json:"selectedStyles"`
	SelectedProductBases []string            `json:"selectedProductBases"`
	VariantMappings      []reconcile.Mapping `json:"variantMappings"`
}

// SubmitForm runs the submission sequence:
//
//  1. Rejects if a submission is already in flight.
//  2. Validates the current snapshot; failure populates field errors and
//     aborts without touching the submitting flag.
//  3. Optimistically advances the committed snapshot and forces the dirty
//     flag off before the round trip resolves. A failed save leaves the
//     committed snapshot advanced; only the error banner signals the gap.
//  4. Sets preventStateReset, isLoading and isSaving, builds the payload
//     and delegates transport to onSubmit. No retry here.
//
// Flag resolution is driven by the caller observing the result and calling
// FinishSubmit, reacting to actual completion rather than a timeout.
func (s *Store) SubmitForm(onSubmit func(SavePayload) error) error {
	s.mu.Lock()

	if s.isSubmitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}

	if errs := s.validateForSubmit(); len(errs) > 0 {
		for _, e := range errs {
			s.fieldErrors[e.Field] = e.Message
		}
		s.mu.Unlock()
		return ErrValidationFailed
	}

	s.committed = s.current.Clone()
	s.isDirty = false
	s.fieldErrors = make(map[string]string)
	s.formError = ""

	s.preventStateReset = true
	s.isLoading = true
	s.isSaving = true
	s.isSubmitting = true

	payload := s.buildSavePayload()
	s.mu.Unlock()

	return onSubmit(payload)
}

// FinishSubmit reconciles the flags against the server response. On failure
// the structured details map 1:1 onto field errors; the committed snapshot
// stays advanced either way, so the dirty flag remains false.
func (s *Store) FinishSubmit(success bool, formError string, details []FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isSubmitting = false
	s.isSaving = false
	s.isLoading = false
	s.preventStateReset = false

	if success {
		s.fieldErrors = make(map[string]string)
		s.formError = ""
		return
	}

	if formError == "" {
		formError = "Request failed"
	}
	s.formError = formError
	for _, d := range details {
		s.fieldErrors[d.Field] = d.Message
	}
}

// Callers must hold s.mu.

func (s *Store) validateForSubmit() []FieldError {
	var errs []FieldError

	if s.current.IsEnabled {
		if len(s.current.SelectedStyles) == 0 {
			errs = append(errs, FieldError{Field: "selectedStyles", Message: "select at least one style before enabling"})
		}
		if len(s.current.SelectedProductBases) == 0 {
			errs = append(errs, FieldError{Field: "selectedProductBases", Message: "select at least one product base before enabling"})
		}
	}

	available := reconcile.AvailableVariants(s.ref.ProductBases, s.current.SelectedProductBases, s.ref.Variants)
	valid := make(map[uint]bool, len(available))
	for _, v := range available {
		valid[v.ID] = true
	}
	for _, m := range s.current.VariantMappings {
		if !valid[m.ProductBaseVariantID] {
			errs = append(errs, FieldError{Field: "variantMappings", Message: "mapping references an unavailable product base variant"})
			break
		}
	}

	return errs
}

func (s *Store) buildSavePayload() SavePayload {
	styles := make([]StyleOrder, 0, len(s.current.SelectedStyles))
	for i, u := range s.current.SelectedStyles {
		styles = append(styles, StyleOrder{UUID: u, SortOrder: i})
	}

	return SavePayload{
		Action:               ActionSaveProductSettings,
		IsEnabled:            s.current.IsEnabled,
		SelectedStyles:       styles,
		SelectedProductBases: append([]string(nil), s.current.SelectedProductBases...),
		VariantMappings:      append([]reconcile.Mapping(nil), s.current.VariantMappings...),
	}
}
