// internal/services/editor_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/pawprintlab/petart-backend/internal/config"
	"github.com/pawprintlab/petart-backend/internal/formstate"
	"github.com/pawprintlab/petart-backend/internal/metrics"
	"github.com/pawprintlab/petart-backend/internal/models"
	"github.com/pawprintlab/petart-backend/internal/reconcile"
	"github.com/pawprintlab/petart-backend/internal/shopify"
	"github.com/pawprintlab/petart-backend/internal/utils"
)

var ErrNoEditorSession = errors.New("no editor session; load the editor first")

// EditorService owns the per-product editor sessions. Each session holds a
// form store seeded by the loader; state ops and submits address the store
// through this service so handlers never touch stores directly. Idle
// sessions expire after the configured TTL; an expired session reads as no
// session and the UI recovers by reloading the editor.
type EditorService struct {
	db       *gorm.DB
	settings *SettingsService
	styles   *StyleService
	api      ShopifyAPI

	productCache *cache.Cache
	sessions     *cache.Cache
}

// EditorData is the loader payload for the settings editor: committed form
// values, the full catalogs the form renders against, the live Shopify
// product and the derived update-needed hint.
type EditorData struct {
	ShopifyProductID     string                                 `json:"shopifyProductId"`
	IsEnabled            bool                                   `json:"isEnabled"`
	SelectedStyles       []string                               `json:"selectedStyles"`
	SelectedProductBases []string                               `json:"selectedProductBases"`
	VariantMappings      []reconcile.Mapping                    `json:"variantMappings"`
	ShopifyProduct       *shopify.Product                       `json:"shopifyProduct"`
	AiStyles             []models.AiStyle                       `json:"aiStyles"`
	ProductBases         []models.ProductBase                   `json:"productBases"`
	ProductBaseVariants  []models.ProductBaseVariant            `json:"productBaseVariants"`
	ProductBaseOptions   []models.ProductBaseOption             `json:"productBaseOptions"`
	OptionValues         []models.ProductBaseVariantOptionValue `json:"optionValues"`
	Shop                 string                                 `json:"shop"`
	UpdateNeeded         bool                                   `json:"updateNeeded"`
	State                formstate.State                        `json:"state"`
}

// StateOp is one form mutation posted by the admin UI. Op selects which
// fields are read; the rest are ignored.
type StateOp struct {
	Op                   string   `json:"op" validate:"required,oneof=toggle_enabled toggle_style set_selected_styles toggle_product_base update_variant_mapping reset_form"`
	StyleUUID            string   `json:"styleUuid,omitempty"`
	SelectedStyles       []string `json:"selectedStyles,omitempty"`
	ProductBaseUUID      string   `json:"productBaseUuid,omitempty"`
	ProductBaseVariantID uint     `json:"productBaseVariantId,omitempty"`
	ShopifyVariantID     string   `json:"shopifyVariantId,omitempty"`
}

func NewEditorService(db *gorm.DB, settings *SettingsService, styles *StyleService, api ShopifyAPI, cfg *config.Config) *EditorService {
	productTTL := time.Duration(cfg.Cache.ProductTTL) * time.Second
	sessionTTL := time.Duration(cfg.Cache.SessionTTL) * time.Second
	if sessionTTL <= 0 {
		sessionTTL = cache.NoExpiration
	}
	return &EditorService{
		db:           db,
		settings:     settings,
		styles:       styles,
		api:          api,
		productCache: cache.New(productTTL, 2*productTTL),
		sessions:     cache.New(sessionTTL, 2*sessionTTL),
	}
}

// LoadEditor assembles the loader payload and (re)seeds the session store
// for the product. Loading always resets the session to committed state.
func (s *EditorService) LoadEditor(ctx context.Context, shop *models.Shop, productGID string) (*EditorData, error) {
	product, err := s.fetchProduct(ctx, shop, productGID)
	if err != nil {
		return nil, err
	}

	ref, err := s.loadReference()
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Load(shop.Domain, productGID)
	if err != nil {
		return nil, err
	}

	initial := formstate.InitialState{Reference: ref}
	if settings != nil {
		initial.IsEnabled = settings.IsEnabled
		initial.SelectedProductBases = append([]string(nil), settings.SelectedProductBases...)
		for _, sel := range settings.StyleSelections {
			initial.SelectedStyles = append(initial.SelectedStyles, sel.StyleUUID)
		}
		for _, m := range settings.VariantMappings {
			initial.VariantMappings = append(initial.VariantMappings, reconcile.Mapping{
				ProductBaseVariantID: m.ProductBaseVariantID,
				ShopifyVariantID:     m.ShopifyVariantID,
			})
		}
	}

	store := formstate.NewStore()
	store.Initialize(initial)
	state := store.State()
	s.sessions.Set(sessionKey(shop.Domain, productGID), store, cache.DefaultExpiration)

	return &EditorData{
		ShopifyProductID:     productGID,
		IsEnabled:            initial.IsEnabled,
		SelectedStyles:       emptyIfNil(initial.SelectedStyles),
		SelectedProductBases: emptyIfNil(initial.SelectedProductBases),
		VariantMappings:      emptyMappingsIfNil(initial.VariantMappings),
		ShopifyProduct:       product,
		AiStyles:             ref.Styles,
		ProductBases:         ref.ProductBases,
		ProductBaseVariants:  ref.Variants,
		ProductBaseOptions:   ref.Options,
		OptionValues:         ref.OptionValues,
		Shop:                 shop.Domain,
		UpdateNeeded:         updateNeeded(product, initial.VariantMappings, state.UnmappedVariants),
		State:                state,
	}, nil
}

// ApplyStateOp routes one mutation to the session store and returns the
// post-mutation state for the UI to render.
func (s *EditorService) ApplyStateOp(shopDomain, productGID string, op *StateOp) (*formstate.State, []utils.FieldError, error) {
	if err := utils.ValidateStruct(op); err != nil {
		return nil, utils.FieldErrorsFromValidation(err), nil
	}

	store, ok := s.lookupSession(shopDomain, productGID)
	if !ok {
		return nil, nil, ErrNoEditorSession
	}

	var err error
	switch op.Op {
	case "toggle_enabled":
		store.ToggleEnabled()
	case "toggle_style":
		err = store.ToggleStyle(op.StyleUUID)
	case "set_selected_styles":
		err = store.SetSelectedStyles(op.SelectedStyles)
	case "toggle_product_base":
		err = store.ToggleProductBase(op.ProductBaseUUID)
	case "update_variant_mapping":
		err = store.UpdateVariantMapping(op.ProductBaseVariantID, op.ShopifyVariantID)
	case "reset_form":
		store.ResetForm()
	}
	if err != nil {
		return nil, []utils.FieldError{{Field: opField(op.Op), Message: err.Error()}}, nil
	}

	state := store.State()
	return &state, nil, nil
}

// SubmitSettings runs the session's submission sequence against the
// settings service and resolves the store flags from the outcome.
func (s *EditorService) SubmitSettings(shopDomain, productGID string) (*formstate.State, error) {
	store, ok := s.lookupSession(shopDomain, productGID)
	if !ok {
		return nil, ErrNoEditorSession
	}

	var saveDetails []utils.FieldError
	err := store.SubmitForm(func(payload formstate.SavePayload) error {
		details, err := s.settings.Save(shopDomain, productGID, payload)
		saveDetails = details
		return err
	})
	switch {
	case errors.Is(err, formstate.ErrSubmitInFlight):
		return nil, err
	case errors.Is(err, formstate.ErrValidationFailed):
		state := store.State()
		return &state, err
	case err != nil:
		store.FinishSubmit(false, "Failed to save settings", nil)
		state := store.State()
		return &state, err
	case len(saveDetails) > 0:
		fieldErrors := make([]formstate.FieldError, 0, len(saveDetails))
		for _, d := range saveDetails {
			fieldErrors = append(fieldErrors, formstate.FieldError{Field: d.Field, Message: d.Message})
		}
		store.FinishSubmit(false, "Validation failed", fieldErrors)
		state := store.State()
		return &state, formstate.ErrValidationFailed
	}

	store.FinishSubmit(true, "", nil)
	state := store.State()
	return &state, nil
}

// DropSession forgets a session, forcing the next load to reseed it.
func (s *EditorService) DropSession(shopDomain, productGID string) {
	s.sessions.Delete(sessionKey(shopDomain, productGID))
}

func (s *EditorService) fetchProduct(ctx context.Context, shop *models.Shop, productGID string) (*shopify.Product, error) {
	key := sessionKey(shop.Domain, productGID)
	if cached, found := s.productCache.Get(key); found {
		return cached.(*shopify.Product), nil
	}

	product, err := s.api.GetProduct(ctx, shop.Domain, shop.AccessToken, productGID)
	if err != nil {
		metrics.ShopifyAPICalls.WithLabelValues("get_product", "error").Inc()
		return nil, fmt.Errorf("failed to fetch shopify product: %w", err)
	}
	metrics.ShopifyAPICalls.WithLabelValues("get_product", "success").Inc()

	s.productCache.Set(key, product, cache.DefaultExpiration)
	return product, nil
}

func (s *EditorService) loadReference() (formstate.ReferenceData, error) {
	var ref formstate.ReferenceData

	err := s.db.Where("is_active = ?", true).
		Order("sort_order ASC, created_at ASC").
		Find(&ref.ProductBases).Error
	if err != nil {
		return ref, fmt.Errorf("failed to fetch product bases: %w", err)
	}

	baseIDs := make([]uint, 0, len(ref.ProductBases))
	for _, b := range ref.ProductBases {
		baseIDs = append(baseIDs, b.ID)
	}

	if len(baseIDs) > 0 {
		if err := s.db.Where("product_base_id IN ? AND is_active = ?", baseIDs, true).
			Order("sort_order ASC").Find(&ref.Variants).Error; err != nil {
			return ref, fmt.Errorf("failed to fetch product base variants: %w", err)
		}
		if err := s.db.Where("product_base_id IN ?", baseIDs).
			Order("sort_order ASC").Find(&ref.Options).Error; err != nil {
			return ref, fmt.Errorf("failed to fetch product base options: %w", err)
		}
	}

	variantIDs := reconcile.VariantIDs(ref.Variants)
	if len(variantIDs) > 0 {
		if err := s.db.Where("product_base_variant_id IN ?", variantIDs).
			Find(&ref.OptionValues).Error; err != nil {
			return ref, fmt.Errorf("failed to fetch option values: %w", err)
		}
	}

	styles, err := s.styles.List(false)
	if err != nil {
		return ref, err
	}
	ref.Styles = styles

	return ref, nil
}

func (s *EditorService) lookupSession(shopDomain, productGID string) (*formstate.Store, bool) {
	key := sessionKey(shopDomain, productGID)
	v, ok := s.sessions.Get(key)
	if !ok {
		return nil, false
	}
	store := v.(*formstate.Store)
	// every access restarts the idle window
	s.sessions.Set(key, store, cache.DefaultExpiration)
	return store, true
}

// updateNeeded flags the editor banner when a stored mapping points at a
// Shopify variant that no longer exists, or when selected bases still have
// unmapped variants.
func updateNeeded(product *shopify.Product, mappings []reconcile.Mapping, unmapped []models.ProductBaseVariant) bool {
	for _, m := range mappings {
		if !product.HasVariant(m.ShopifyVariantID) {
			return true
		}
	}
	return len(unmapped) > 0
}

func opField(op string) string {
	switch op {
	case "toggle_style", "set_selected_styles":
		return "selectedStyles"
	case "toggle_product_base":
		return "selectedProductBases"
	case "update_variant_mapping":
		return "variantMappings"
	default:
		return "form"
	}
}

func sessionKey(shopDomain, productGID string) string {
	return shopDomain + "|" + productGID
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyMappingsIfNil(m []reconcile.Mapping) []reconcile.Mapping {
	if m == nil {
		return []reconcile.Mapping{}
	}
	return m
}
