// internal/services/editor_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprintlab/petart-backend/internal/config"
)

func testEditorService(t *testing.T, sessionTTL int) *EditorService {
	t.Helper()

	db := setupTestDB(t)
	seedCatalog(t, db)
	cfg := &config.Config{Cache: config.CacheConfig{ProductTTL: 60, SessionTTL: sessionTTL}}
	return NewEditorService(db, NewSettingsService(db), NewStyleService(db), newStubShopifyAPI(), cfg)
}

func TestApplyStateOpWithoutLoadedSession(t *testing.T) {
	svc := testEditorService(t, 0)

	_, _, err := svc.ApplyStateOp(testShop, testProduct, &StateOp{Op: "toggle_enabled"})
	assert.ErrorIs(t, err, ErrNoEditorSession)
}

func TestIdleSessionExpires(t *testing.T) {
	svc := testEditorService(t, 1)

	_, err := svc.LoadEditor(context.Background(), testShopRecord(t), testProduct)
	require.NoError(t, err)

	state, details, err := svc.ApplyStateOp(testShop, testProduct, &StateOp{Op: "toggle_enabled"})
	require.NoError(t, err)
	require.Empty(t, details)
	assert.True(t, state.IsDirty)

	time.Sleep(1100 * time.Millisecond)

	_, _, err = svc.ApplyStateOp(testShop, testProduct, &StateOp{Op: "toggle_enabled"})
	assert.ErrorIs(t, err, ErrNoEditorSession)
}

func TestDropSessionForgetsState(t *testing.T) {
	svc := testEditorService(t, 0)

	_, err := svc.LoadEditor(context.Background(), testShopRecord(t), testProduct)
	require.NoError(t, err)

	svc.DropSession(testShop, testProduct)

	_, _, err = svc.ApplyStateOp(testShop, testProduct, &StateOp{Op: "toggle_enabled"})
	assert.ErrorIs(t, err, ErrNoEditorSession)
}
