// internal/services/generation_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprintlab/petart-backend/internal/models"
)

func createTestGeneration(t *testing.T, svc *GenerationService, styleUUID string) *models.Generation {
	t.Helper()

	generation, details, err := svc.CreatePending(testShop, &CreateGenerationRequest{
		ShopifyProductID: testProduct,
		StyleUUID:        styleUUID,
		SourceImageURL:   "https://cdn.example.com/pets/rex.jpg",
	})
	require.NoError(t, err)
	require.Empty(t, details)
	return generation
}

func TestCreatePendingBumpsStyleUsage(t *testing.T) {
	db := setupTestDB(t)
	_, _, styles := seedCatalog(t, db)
	styleSvc := NewStyleService(db)
	svc := NewGenerationService(db, styleSvc)

	generation := createTestGeneration(t, svc, styles[0].UUID)
	assert.NotEmpty(t, generation.UUID)
	assert.Equal(t, models.GenerationStatusPending, generation.Status)

	style, err := styleSvc.Get(styles[0].UUID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, style.UsageCount)
}

func TestCreatePendingRejectsInactiveStyle(t *testing.T) {
	db := setupTestDB(t)
	_, _, styles := seedCatalog(t, db)
	require.NoError(t, db.Model(&styles[0]).Update("is_active", false).Error)
	svc := NewGenerationService(db, NewStyleService(db))

	generation, details, err := svc.CreatePending(testShop, &CreateGenerationRequest{
		ShopifyProductID: testProduct,
		StyleUUID:        styles[0].UUID,
		SourceImageURL:   "https://cdn.example.com/pets/rex.jpg",
	})
	require.NoError(t, err)
	assert.Nil(t, generation)
	require.Len(t, details, 1)
	assert.Equal(t, "styleUuid", details[0].Field)
}

func TestWebhookStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	_, _, styles := seedCatalog(t, db)
	svc := NewGenerationService(db, NewStyleService(db))
	generation := createTestGeneration(t, svc, styles[0].UUID)

	// pending cannot jump straight to completed
	_, details, err := svc.ApplyWebhook(&GenerationWebhookRequest{
		GenerationUUID: generation.UUID,
		Status:         "completed",
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "status", details[0].Field)

	updated, details, err := svc.ApplyWebhook(&GenerationWebhookRequest{
		GenerationUUID: generation.UUID,
		Status:         "processing",
	})
	require.NoError(t, err)
	require.Empty(t, details)
	assert.Equal(t, models.GenerationStatusProcessing, updated.Status)

	updated, details, err = svc.ApplyWebhook(&GenerationWebhookRequest{
		GenerationUUID: generation.UUID,
		Status:         "completed",
		ResultImageURL: "https://cdn.example.com/results/rex-royal.jpg",
	})
	require.NoError(t, err)
	require.Empty(t, details)
	assert.Equal(t, models.GenerationStatusCompleted, updated.Status)
	assert.Equal(t, "https://cdn.example.com/results/rex-royal.jpg", updated.ResultImageURL)
	assert.NotNil(t, updated.ProcessedAt)

	// completed is terminal
	_, details, err = svc.ApplyWebhook(&GenerationWebhookRequest{
		GenerationUUID: generation.UUID,
		Status:         "failed",
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
}

func TestStatusCountsZeroesMissingStatuses(t *testing.T) {
	db := setupTestDB(t)
	_, _, styles := seedCatalog(t, db)
	svc := NewGenerationService(db, NewStyleService(db))
	createTestGeneration(t, svc, styles[0].UUID)

	counts, err := svc.StatusCounts(testShop)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts["pending"])
	assert.EqualValues(t, 0, counts["completed"])
	assert.EqualValues(t, 0, counts["processing"])
	assert.EqualValues(t, 0, counts["failed"])
}
