// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pawprintlab/petart-backend/internal/config"
	"github.com/pawprintlab/petart-backend/internal/handlers"
	"github.com/pawprintlab/petart-backend/internal/metrics"
	"github.com/pawprintlab/petart-backend/internal/middleware"
	"github.com/pawprintlab/petart-backend/internal/services"
	"github.com/pawprintlab/petart-backend/internal/shopify"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	shopifyClient := shopify.NewClient(cfg.Shopify.APIVersion)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage service")
	}

	settingsService := services.NewSettingsService(db)
	styleService := services.NewStyleService(db)
	productBaseService := services.NewProductBaseService(db)
	variantService := services.NewVariantService(db, settingsService, shopifyClient)
	generationService := services.NewGenerationService(db, styleService)
	editorService := services.NewEditorService(db, settingsService, styleService, shopifyClient, cfg)

	// Initialize handlers
	editorHandler := handlers.NewEditorHandler(editorService, variantService)
	productBaseHandler := handlers.NewProductBaseHandler(productBaseService)
	styleHandler := handlers.NewStyleHandler(styleService, storageService)
	generationHandler := handlers.NewGenerationHandler(generationService, cfg)
	proxyHandler := handlers.NewProxyHandler(settingsService, styleService, generationService, storageService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(metrics.Middleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes, all behind the embedded-app session token
	v1 := r.Group("/v1")
	v1.Use(middleware.ShopAuthRequired(db, cfg))
	{
		// Per-product settings editor
		editor := v1.Group("/editor")
		{
			editor.GET("/:productId", editorHandler.GetEditor)
			editor.POST("/:productId/state", editorHandler.ApplyStateOp)
			editor.POST("/:productId/actions", editorHandler.DispatchAction)
		}

		// Product base catalog
		productBases := v1.Group("/product-bases")
		{
			productBases.GET("", productBaseHandler.GetProductBases)
			productBases.GET("/:uuid", productBaseHandler.GetProductBase)
			productBases.POST("", productBaseHandler.CreateProductBase)
			productBases.PUT("/:uuid", productBaseHandler.UpdateProductBase)
			productBases.DELETE("/:uuid", productBaseHandler.DeleteProductBase)
		}

		// AI style catalog
		styles := v1.Group("/styles")
		{
			styles.GET("", styleHandler.GetStyles)
			styles.PUT("/reorder", styleHandler.ReorderStyles)
			styles.POST("/upload-image", middleware.UploadRateLimit(), styleHandler.UploadExampleImage)
			styles.GET("/:uuid", styleHandler.GetStyle)
			styles.POST("", styleHandler.CreateStyle)
			styles.PUT("/:uuid", styleHandler.UpdateStyle)
			styles.DELETE("/:uuid", styleHandler.DeleteStyle)
		}

		// Generation dashboard (read-only)
		generations := v1.Group("/generations")
		{
			generations.GET("", generationHandler.GetGenerations)
			generations.GET("/counts", generationHandler.GetStatusCounts)
			generations.GET("/:uuid", generationHandler.GetGeneration)
		}
	}

	// Storefront app proxy, signature-verified
	proxy := r.Group("/proxy")
	proxy.Use(middleware.ProxyRateLimit(), middleware.AppProxySignature(cfg))
	{
		proxy.GET("/config", proxyHandler.GetConfig)
		proxy.POST("/generations", proxyHandler.CreateGeneration)
		proxy.GET("/generations/:uuid", proxyHandler.GetGeneration)
		proxy.POST("/upload", middleware.UploadRateLimit(), proxyHandler.UploadPetPhoto)
	}

	// Vendor webhook, HMAC-verified in the handler
	r.POST("/webhooks/generation", generationHandler.HandleWebhook)

	return r
}
