// internal/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the embedded admin frontend, served from Shopify's CDN, to
// call the API with its session token.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{"https://admin.shopify.com"},
		AllowOriginFunc:  isShopifyOrigin,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func isShopifyOrigin(origin string) bool {
	return origin == "https://admin.shopify.com" ||
		(len(origin) > len(".myshopify.com") &&
			origin[len(origin)-len(".myshopify.com"):] == ".myshopify.com")
}
