// internal/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/pawprintlab/petart-backend/internal/config"
	"github.com/pawprintlab/petart-backend/internal/models"
)

// sessionClaims are the fields of a Shopify session token the backend
// cares about. dest carries the shop origin, aud must equal the app's
// API key.
type sessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// ShopAuthRequired verifies the embedded-app session token and loads the
// installed shop into the request context. Every admin endpoint sits
// behind this.
func ShopAuthRequired(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			c.Abort()
			return
		}

		shopDomain, err := validateSessionToken(parts[1], cfg)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
			c.Abort()
			return
		}

		var shop models.Shop
		err = db.Where("domain = ? AND is_active = ?", shopDomain, true).First(&shop).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Shop is not installed"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			c.Abort()
			return
		}

		c.Set("shop_domain", shop.Domain)
		c.Set("shop", &shop)
		c.Next()
	}
}

func validateSessionToken(token string, cfg *config.Config) (string, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.Shopify.AppSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}

	if cfg.Shopify.APIKey != "" && !claims.VerifyAudience(cfg.Shopify.APIKey, true) {
		return "", errors.New("audience mismatch")
	}

	// dest is "https://{shop}.myshopify.com"
	domain := strings.TrimPrefix(claims.Dest, "https://")
	domain = strings.TrimSuffix(domain, "/")
	if domain == "" {
		return "", errors.New("missing dest claim")
	}
	return domain, nil
}

// GetShopFromContext returns the authenticated shop set by ShopAuthRequired.
func GetShopFromContext(c *gin.Context) (*models.Shop, bool) {
	if v, exists := c.Get("shop"); exists {
		if shop, ok := v.(*models.Shop); ok {
			return shop, true
		}
	}
	return nil, false
}
