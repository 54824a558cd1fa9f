// internal/middleware/proxy.go
package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pawprintlab/petart-backend/internal/config"
)

// AppProxySignature verifies the signature Shopify appends to app proxy
// requests: all query params except signature, sorted, joined without
// separators and HMAC-SHA256'd with the app secret.
func AppProxySignature(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		signature := query.Get("signature")
		if signature == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Missing signature"})
			c.Abort()
			return
		}
		query.Del("signature")

		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		for _, k := range keys {
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(strings.Join(query[k], ","))
		}

		mac := hmac.New(sha256.New, []byte(cfg.Shopify.AppSecret))
		mac.Write([]byte(sb.String()))
		expected := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(expected), []byte(signature)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid signature"})
			c.Abort()
			return
		}

		c.Set("shop_domain", query.Get("shop"))
		c.Next()
	}
}

// WebhookSignature verifies the generation vendor's callback signature
// carried in X-Webhook-Signature as a hex HMAC-SHA256 of the raw body.
func WebhookSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
