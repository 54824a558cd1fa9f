// internal/shopify/queries.go
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
)

// ProductQuery fetches a product with its variants.
const ProductQuery = `
query product($id: ID!) {
  product(id: $id) {
    id
    title
    handle
    status
    variants(first: 100) {
      edges {
        node {
          id
          title
          sku
          price
          compareAtPrice
        }
      }
    }
  }
}
`

type productQueryResponse struct {
	Product *struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Handle   string `json:"handle"`
		Status   string `json:"status"`
		Variants struct {
			Edges []struct {
				Node Variant `json:"node"`
			} `json:"edges"`
		} `json:"variants"`
	} `json:"product"`
}

// GetProduct fetches a product and flattens its variant connection.
func (c *Client) GetProduct(ctx context.Context, shopDomain, accessToken, productGID string) (*Product, error) {
	resp, err := c.Execute(ctx, shopDomain, accessToken, ProductQuery, map[string]interface{}{
		"id": productGID,
	})
	if err != nil {
		return nil, err
	}

	var parsed productQueryResponse
	if err := json.Unmarshal(resp.Data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}
	if parsed.Product == nil {
		return nil, fmt.Errorf("product %s not found", productGID)
	}

	product := &Product{
		ID:     parsed.Product.ID,
		Title:  parsed.Product.Title,
		Handle: parsed.Product.Handle,
		Status: parsed.Product.Status,
	}
	for _, edge := range parsed.Product.Variants.Edges {
		product.Variants = append(product.Variants, edge.Node)
	}
	return product, nil
}
