// internal/shopify/mutations.go
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
)

// VariantsBulkCreateMutation creates variants on an existing product.
const VariantsBulkCreateMutation = `
mutation productVariantsBulkCreate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkCreate(productId: $productId, variants: $variants) {
    productVariants {
      id
      title
    }
    userErrors {
      field
      message
    }
  }
}
`

// VariantsBulkUpdateMutation updates existing variants, used for price changes.
const VariantsBulkUpdateMutation = `
mutation productVariantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkUpdate(productId: $productId, variants: $variants) {
    productVariants {
      id
      price
      compareAtPrice
    }
    userErrors {
      field
      message
    }
  }
}
`

// VariantsBulkDeleteMutation removes variants from a product.
const VariantsBulkDeleteMutation = `
mutation productVariantsBulkDelete($productId: ID!, $variantsIds: [ID!]!) {
  productVariantsBulkDelete(productId: $productId, variantsIds: $variantsIds) {
    product {
      id
    }
    userErrors {
      field
      message
    }
  }
}
`

// VariantInput is one entry of a productVariantsBulkCreate/Update call.
type VariantInput struct {
	ID             *string             `json:"id,omitempty"`
	Price          *string             `json:"price,omitempty"`
	CompareAtPrice *string             `json:"compareAtPrice,omitempty"`
	OptionValues   []VariantOptionItem `json:"optionValues,omitempty"`
}

type VariantOptionItem struct {
	OptionName string `json:"optionName"`
	Name       string `json:"name"`
}

type variantsBulkCreateResponse struct {
	ProductVariantsBulkCreate struct {
		ProductVariants []Variant   `json:"productVariants"`
		UserErrors      []UserError `json:"userErrors"`
	} `json:"productVariantsBulkCreate"`
}

type variantsBulkUpdateResponse struct {
	ProductVariantsBulkUpdate struct {
		ProductVariants []Variant   `json:"productVariants"`
		UserErrors      []UserError `json:"userErrors"`
	} `json:"productVariantsBulkUpdate"`
}

type variantsBulkDeleteResponse struct {
	ProductVariantsBulkDelete struct {
		UserErrors []UserError `json:"userErrors"`
	} `json:"productVariantsBulkDelete"`
}

// CreateVariants bulk-creates variants and returns them in input order.
func (c *Client) CreateVariants(ctx context.Context, shopDomain, accessToken, productGID string, variants []VariantInput) ([]Variant, error) {
	resp, err := c.Execute(ctx, shopDomain, accessToken, VariantsBulkCreateMutation, map[string]interface{}{
		"productId": productGID,
		"variants":  variants,
	})
	if err != nil {
		return nil, err
	}

	var parsed variantsBulkCreateResponse
	if err := json.Unmarshal(resp.Data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse bulk create response: %w", err)
	}
	if err := userErrorsToError(parsed.ProductVariantsBulkCreate.UserErrors); err != nil {
		return nil, err
	}
	return parsed.ProductVariantsBulkCreate.ProductVariants, nil
}

// UpdateVariantPrice sets the price (and optionally compare-at price) of one variant.
func (c *Client) UpdateVariantPrice(ctx context.Context, shopDomain, accessToken, productGID, variantGID, price string, compareAtPrice *string) error {
	input := VariantInput{ID: &variantGID, Price: &price, CompareAtPrice: compareAtPrice}

	resp, err := c.Execute(ctx, shopDomain, accessToken, VariantsBulkUpdateMutation, map[string]interface{}{
		"productId": productGID,
		"variants":  []VariantInput{input},
	})
	if err != nil {
		return err
	}

	var parsed variantsBulkUpdateResponse
	if err := json.Unmarshal(resp.Data, &parsed); err != nil {
		return fmt.Errorf("failed to parse bulk update response: %w", err)
	}
	return userErrorsToError(parsed.ProductVariantsBulkUpdate.UserErrors)
}

// DeleteVariants bulk-deletes variants from a product.
func (c *Client) DeleteVariants(ctx context.Context, shopDomain, accessToken, productGID string, variantGIDs []string) error {
	resp, err := c.Execute(ctx, shopDomain, accessToken, VariantsBulkDeleteMutation, map[string]interface{}{
		"productId":   productGID,
		"variantsIds": variantGIDs,
	})
	if err != nil {
		return err
	}

	var parsed variantsBulkDeleteResponse
	if err := json.Unmarshal(resp.Data, &parsed); err != nil {
		return fmt.Errorf("failed to parse bulk delete response: %w", err)
	}
	return userErrorsToError(parsed.ProductVariantsBulkDelete.UserErrors)
}
