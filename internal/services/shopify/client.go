package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dropsync/internal/logger"
)

// Client is the legacy REST Admin client. The content-repair path uses it
// because the GraphQL product update requires broader scopes than the
// repair token carries.
type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	baseURL     string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(shopDomain, accessToken, apiVersion string, logger *logger.Logger) *Client {
	return &Client{
		shopDomain:  shopDomain,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		baseURL:     fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", shopDomain, apiVersion),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GetProduct fetches a single product by its legacy numeric ID.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	url := fmt.Sprintf("%s/products/%s.json", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var productResp struct {
		Product Product `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &productResp.Product, nil
}

// UpdateDescription rewrites exactly the description field of a product.
// No other attribute is sent, so concurrent edits to titles or variants
// are never clobbered.
func (c *Client) UpdateDescription(ctx context.Context, productID, bodyHTML string) error {
	url := fmt.Sprintf("%s/products/%s.json", c.baseURL, productID)

	payload := struct {
		Product struct {
			ID       string `json:"id"`
			BodyHTML string `json:"body_html"`
		} `json:"product"`
	}{}
	payload.Product.ID = productID
	payload.Product.BodyHTML = bodyHTML

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %d - %s", ErrPermissionDenied, resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	return nil
}
