package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dropsync/internal/logger"
)

// ErrPermissionDenied marks a missing API scope. Repeating the call cannot
// succeed, so batch runs abort on it.
var ErrPermissionDenied = errors.New("shopify access denied: grant the write_publications scope to this token")

// GraphQLClient talks to the Admin GraphQL endpoint for catalog queries
// and publish mutations.
type GraphQLClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewGraphQLClient(shopDomain, accessToken, apiVersion string, logger *logger.Logger) *GraphQLClient {
	return &GraphQLClient{
		baseURL:     fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/graphql.json", shopDomain, apiVersion),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

func (c *GraphQLClient) execute(ctx context.Context, query string, variables map[string]interface{}, into interface{}) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
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

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		if first.Extensions.Code == "ACCESS_DENIED" {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, first.Message)
		}
		return fmt.Errorf("graphql error: %s", first.Message)
	}

	if into != nil {
		if err := json.Unmarshal(envelope.Data, into); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}

const listProductsQuery = `
query listProducts($first: Int!, $after: String) {
  products(first: $first, after: $after, query: "status:active") {
    edges {
      node {
        id
        legacyResourceId
        title
        handle
        descriptionHtml
      }
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

// ListActiveProducts fetches one page of active products. The cursor is an
// opaque platform token: callers thread the returned EndCursor into the
// next call and never inspect it.
func (c *GraphQLClient) ListActiveProducts(ctx context.Context, first int, after string) (*ProductPage, error) {
	variables := map[string]interface{}{"first": first}
	if after != "" {
		variables["after"] = after
	}

	var data struct {
		Products struct {
			Edges []struct {
				Node struct {
					ID               string `json:"id"`
					LegacyResourceID string `json:"legacyResourceId"`
					Title            string `json:"title"`
					Handle           string `json:"handle"`
					DescriptionHTML  string `json:"descriptionHtml"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"products"`
	}
	if err := c.execute(ctx, listProductsQuery, variables, &data); err != nil {
		return nil, err
	}

	page := &ProductPage{
		HasNextPage: data.Products.PageInfo.HasNextPage,
		EndCursor:   data.Products.PageInfo.EndCursor,
	}
	for _, edge := range data.Products.Edges {
		page.Products = append(page.Products, ProductSummary{
			ID:          edge.Node.ID,
			LegacyID:    edge.Node.LegacyResourceID,
			Title:       edge.Node.Title,
			Handle:      edge.Node.Handle,
			Description: edge.Node.DescriptionHTML,
		})
	}
	return page, nil
}

const publicationStatusQuery = `
query publicationStatus($id: ID!, $publicationId: ID!) {
  product(id: $id) {
    publishedOnPublication(publicationId: $publicationId)
  }
}`

// IsPublished reports whether the product is on the given publication.
func (c *GraphQLClient) IsPublished(ctx context.Context, productID, publicationID string) (bool, error) {
	var data struct {
		Product struct {
			PublishedOnPublication bool `json:"publishedOnPublication"`
		} `json:"product"`
	}
	err := c.execute(ctx, publicationStatusQuery, map[string]interface{}{
		"id":            productID,
		"publicationId": publicationID,
	}, &data)
	if err != nil {
		return false, err
	}
	return data.Product.PublishedOnPublication, nil
}

const publishMutation = `
mutation publishProduct($id: ID!, $input: [PublicationInput!]!) {
  publishablePublish(id: $id, input: $input) {
    userErrors {
      field
      message
    }
  }
}`

// PublishProduct puts the product on the given publication. Publishing a
// product that is already on the channel reports StatusAlreadyPublished,
// not an error: the mutation is idempotent at the platform level.
func (c *GraphQLClient) PublishProduct(ctx context.Context, productID, publicationID string) (PublishStatus, error) {
	var data struct {
		PublishablePublish struct {
			UserErrors []struct {
				Message string `json:"message"`
			} `json:"userErrors"`
		} `json:"publishablePublish"`
	}
	err := c.execute(ctx, publishMutation, map[string]interface{}{
		"id": productID,
		"input": []map[string]interface{}{
			{"publicationId": publicationID},
		},
	}, &data)
	if err != nil {
		return StatusFailed, err
	}

	for _, ue := range data.PublishablePublish.UserErrors {
		switch classifyUserError(ue.Message) {
		case StatusAlreadyPublished:
			return StatusAlreadyPublished, nil
		case StatusFailed:
			if isAccessDeniedMessage(ue.Message) {
				return StatusFailed, fmt.Errorf("%w: %s", ErrPermissionDenied, ue.Message)
			}
			return StatusFailed, fmt.Errorf("publish rejected: %s", ue.Message)
		}
	}
	return StatusPublished, nil
}

// classifyUserError decides whether a publish user-error means the product
// was already on the channel. Shopify exposes no stable machine code for
// this case, so detection is by substring match on the human-readable
// message. Known to be fragile; revisit when the API grows an error code.
func classifyUserError(message string) PublishStatus {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "already published") || strings.Contains(lower, "already exists") {
		return StatusAlreadyPublished
	}
	return StatusFailed
}

func isAccessDeniedMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "access denied") || strings.Contains(lower, "permission")
}
