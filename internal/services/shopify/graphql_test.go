package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropsync/internal/logger"
)

func newTestGraphQLClient(t *testing.T, handler http.HandlerFunc) *GraphQLClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewGraphQLClient("test-shop", "test-token", "2023-10", logger.New("error"))
	client.baseURL = server.URL
	return client
}

func decodeGraphQLRequest(t *testing.T, r *http.Request) graphqlRequest {
	t.Helper()
	var req graphqlRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func TestGraphQLClient_SetsAuthHeader(t *testing.T) {
	client := newTestGraphQLClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Access-Token"))
		w.Write([]byte(`{"data":{"products":{"edges":[],"pageInfo":{"hasNextPage":false,"endCursor":""}}}}`))
	})

	_, err := client.ListActiveProducts(context.Background(), 10, "")
	require.NoError(t, err)
}

func TestGraphQLClient_ListActiveProducts(t *testing.T) {
	client := newTestGraphQLClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGraphQLRequest(t, r)
		assert.EqualValues(t, 2, req.Variables["first"])
		assert.Equal(t, "cur-1", req.Variables["after"])
		w.Write([]byte(`{"data":{"products":{
			"edges":[
				{"node":{"id":"gid://shopify/Product/1","legacyResourceId":"1","title":"One","handle":"one","descriptionHtml":"d1"}},
				{"node":{"id":"gid://shopify/Product/2","legacyResourceId":"2","title":"Two","handle":"two","descriptionHtml":"d2"}}
			],
			"pageInfo":{"hasNextPage":true,"endCursor":"cur-2"}
		}}}`))
	})

	page, err := client.ListActiveProducts(context.Background(), 2, "cur-1")
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "gid://shopify/Product/1", page.Products[0].ID)
	assert.Equal(t, "2", page.Products[1].LegacyID)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "cur-2", page.EndCursor)
}

func TestGraphQLClient_AccessDeniedError(t *testing.T) {
	client := newTestGraphQLClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Access denied for products field","extensions":{"code":"ACCESS_DENIED"}}]}`))
	})

	_, err := client.ListActiveProducts(context.Background(), 10, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGraphQLClient_IsPublished(t *testing.T) {
	client := newTestGraphQLClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGraphQLRequest(t, r)
		assert.Equal(t, "gid://shopify/Product/1", req.Variables["id"])
		assert.Equal(t, "gid://shopify/Publication/9", req.Variables["publicationId"])
		w.Write([]byte(`{"data":{"product":{"publishedOnPublication":true}}}`))
	})

	published, err := client.IsPublished(context.Background(), "gid://shopify/Product/1", "gid://shopify/Publication/9")
	require.NoError(t, err)
	assert.True(t, published)
}

func TestGraphQLClient_PublishProduct(t *testing.T) {
	tests := []struct {
		name       string
		userErrors string
		want       PublishStatus
		wantErr    bool
		permission bool
	}{
		{
			name:       "clean publish",
			userErrors: `[]`,
			want:       StatusPublished,
		},
		{
			name:       "already published is success-equivalent",
			userErrors: `[{"field":null,"message":"Product is already published on this publication"}]`,
			want:       StatusAlreadyPublished,
		},
		{
			name:       "permission user error is fatal",
			userErrors: `[{"field":null,"message":"Access denied: publishablePublish requires write_publications"}]`,
			want:       StatusFailed,
			wantErr:    true,
			permission: true,
		},
		{
			name:       "other user error fails the item",
			userErrors: `[{"field":null,"message":"Publication limit reached"}]`,
			want:       StatusFailed,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestGraphQLClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"data":{"publishablePublish":{"userErrors":%s}}}`, tt.userErrors)
			})

			status, err := client.PublishProduct(context.Background(), "gid://shopify/Product/1", "gid://shopify/Publication/9")
			assert.Equal(t, tt.want, status)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.permission, errors.Is(err, ErrPermissionDenied))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
