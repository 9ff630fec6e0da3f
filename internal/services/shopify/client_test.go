package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropsync/internal/logger"
)

func newTestRESTClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-shop", "test-token", "2023-10", logger.New("error"))
	client.baseURL = server.URL
	return client
}

func TestRESTClient_GetProduct(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products/42.json", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Shopify-Access-Token"))
		w.Write([]byte(`{"product":{"id":42,"title":"Lamp","body_html":"<p>desc</p>","handle":"lamp","status":"active"}}`))
	})

	product, err := client.GetProduct(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), product.ID)
	assert.Equal(t, "Lamp", product.Title)
	assert.Equal(t, "<p>desc</p>", product.BodyHTML)
}

func TestRESTClient_UpdateDescriptionSendsOnlyThatField(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/42.json", r.URL.Path)

		var payload map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		product := payload["product"]
		assert.Equal(t, "fixed text", product["body_html"])
		assert.NotContains(t, product, "title")
		assert.NotContains(t, product, "variants")

		w.Write([]byte(`{"product":{"id":42}}`))
	})

	err := client.UpdateDescription(context.Background(), "42", "fixed text")
	assert.NoError(t, err)
}

func TestRESTClient_UpdateDescriptionPermissionDenied(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errors":"write_products scope missing"}`))
	})

	err := client.UpdateDescription(context.Background(), "42", "text")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRESTClient_ServerErrorIsNotPermission(t *testing.T) {
	client := newTestRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.UpdateDescription(context.Background(), "42", "text")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}
