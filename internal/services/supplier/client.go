package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dropsync/internal/logger"
)

const (
	signMethod      = "md5"
	protocolVersion = "2.0"
	responseFormat  = "json"
	timeLayout      = "2006-01-02 15:04:05"

	methodProductQuery = "aliexpress.ds.product.get"
	methodTokenRefresh = "auth.token.refresh"
)

// Client performs signed calls against the supplier's single RPC gateway.
// It does not retry: supplier rejections are frequently permanent and the
// rate budget is shared, so retry policy belongs to the caller.
type Client struct {
	apiURL     string
	appKey     string
	appSecret  string
	tokens     *TokenManager
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(apiURL, appKey, appSecret string, store *TokenStore, logger *logger.Logger) (*Client, error) {
	c := &Client{
		apiURL:    apiURL,
		appKey:    appKey,
		appSecret: appSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}

	tokens, err := NewTokenManager(store, c.refreshCredential)
	if err != nil {
		return nil, err
	}
	c.tokens = tokens

	return c, nil
}

// QueryProduct fetches product data scoped to one ship-to country. A
// *Error return means the supplier rejected the combination; any other
// error is transport-level.
func (c *Client) QueryProduct(ctx context.Context, productID, country, currency, language string) (*Listing, error) {
	payload, err := c.Execute(ctx, methodProductQuery, map[string]string{
		"product_id":      productID,
		"ship_to_country": country,
		"target_currency": currency,
		"target_language": language,
	})
	if err != nil {
		return nil, err
	}

	var detail productDetail
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode product payload: %w", err)
	}

	return listingFromDetail(productID, country, detail, payload), nil
}

// Execute performs one signed call, refreshing the credential first when
// it is expired.
func (c *Client) Execute(ctx context.Context, method string, biz map[string]string) (json.RawMessage, error) {
	token, err := c.tokens.AccessToken()
	if err != nil {
		return nil, err
	}
	return c.call(ctx, method, biz, token)
}

func (c *Client) call(ctx context.Context, method string, biz map[string]string, accessToken string) (json.RawMessage, error) {
	params := map[string]string{
		"app_key":     c.appKey,
		"method":      method,
		"timestamp":   time.Now().UTC().Format(timeLayout),
		"sign_method": signMethod,
		"v":           protocolVersion,
		"format":      responseFormat,
	}
	if accessToken != "" {
		params["access_token"] = accessToken
	}
	for key, value := range biz {
		params[key] = value
	}
	params["sign"] = Sign(params, c.appSecret)

	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}

	// The gateway takes everything in the query string; the POST body
	// stays empty per the supplier's convention.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("supplier call: method=%s", method)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	return classify(body)
}

// classify normalizes the gateway's two error envelope shapes into *Error
// and unwraps the method payload on success.
func classify(body []byte) (json.RawMessage, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if raw, ok := outer["error_response"]; ok {
		var env errorEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("failed to decode error response: %w", err)
		}
		code, msg := env.Code, env.Msg
		if env.SubCode != "" {
			code, msg = env.SubCode, env.SubMsg
		}
		return nil, &Error{Code: code, Message: msg}
	}

	// The remaining key is the method-specific response envelope.
	for _, raw := range outer {
		var wrapper struct {
			Result *methodResult `json:"result"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if wrapper.Result == nil {
			return raw, nil
		}
		if wrapper.Result.RespCode != 0 && wrapper.Result.RespCode != http.StatusOK {
			return nil, &Error{
				Code:    strconv.Itoa(wrapper.Result.RespCode),
				Message: wrapper.Result.RespMsg,
			}
		}
		return wrapper.Result.Result, nil
	}

	return nil, fmt.Errorf("empty supplier response")
}

// refreshCredential exchanges the refresh token through the same signed
// gateway. It is wired into the TokenManager at construction.
func (c *Client) refreshCredential(refreshToken string) (Credential, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload, err := c.call(ctx, methodTokenRefresh, map[string]string{
		"refresh_token": refreshToken,
	}, "")
	if err != nil {
		return Credential{}, err
	}

	var token tokenPayload
	if err := json.Unmarshal(payload, &token); err != nil {
		return Credential{}, fmt.Errorf("failed to decode token payload: %w", err)
	}
	if token.AccessToken == "" {
		return Credential{}, fmt.Errorf("refresh response missing access token")
	}

	cred := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if cred.RefreshToken == "" {
		cred.RefreshToken = refreshToken
	}
	if token.ExpireTime > 0 {
		cred.ExpiresAt = time.UnixMilli(token.ExpireTime)
	}
	return cred, nil
}
