package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
)

const (
	// DefaultBaseURL is the public 1Click API endpoint
	DefaultBaseURL = "https://1click.chaindefuser.com"
	// TokenCacheTTL bounds how long the token catalogue is reused
	TokenCacheTTL = 5 * time.Minute

	statusPath  = "/v0/status"
	maxBodySize = 4 << 20
)

// OneClickClient wraps the 1Click SDK and the raw status endpoint
type OneClickClient struct {
	client     *oneclick.APIClient
	httpClient *http.Client
	baseURL    string
	jwtToken   string

	// listTokens is swapped in tests
	listTokens func(ctx context.Context) ([]oneclick.TokenResponse, error)

	mu       sync.Mutex
	tokens   []oneclick.TokenResponse
	cachedAt time.Time
}

// NewOneClickClient creates a new 1Click API client. httpClient may be nil.
func NewOneClickClient(jwtToken, baseURL string, httpClient *http.Client) *OneClickClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	config := oneclick.NewConfiguration()
	config.Servers = oneclick.ServerConfigurations{{URL: baseURL}}
	config.HTTPClient = httpClient

	c := &OneClickClient{
		client:     oneclick.NewAPIClient(config),
		httpClient: httpClient,
		baseURL:    baseURL,
		jwtToken:   jwtToken,
	}
	c.listTokens = c.fetchTokens
	return c
}

func (c *OneClickClient) authContext(ctx context.Context) context.Context {
	if c.jwtToken == "" {
		return ctx
	}
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.jwtToken)
}

func (c *OneClickClient) fetchTokens(ctx context.Context) ([]oneclick.TokenResponse, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetTokens(c.authContext(ctx)).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return resp, nil
}

// GetSupportedTokens retrieves all supported tokens, served from cache for TokenCacheTTL
func (c *OneClickClient) GetSupportedTokens(ctx context.Context) ([]oneclick.TokenResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens != nil && time.Since(c.cachedAt) < TokenCacheTTL {
		return c.tokens, nil
	}

	tokens, err := c.listTokens(ctx)
	if err != nil {
		return nil, err
	}

	c.tokens = tokens
	c.cachedAt = time.Now()
	return tokens, nil
}

// FindToken searches for a token by symbol across all chains
func (c *OneClickClient) FindToken(ctx context.Context, symbol string) (*oneclick.TokenResponse, error) {
	tokens, err := c.GetSupportedTokens(ctx)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(symbol)

	for _, token := range tokens {
		if strings.ToUpper(token.GetSymbol()) == symbol {
			return &token, nil
		}
	}

	return nil, fmt.Errorf("token '%s' not found", symbol)
}

// FindTokenOnChain searches for a token by symbol on a specific chain
func (c *OneClickClient) FindTokenOnChain(ctx context.Context, symbol, chain string) (*oneclick.TokenResponse, error) {
	tokens, err := c.GetSupportedTokens(ctx)
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(symbol)
	chain = strings.ToLower(chain)

	for _, token := range tokens {
		if strings.ToUpper(token.GetSymbol()) == symbol &&
			strings.ToLower(token.GetBlockchain()) == chain {
			return &token, nil
		}
	}

	return nil, fmt.Errorf("token '%s' not found on chain '%s'", symbol, chain)
}

// AssetDecimals returns the base-unit precision of an asset. chain is optional.
func (c *OneClickClient) AssetDecimals(ctx context.Context, symbol, chain string) (int32, error) {
	var (
		token *oneclick.TokenResponse
		err   error
	)
	if chain != "" {
		token, err = c.FindTokenOnChain(ctx, symbol, chain)
	} else {
		token, err = c.FindToken(ctx, symbol)
	}
	if err != nil {
		return 0, err
	}
	return int32(token.GetDecimals()), nil
}

// FetchStatus retrieves the raw execution status for a deposit address.
// The body is decoded untyped so payload shape changes reach the normalizer
// instead of failing here.
func (c *OneClickClient) FetchStatus(ctx context.Context, depositAddress string) (status.Payload, error) {
	fail := func(code int, err error) error {
		return &status.StatusFetchError{DepositAddress: depositAddress, StatusCode: code, Err: err}
	}

	u := c.baseURL + statusPath + "?" + url.Values{"depositAddress": {depositAddress}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fail(0, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.jwtToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwtToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("failed to read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fail(resp.StatusCode, apiError(body))
	}

	payload, err := DecodePayload(body)
	if err != nil {
		return nil, fail(resp.StatusCode, err)
	}
	return payload, nil
}

// DecodePayload decodes a status body, keeping numbers in their original text form.
func DecodePayload(body []byte) (status.Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode status payload: %w", err)
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected status payload of type %T", raw)
	}
	return status.Payload(m), nil
}

// apiError extracts the upstream error message from a non-2xx body
func apiError(body []byte) error {
	var errorResp map[string]interface{}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if message, ok := errorResp["message"].(string); ok {
			return fmt.Errorf("API error: %s", message)
		}
		if errors, ok := errorResp["errors"]; ok {
			return fmt.Errorf("API error: %v", errors)
		}
	}
	if len(body) == 0 {
		return fmt.Errorf("empty response body")
	}
	return fmt.Errorf("API error: %s", strings.TrimSpace(string(body)))
}
