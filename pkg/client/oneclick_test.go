package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisabeyy/loofta-pay-public-sub001/pkg/status"
)

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/status", r.URL.Path)
		assert.Equal(t, "0xdeposit", r.URL.Query().Get("depositAddress"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"SUCCESS","swapDetails":{"amountIn":1000000,"slippage":0}}`))
	}))
	defer srv.Close()

	c := NewOneClickClient("secret", srv.URL+"/", srv.Client())
	payload, err := c.FetchStatus(context.Background(), "0xdeposit")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", payload["status"])

	st := status.Normalize(payload)
	assert.Equal(t, json.Number("1000000"), st.SwapDetails.AmountIn)
	assert.Equal(t, json.Number("0"), st.SwapDetails.Slippage)
}

func TestFetchStatus_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Deposit address not found"}`))
	}))
	defer srv.Close()

	c := NewOneClickClient("", srv.URL, srv.Client())
	_, err := c.FetchStatus(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrStatusFetchFailed)

	var fetchErr *status.StatusFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "Deposit address not found")
}

func TestFetchStatus_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["not","an","object"]`))
	}))
	defer srv.Close()

	c := NewOneClickClient("", srv.URL, srv.Client())
	_, err := c.FetchStatus(context.Background(), "addr")
	assert.ErrorIs(t, err, status.ErrStatusFetchFailed)
}

func TestFetchStatus_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewOneClickClient("", url, nil)
	_, err := c.FetchStatus(context.Background(), "addr")
	assert.ErrorIs(t, err, status.ErrStatusFetchFailed)
}

func token(symbol, chain string) oneclick.TokenResponse {
	var tok oneclick.TokenResponse
	tok.SetSymbol(symbol)
	tok.SetBlockchain(chain)
	return tok
}

func TestAssetDecimals(t *testing.T) {
	calls := 0
	c := NewOneClickClient("", "", nil)
	c.listTokens = func(context.Context) ([]oneclick.TokenResponse, error) {
		calls++
		usdcEth, sol, usdcNear := token("USDC", "eth"), token("SOL", "sol"), token("USDC", "near")
		usdcEth.SetDecimals(6)
		sol.SetDecimals(9)
		usdcNear.SetDecimals(6)
		return []oneclick.TokenResponse{usdcEth, sol, usdcNear}, nil
	}

	dec, err := c.AssetDecimals(context.Background(), "sol", "")
	require.NoError(t, err)
	assert.Equal(t, int32(9), dec)

	dec, err = c.AssetDecimals(context.Background(), "usdc", "NEAR")
	require.NoError(t, err)
	assert.Equal(t, int32(6), dec)

	_, err = c.AssetDecimals(context.Background(), "DOGE", "")
	assert.Error(t, err)

	assert.Equal(t, 1, calls, "token list should be cached")
}

func TestGetSupportedTokens_ErrorNotCached(t *testing.T) {
	c := NewOneClickClient("", "", nil)
	c.listTokens = func(context.Context) ([]oneclick.TokenResponse, error) {
		return nil, errors.New("boom")
	}

	_, err := c.GetSupportedTokens(context.Background())
	assert.Error(t, err)

	c.listTokens = func(context.Context) ([]oneclick.TokenResponse, error) {
		return []oneclick.TokenResponse{token("SOL", "sol")}, nil
	}
	tokens, err := c.GetSupportedTokens(context.Background())
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}
