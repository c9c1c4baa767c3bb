package keychainapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ruteri/djilog-keychain/api"
	"github.com/ruteri/djilog-keychain/interfaces"
)

const (
	// DefaultEndpoint is the public flight-record keychain service.
	DefaultEndpoint = "https://dev.dji.com/openapi/v1/flight-records/keychains"

	// KeychainsPath is the route the service answers on.
	KeychainsPath = "/openapi/v1/flight-records/keychains"

	// ApiKeyHeader carries the caller's api key.
	ApiKeyHeader = "Api-Key"

	maxResponseSize = 4 * 1024 * 1024
)

// Client requests decrypted keychains from the key service.
type Client struct {
	HTTPClient *http.Client
	Endpoint   string
}

// DefaultClient talks to DefaultEndpoint with http.DefaultClient.
var DefaultClient = &Client{
	HTTPClient: http.DefaultClient,
	Endpoint:   DefaultEndpoint,
}

// FetchKeychains posts req and returns one []KeychainEntry per requested
// keychain.
//
// Errors: an empty apiKey is ErrInvalidDecryptMethod, a 403 is
// ErrInvalidApiKey, transport failures and other statuses or a non-zero
// result code are ErrNetwork, and a malformed body is ErrSerialization.
func (c *Client) FetchKeychains(ctx context.Context, apiKey string, req *api.KeychainsRequest) ([][]interfaces.KeychainEntry, error) {
	if apiKey == "" {
		return nil, interfaces.NewInvalidDecryptMethodError()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, interfaces.NewSerializationError("encode keychains request", err)
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, interfaces.NewNetworkError("could not initialize request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(ApiKeyHeader, apiKey)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, interfaces.NewNetworkError("could not request keychains", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, interfaces.NewNetworkError("could not read keychains response", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		return nil, interfaces.NewInvalidApiKeyError()
	}

	if resp.StatusCode != http.StatusOK {
		return nil, interfaces.NewNetworkError(fmt.Sprintf("key service returned %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var keychainsResp api.KeychainsResponse
	if err := json.Unmarshal(respBody, &keychainsResp); err != nil {
		return nil, interfaces.NewSerializationError("decode keychains response", err)
	}

	if keychainsResp.Result.Code != api.ResultCodeOK {
		return nil, interfaces.NewNetworkError(fmt.Sprintf("key service result %d: %s", keychainsResp.Result.Code, keychainsResp.Result.Msg), nil)
	}

	return keychainsResp.Data, nil
}
