package httpserver

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ruteri/djilog-keychain/kms"
)

// AdminClient talks to the admin API on behalf of one administrator.
type AdminClient struct {
	baseURL    string
	adminID    string
	privateKey *ecdsa.PrivateKey
	httpClient *http.Client
}

// NewAdminClient creates a client for the admin API mounted at baseURL,
// for example "http://localhost:8081/admin".
func NewAdminClient(baseURL, adminID string, privateKey *ecdsa.PrivateKey) *AdminClient {
	return &AdminClient{
		baseURL:    baseURL,
		adminID:    adminID,
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetStatus returns the issuer unlock status.
func (c *AdminClient) GetStatus(ctx context.Context) (AdminStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return AdminStatusResponse{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AdminStatusResponse{}, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return AdminStatusResponse{}, fmt.Errorf("status request failed with code %d: %s", resp.StatusCode, string(body))
	}

	var status AdminStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return AdminStatusResponse{}, fmt.Errorf("failed to parse status response: %w", err)
	}
	return status, nil
}

// SubmitShare signs and submits a share.
func (c *AdminClient) SubmitShare(ctx context.Context, shareIndex int, share []byte) error {
	signature, err := kms.SignShare(share, c.privateKey)
	if err != nil {
		return fmt.Errorf("failed to sign share: %w", err)
	}

	body, err := json.Marshal(AdminSubmitShareRequest{
		ShareIndex: shareIndex,
		Share:      base64.StdEncoding.EncodeToString(share),
		Signature:  base64.StdEncoding.EncodeToString(signature),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := CreateSignedAdminRequest(ctx, http.MethodPost, c.baseURL+"/share", body, c.adminID, c.privateKey)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit share request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("submit share failed with code %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// CreateSignedAdminRequest builds a request carrying the admin
// authentication headers checked by AdminHandler.
func CreateSignedAdminRequest(ctx context.Context, method, reqURL string, body []byte, adminID string, privateKey *ecdsa.PrivateKey) (*http.Request, error) {
	parsedURL, err := url.Parse(reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hash := sha256.Sum256(append([]byte(parsedURL.Path), body...))
	signature, err := ecdsa.SignASN1(rand.Reader, privateKey, hash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	req.Header.Set(AdminIDHeader, adminID)
	req.Header.Set(AdminSignatureHeader, base64.StdEncoding.EncodeToString(signature))
	return req, nil
}
