package httpserver

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/djilog-keychain/kms"
)

// Admin authentication headers. The signature is an ASN.1 ECDSA signature
// over sha256(path || body), base64 encoded.
const (
	AdminIDHeader        = "X-Admin-ID"
	AdminSignatureHeader = "X-Admin-Signature"
)

// UnlockState is the state of a Shamir-protected key issuer.
type UnlockState int

const (
	StateLocked UnlockState = iota
	StateUnlocked
)

func (s UnlockState) String() string {
	switch s {
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// AdminStatusResponse is returned by GET /status.
type AdminStatusResponse struct {
	State     string `json:"state"`
	Received  int    `json:"received,omitempty"`
	Threshold int    `json:"threshold"`
}

// AdminSubmitShareRequest is the body of POST /share.
type AdminSubmitShareRequest struct {
	ShareIndex int    `json:"share_index"`
	Share      string `json:"share"`     // base64
	Signature  string `json:"signature"` // base64, see kms.SignShare
}

// AdminHandler serves the admin API that unlocks a kms.ShamirIssuer. Each
// administrator submits their signed share; once the threshold is reached
// the issuer holds the master key and WaitForUnlock returns.
type AdminHandler struct {
	mu           sync.Mutex
	log          *slog.Logger
	adminPubKeys map[string][]byte
	issuer       *kms.ShamirIssuer
	unlocked     chan struct{}
	closeOnce    sync.Once
}

// NewAdminHandler creates a handler for the given issuer. adminPubKeys maps
// admin IDs to PEM public keys; the same keys must be registered with the
// issuer.
func NewAdminHandler(log *slog.Logger, issuer *kms.ShamirIssuer, adminPubKeys map[string][]byte) *AdminHandler {
	h := &AdminHandler{
		log:          log,
		adminPubKeys: adminPubKeys,
		issuer:       issuer,
		unlocked:     make(chan struct{}),
	}
	if issuer.IsUnlocked() {
		h.markUnlocked()
	}
	return h
}

// WaitForUnlock blocks until the issuer is unlocked or ctx is done.
func (h *AdminHandler) WaitForUnlock(ctx context.Context) error {
	select {
	case <-h.unlocked:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *AdminHandler) markUnlocked() {
	h.closeOnce.Do(func() { close(h.unlocked) })
}

// AdminRouter returns the admin API routes, meant to be mounted under
// /admin on a separate listener.
func (h *AdminHandler) AdminRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.handleStatus)
	r.Post("/share", h.handleSubmitShare)
	return r
}

func (h *AdminHandler) state() UnlockState {
	if h.issuer.IsUnlocked() {
		return StateUnlocked
	}
	return StateLocked
}

// handleStatus reports the unlock state.
//
// Endpoint: GET /admin/status
func (h *AdminHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	received, threshold := h.issuer.Progress()
	writeAdminJSON(w, AdminStatusResponse{
		State:     h.state().String(),
		Received:  received,
		Threshold: threshold,
	})
}

// handleSubmitShare accepts one administrator's share.
//
// Endpoint: POST /admin/share
// Body: AdminSubmitShareRequest
func (h *AdminHandler) handleSubmitShare(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.verifyAdmin(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.issuer.IsUnlocked() {
		http.Error(w, "Issuer already unlocked", http.StatusBadRequest)
		return
	}

	var submission AdminSubmitShareRequest
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	share, err := base64.StdEncoding.DecodeString(submission.Share)
	if err != nil {
		http.Error(w, "Invalid share encoding", http.StatusBadRequest)
		return
	}

	signature, err := base64.StdEncoding.DecodeString(submission.Signature)
	if err != nil {
		http.Error(w, "Invalid signature encoding", http.StatusBadRequest)
		return
	}

	err = h.issuer.SubmitShare(share, signature, h.adminPubKeys[adminID])
	if err != nil {
		h.log.Error("Share submission failed", "err", err, "adminID", adminID)
		http.Error(w, "Share submission failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	if h.issuer.IsUnlocked() {
		h.markUnlocked()
		h.log.Info("Issuer unlocked", "adminID", adminID)
		writeAdminJSON(w, map[string]string{"message": "Issuer unlocked"})
		return
	}

	h.log.Info("Share accepted", "adminID", adminID, "shareIndex", submission.ShareIndex)
	writeAdminJSON(w, map[string]string{"message": "Share accepted, waiting for more shares"})
}

func writeAdminJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// verifyAdmin checks the admin headers against the whitelisted public key
// and restores the request body for the handler.
func (h *AdminHandler) verifyAdmin(r *http.Request) (string, bool) {
	adminID := r.Header.Get(AdminIDHeader)
	adminSignatureStr := r.Header.Get(AdminSignatureHeader)
	if adminID == "" || adminSignatureStr == "" {
		return "", false
	}

	pubKeyPEM, exists := h.adminPubKeys[adminID]
	if !exists {
		h.log.Warn("Authentication failed: unknown admin ID", "adminID", adminID)
		return adminID, false
	}

	adminSignature, err := base64.StdEncoding.DecodeString(adminSignatureStr)
	if err != nil {
		h.log.Warn("Authentication failed: invalid signature encoding", "adminID", adminID, "err", err)
		return adminID, false
	}

	ecdsaPubKey, err := parseECDSAPublicKey(pubKeyPEM)
	if err != nil {
		h.log.Error("Unusable admin public key", "adminID", adminID, "err", err)
		return adminID, false
	}

	var bodyBytes []byte
	if r.Body != nil {
		bodyBytes, err = io.ReadAll(r.Body)
		if err != nil {
			h.log.Error("Failed to read request body", "err", err)
			return adminID, false
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	hash := sha256.Sum256(append([]byte(r.URL.Path), bodyBytes...))
	if !ecdsa.VerifyASN1(ecdsaPubKey, hash[:], adminSignature) {
		h.log.Warn("Authentication failed: invalid signature", "adminID", adminID)
		return adminID, false
	}

	h.log.Debug("Admin authentication successful", "adminID", adminID)
	return adminID, true
}

func parseECDSAPublicKey(pubKeyPEM []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(pubKeyPEM)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	ecdsaPubKey, ok := pubKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("not an ECDSA key")
	}
	return ecdsaPubKey, nil
}

// LoadAdminKeys reads admin public keys from JSON of the form
// {"admins":[{"id":"...","pubkey":"<PEM>"}]}.
func LoadAdminKeys(r io.Reader) (map[string][]byte, error) {
	var data struct {
		Admins []struct {
			ID     string `json:"id"`
			PubKey string `json:"pubkey"`
		} `json:"admins"`
	}

	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode admin keys JSON: %w", err)
	}

	result := make(map[string][]byte, len(data.Admins))
	for _, admin := range data.Admins {
		if _, err := parseECDSAPublicKey([]byte(admin.PubKey)); err != nil {
			return nil, fmt.Errorf("invalid public key for admin %s: %w", admin.ID, err)
		}
		result[admin.ID] = []byte(admin.PubKey)
	}

	return result, nil
}

// GenerateAdminKeyPair returns a new P-256 key pair as PEM strings.
func GenerateAdminKeyPair() (privateKeyPEM string, publicKeyPEM string, err error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate ECDSA key: %w", err)
	}

	privateKeyBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal private key: %w", err)
	}

	publicKeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privateKeyBytes})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicKeyBytes})
	return string(privPEM), string(pubPEM), nil
}

// ParsePrivateKey parses an EC PRIVATE KEY PEM block.
func ParsePrivateKey(privateKeyPEM []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, errors.New("failed to decode PEM block containing private key")
	}

	privateKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ECDSA private key: %w", err)
	}

	return privateKey, nil
}
