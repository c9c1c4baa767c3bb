package keychainapi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/djilog-keychain/api"
	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/ruteri/djilog-keychain/metrics"
)

// Result codes returned in api.ResultInfo.
const (
	ResultCodeBadRequest  = 400
	ResultCodeForbidden   = 403
	ResultCodeIssueFailed = 500
)

const maxRequestSize = 1024 * 1024

// Handler serves the keychain endpoint. It authorizes callers by api key and
// asks its issuer to open every encoded entry of the request.
type Handler struct {
	issuer  interfaces.KeyIssuer
	apiKeys map[[32]byte]struct{}
	metrics *metrics.KeyServiceMetrics
	log     *slog.Logger
}

// NewHandler creates a handler accepting the given api keys. m may be nil.
func NewHandler(issuer interfaces.KeyIssuer, apiKeys []string, m *metrics.KeyServiceMetrics, log *slog.Logger) *Handler {
	keys := make(map[[32]byte]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		if key == "" {
			continue
		}
		keys[sha256.Sum256([]byte(key))] = struct{}{}
	}

	return &Handler{
		issuer:  issuer,
		apiKeys: keys,
		metrics: m,
		log:     log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post(KeychainsPath, h.HandleKeychains)
}

func (h *Handler) authorized(apiKey string) bool {
	if apiKey == "" {
		return false
	}
	digest := sha256.Sum256([]byte(apiKey))
	for known := range h.apiKeys {
		if subtle.ConstantTimeCompare(known[:], digest[:]) == 1 {
			return true
		}
	}
	return false
}

// HandleKeychains answers POST /openapi/v1/flight-records/keychains.
//
// Required headers:
//   - Api-Key: one of the configured api keys
//
// Request body: api.KeychainsRequest
// Response: api.KeychainsResponse with one entry list per requested keychain
func (h *Handler) HandleKeychains(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if !h.authorized(r.Header.Get(ApiKeyHeader)) {
		h.metrics.ObserveRequest(metrics.StatusUnauthorized, started)
		h.writeResult(w, http.StatusForbidden, ResultCodeForbidden, "invalid api key")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		h.metrics.ObserveRequest(metrics.StatusBadRequest, started)
		h.writeResult(w, http.StatusBadRequest, ResultCodeBadRequest, "failed to read request body")
		return
	}

	var req api.KeychainsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.metrics.ObserveRequest(metrics.StatusBadRequest, started)
		h.writeResult(w, http.StatusBadRequest, ResultCodeBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if err := req.Validate(); err != nil {
		h.metrics.ObserveRequest(metrics.StatusBadRequest, started)
		h.writeResult(w, http.StatusBadRequest, ResultCodeBadRequest, err.Error())
		return
	}

	data := make([][]interfaces.KeychainEntry, 0, len(req.Keychains))
	issued := 0
	for i, group := range req.Keychains {
		entries := make([]interfaces.KeychainEntry, 0, len(group))
		for _, encoded := range group {
			entry, err := h.issuer.Issue(encoded)
			if err != nil {
				h.log.Info("could not issue keychain entry",
					"keychain", i,
					"featurePoint", encoded.FeaturePoint.String(),
					"department", req.Department,
					"err", err)
				h.metrics.IncIssueFailure(encoded.FeaturePoint.String())
				h.metrics.ObserveRequest(metrics.StatusFailed, started)
				h.writeResult(w, http.StatusBadRequest, ResultCodeIssueFailed, fmt.Sprintf("keychain %d: could not issue %s", i, encoded.FeaturePoint))
				return
			}
			entries = append(entries, entry)
		}
		issued += len(entries)
		data = append(data, entries)
	}

	h.metrics.AddIssued(issued)
	h.metrics.ObserveRequest(metrics.StatusOK, started)

	h.writeJSON(w, http.StatusOK, api.KeychainsResponse{
		Result: api.ResultInfo{Code: api.ResultCodeOK, Msg: "success"},
		Data:   data,
	})
}

func (h *Handler) writeResult(w http.ResponseWriter, status, code int, msg string) {
	h.writeJSON(w, status, api.KeychainsResponse{
		Result: api.ResultInfo{Code: code, Msg: msg},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp api.KeychainsResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}
