package httpserver

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ruteri/djilog-keychain/api"
	"github.com/ruteri/djilog-keychain/api/keychainapi"
	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/ruteri/djilog-keychain/kms"
	"github.com/ruteri/djilog-keychain/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      testLogger(),
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
		ReadTimeout:              time.Second,
		WriteTimeout:             time.Second,
	}
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body.Status
}

func TestHealthEndpoints(t *testing.T) {
	srv := New(testConfig(), nil)
	h := srv.Handler()

	steps := []struct {
		path       string
		wantCode   int
		wantStatus string
		wantReady  bool
	}{
		{"/livez", http.StatusOK, "alive", true},
		{"/readyz", http.StatusOK, "ready", true},
		{"/undrain", http.StatusOK, "already ready", true},
		{"/drain", http.StatusOK, "draining", false},
		{"/drain", http.StatusOK, "already draining", false},
		{"/readyz", http.StatusServiceUnavailable, "not ready", false},
		{"/livez", http.StatusOK, "alive", false},
		{"/undrain", http.StatusOK, "ready", true},
		{"/readyz", http.StatusOK, "ready", true},
	}

	for _, step := range steps {
		code, status := get(t, h, step.path)
		assert.Equal(t, step.wantCode, code, step.path)
		assert.Equal(t, step.wantStatus, status, step.path)
		assert.Equal(t, step.wantReady, srv.IsReady(), step.path)
	}
}

func TestPprofRoutes(t *testing.T) {
	cfg := testConfig()
	w := httptest.NewRecorder()
	New(cfg, nil).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	cfg.EnablePprof = true
	w = httptest.NewRecorder()
	New(cfg, nil).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServerMountsKeychainHandler(t *testing.T) {
	masterKey := make([]byte, kms.KeySize)
	_, err := rand.Read(masterKey)
	require.NoError(t, err)
	issuer, err := kms.NewSimpleIssuer(masterKey)
	require.NoError(t, err)

	iv, key, err := kms.GenerateMaterial(rand.Reader)
	require.NoError(t, err)
	sealed, err := issuer.Seal(interfaces.CameraFeature, iv, key)
	require.NoError(t, err)

	metricsSrv, err := metrics.New("test", "")
	require.NoError(t, err)

	handler := keychainapi.NewHandler(issuer, []string{"key"}, metricsSrv.KeyService(), testLogger())
	srv := New(testConfig(), metricsSrv, handler)

	body, err := json.Marshal(api.KeychainsRequest{
		Version:   1,
		Keychains: [][]interfaces.EncodedKeychainEntry{{sealed}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, keychainapi.KeychainsPath, bytes.NewReader(body))
	req.Header.Set(keychainapi.ApiKeyHeader, "key")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.KeychainsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, []interfaces.KeychainEntry{interfaces.NewKeychainEntry(interfaces.CameraFeature, iv, key)}, resp.Data[0])

	mw := httptest.NewRecorder()
	metricsSrv.Handler().ServeHTTP(mw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, mw.Body.String(), `test_keychain_requests_total{status="ok"} 1`)
}
