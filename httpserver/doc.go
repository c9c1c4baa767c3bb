/*
Package httpserver runs the key-issuing service.

The server mounts the routes of its handlers (normally a keychainapi.Handler)
next to the operational endpoints and logs every request through
httplogger. Prometheus metrics are served on a separate listener.

# Endpoints

  - POST /openapi/v1/flight-records/keychains - Issue keychain entries
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Mark the server as not ready
  - GET /undrain - Mark the server as ready
  - /debug/pprof/* - Profiling, when EnablePprof is set

# Admin API

When the master key is split with Shamir's Secret Sharing, the key server
starts locked. AdminHandler serves a small API on its own listener through
which administrators submit their shares:

  - GET /admin/status - Unlock state and share progress
  - POST /admin/share - Submit a signed share

Every share submission is authenticated with the X-Admin-ID and
X-Admin-Signature headers, an ECDSA signature over the request path and
body. AdminClient builds such requests.

# Example Usage

	srv := httpserver.New(&api.HTTPServerConfig{
		ListenAddr:               ":8080",
		MetricsAddr:              ":8090",
		Log:                      logger,
		DrainDuration:            30 * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}, metricsSrv, keychainapi.NewHandler(issuer, apiKeys, metricsSrv.KeyService(), logger))

	srv.RunInBackground()
	defer srv.Shutdown()
*/
package httpserver
