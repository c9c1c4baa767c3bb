package api

import (
	"log/slog"
	"time"
)

// Timeouts applied by the key server unless a command overrides them.
const (
	DefaultReadTimeout              = 60 * time.Second
	DefaultWriteTimeout             = 30 * time.Second
	DefaultGracefulShutdownDuration = 30 * time.Second
)

// HTTPServerConfig configures the keychain key server and the admin
// endpoint that unlocks a share-protected issuer.
type HTTPServerConfig struct {
	// ListenAddr serves the keychain endpoint and the health checks.
	ListenAddr string

	// MetricsAddr serves the Prometheus keychain request counters. Empty
	// disables the metrics listener.
	MetricsAddr string

	// EnablePprof mounts net/http/pprof under /debug.
	EnablePprof bool

	Log *slog.Logger

	// DrainDuration is how long the server keeps answering keychain
	// requests after /readyz starts failing, so clients fetching keys are
	// routed to another replica before shutdown begins.
	DrainDuration time.Duration

	// GracefulShutdownDuration bounds how long in-flight keychain requests
	// may run once shutdown starts. Requests still open afterwards are cut.
	GracefulShutdownDuration time.Duration

	// ReadTimeout bounds reading a keychain request, body included.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing the keychain response.
	WriteTimeout time.Duration
}
