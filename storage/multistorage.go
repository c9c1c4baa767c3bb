package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/djilog-keychain/interfaces"
)

// MultiStorageBackend stores to every available backend and fetches from the
// first one that has the keychain.
type MultiStorageBackend struct {
	backends []interfaces.StorageBackend
	log      *slog.Logger
}

func NewMultiStorageBackend(backends []interfaces.StorageBackend, logger *slog.Logger) *MultiStorageBackend {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStorageBackend{
		backends: backends,
		log:      logger,
	}
}

// Fetch tries each available backend in order. It returns
// ErrContentNotFound when every backend that answered reported a miss.
func (m *MultiStorageBackend) Fetch(ctx context.Context, id interfaces.KeychainID) ([]byte, error) {
	start := time.Now()
	var errs []error
	allMisses := true

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable",
				slog.String("backend_name", backend.Name()),
				slog.String("keychain_id", id.String()))
			continue
		}

		data, err := backend.Fetch(ctx, id)
		if err == nil {
			m.log.Debug("Fetched keychain",
				slog.String("backend_name", backend.Name()),
				slog.String("keychain_id", id.String()),
				slog.Duration("duration", time.Since(start)))
			return data, nil
		}

		if !errors.Is(err, interfaces.ErrContentNotFound) {
			allMisses = false
		}
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		m.log.Debug("Failed to fetch from backend",
			slog.String("backend_name", backend.Name()),
			slog.String("keychain_id", id.String()),
			"err", err)
	}

	if len(errs) == 0 {
		return nil, interfaces.ErrBackendUnavailable
	}
	if allMisses {
		return nil, interfaces.ErrContentNotFound
	}

	return nil, fmt.Errorf("all backends failed to fetch %s: %w", id.String(), errors.Join(errs...))
}

// Store saves data to every available backend. It succeeds if at least one
// backend accepted the write.
func (m *MultiStorageBackend) Store(ctx context.Context, id interfaces.KeychainID, data []byte) error {
	start := time.Now()
	var stored int
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend_name", backend.Name()))
			continue
		}

		if err := backend.Store(ctx, id, data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Debug("Failed to store to backend",
				slog.String("backend_name", backend.Name()),
				"err", err)
			continue
		}
		stored++
	}

	if stored == 0 {
		m.log.Error("All backends failed to store keychain",
			slog.Int("failed_backends", len(errs)),
			slog.Duration("duration", time.Since(start)))
		if len(errs) == 0 {
			return interfaces.ErrBackendUnavailable
		}
		return fmt.Errorf("all backends failed to store keychain: %w", errors.Join(errs...))
	}

	m.log.Debug("Stored keychain",
		slog.String("keychain_id", id.String()),
		slog.Int("backends", stored),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Available checks if any backend is available.
func (m *MultiStorageBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

func (m *MultiStorageBackend) Name() string {
	return "multi-storage"
}

func (m *MultiStorageBackend) LocationURI() string {
	locations := make([]string, 0, len(m.backends))
	for _, backend := range m.backends {
		locations = append(locations, backend.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
