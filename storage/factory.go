package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ruteri/djilog-keychain/interfaces"
)

// StorageBackendFactory creates keychain cache backends from location URIs.
type StorageBackendFactory struct {
	log *slog.Logger
}

func NewStorageBackendFactory(logger *slog.Logger) *StorageBackendFactory {
	return &StorageBackendFactory{log: logger}
}

// StorageBackendFor creates a storage backend from a location.
//
// Supported schemes:
//   - file:///absolute/path or file://./relative/path
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix?region=..&endpoint=..&path_style=true
//   - vault://[TOKEN@]host:port/mount/path?insecure=true
func (sf *StorageBackendFactory) StorageBackendFor(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	switch {
	case location.IsFile():
		return sf.createFileBackend(location)
	case location.IsS3():
		return sf.createS3Backend(location)
	case location.IsVault():
		return sf.createVaultBackend(location)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme %s", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiBackend creates a multi-storage backend from the locations that
// could be opened. It fails only if none could.
func (sf *StorageBackendFactory) CreateMultiBackend(locations []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	backends := make([]interfaces.StorageBackend, 0, len(locations))

	for _, location := range locations {
		backend, err := sf.StorageBackendFor(location)
		if err != nil {
			sf.log.Warn("Failed to create storage backend",
				"err", err,
				slog.String("locationURI", location.String()))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid storage backends created")
	}

	return NewMultiStorageBackend(backends, sf.log), nil
}

func (sf *StorageBackendFactory) createS3Backend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating S3 backend", slog.String("bucket", location.Host))

	cfg := S3Config{
		Bucket:    location.Host,
		Prefix:    strings.TrimPrefix(location.Path, "/"),
		Region:    location.GetParam("region"),
		Endpoint:  location.GetParam("endpoint"),
		PathStyle: location.GetParamBool("path_style"),
	}

	if location.Auth != "" {
		accessKey, secretKey, _ := strings.Cut(location.Auth, ":")
		cfg.AccessKey = accessKey
		cfg.SecretKey = secretKey
	}

	return NewS3Backend(cfg, sf.log)
}

func (sf *StorageBackendFactory) createVaultBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating Vault backend", slog.String("host", location.Host))

	if location.Host == "" {
		return nil, fmt.Errorf("%w: missing Vault host", interfaces.ErrInvalidLocationURI)
	}

	scheme := "https"
	if location.GetParamBool("insecure") {
		scheme = "http"
	}

	mountPath, dataPath, _ := strings.Cut(strings.TrimPrefix(location.Path, "/"), "/")
	if mountPath == "" {
		mountPath = "secret"
	}

	token, _, _ := strings.Cut(location.Auth, ":")

	return NewVaultBackend(scheme+"://"+location.Host, token, mountPath, dataPath, sf.log)
}

func (sf *StorageBackendFactory) createFileBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating file backend", slog.String("uri", location.String()))

	path := location.Path
	if location.Host != "" {
		path = location.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI %s", interfaces.ErrInvalidLocationURI, location.String())
	}

	return NewFileBackend(path, sf.log)
}
