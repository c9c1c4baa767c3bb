package interfaces

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// KeychainID is a 32-byte SHA-256 hash identifying a cached keychain
// response by the request that produced it.
type KeychainID [32]byte

// NewKeychainIDFromBytes creates a keychain ID from a 32-byte slice.
func NewKeychainIDFromBytes(source []byte) (KeychainID, error) {
	if len(source) != 32 {
		return KeychainID{}, errors.New("invalid KeychainID conversion from bytes: incorrect length")
	}

	var hash [32]byte
	copy(hash[:], source)
	return KeychainID(hash), nil
}

// NewKeychainIDFromHex parses a 64-character hex string, with or without 0x.
func NewKeychainIDFromHex(source string) (KeychainID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return KeychainID{}, errors.New("invalid keychain ID length: hex string must be 64 characters")
	}

	hashBytes, err := hex.DecodeString(clean)
	if err != nil {
		return KeychainID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewKeychainIDFromBytes(hashBytes)
}

// ComputeKeychainID hashes the canonical encoding of a keychain request.
func ComputeKeychainID(data []byte) KeychainID {
	return KeychainID(sha256.Sum256(data))
}

// String returns hex representation.
func (id KeychainID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns raw 32-byte hash.
func (id KeychainID) Bytes() []byte {
	return id[:]
}

// Equal compares two keychain IDs.
func (id KeychainID) Equal(other KeychainID) bool {
	return bytes.Equal(id[:], other[:])
}

// StorageBackendLocation represents URI for storage backend.
type StorageBackendLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewStorageBackendLocation creates a new storage location from a URI string with validation.
func NewStorageBackendLocation(uri string) (StorageBackendLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return StorageBackendLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	switch scheme {
	case "file", "s3", "vault":
	default:
		return StorageBackendLocation{}, fmt.Errorf("%w: unsupported storage scheme %q", ErrInvalidLocationURI, parsed.Scheme)
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return StorageBackendLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc StorageBackendLocation) String() string {
	return loc.Raw
}

// IsFile checks if this is a file system storage location.
func (loc StorageBackendLocation) IsFile() bool {
	return loc.Scheme == "file"
}

// IsS3 checks if this is an S3 storage location.
func (loc StorageBackendLocation) IsS3() bool {
	return loc.Scheme == "s3"
}

// IsVault checks if this is a Vault storage location.
func (loc StorageBackendLocation) IsVault() bool {
	return loc.Scheme == "vault"
}

// GetParam returns a query parameter value.
func (loc StorageBackendLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc StorageBackendLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}

var (
	// ErrContentNotFound is returned when no cached keychain exists for an ID.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable is returned when a storage backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageBackend caches keychain responses keyed by the request that
// produced them.
type StorageBackend interface {
	// Fetch retrieves the data stored under id.
	Fetch(ctx context.Context, id KeychainID) ([]byte, error)

	// Store saves data under id, replacing any previous value.
	Store(ctx context.Context, id KeychainID, data []byte) error

	// Available checks if backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// StorageBackendFactory creates storage backends.
type StorageBackendFactory interface {
	// StorageBackendFor creates backend from URI.
	// Supports file://, s3://, vault://
	StorageBackendFor(location StorageBackendLocation) (StorageBackend, error)

	// CreateMultiBackend creates aggregated storage backend.
	CreateMultiBackend(locations []StorageBackendLocation) (StorageBackend, error)
}
