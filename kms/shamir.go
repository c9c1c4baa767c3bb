package kms

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/vault/shamir"
	"github.com/ruteri/djilog-keychain/interfaces"
)

var ErrLocked = errors.New("issuer is locked - need more shares to unlock")

// ShamirIssuer is a SimpleIssuer whose master key is split into shares held
// by administrators. The issuer stays locked until a threshold of signed
// shares has been submitted; the master key then lives only in memory.
type ShamirIssuer struct {
	mu             sync.RWMutex
	issuer         *SimpleIssuer
	threshold      int
	receivedShares map[string][]byte // by admin fingerprint

	adminPubKeys map[string][]byte
}

// ShamirConfig configures a ShamirIssuer.
type ShamirConfig struct {
	// Threshold is the minimum number of shares required to rebuild the master key.
	Threshold int
	// AdminPubKeys are the PEM public keys allowed to submit shares.
	AdminPubKeys [][]byte
}

// SplitMasterKey splits a master key into one share per administrator.
func SplitMasterKey(masterKey []byte, config ShamirConfig) ([][]byte, error) {
	if len(masterKey) < KeySize {
		return nil, ErrShortMasterKey
	}

	if config.Threshold < 2 {
		return nil, errors.New("threshold must be at least 2")
	}

	if len(config.AdminPubKeys) < config.Threshold {
		return nil, errors.New("total shares must be at least equal to threshold")
	}

	shares, err := shamir.Split(masterKey, len(config.AdminPubKeys), config.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split master key: %w", err)
	}
	return shares, nil
}

// CombineMasterKeyShares rebuilds a master key from shares.
func CombineMasterKeyShares(shares [][]byte) ([]byte, error) {
	if len(shares) < 2 {
		return nil, errors.New("at least 2 shares are required")
	}

	masterKey, err := shamir.Combine(shares)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct master key: %w", err)
	}

	if len(masterKey) < KeySize {
		return nil, ErrShortMasterKey
	}
	return masterKey, nil
}

// NewShamirIssuerRecovery creates a locked issuer that waits for shares.
func NewShamirIssuerRecovery(config ShamirConfig) (*ShamirIssuer, error) {
	if config.Threshold < 2 {
		return nil, errors.New("threshold must be at least 2")
	}

	s := &ShamirIssuer{
		threshold:      config.Threshold,
		receivedShares: make(map[string][]byte),
		adminPubKeys:   make(map[string][]byte),
	}

	for _, publicKeyPEM := range config.AdminPubKeys {
		if _, err := parseAdminPubkey(publicKeyPEM); err != nil {
			return nil, fmt.Errorf("invalid admin pubkey %s: %w", publicKeyPEM, err)
		}
		s.adminPubKeys[Fingerprint(publicKeyPEM)] = publicKeyPEM
	}

	return s, nil
}

// Fingerprint is the hex SHA-256 of a PEM public key.
func Fingerprint(publicKeyPEM []byte) string {
	fingerprint := sha256.Sum256(publicKeyPEM)
	return hex.EncodeToString(fingerprint[:])
}

func parseAdminPubkey(publicKeyPEM []byte) (any, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, errors.New("failed to decode admin public key PEM")
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin public key: %w", err)
	}

	switch pubKey.(type) {
	case *ecdsa.PublicKey, ed25519.PublicKey:
		return pubKey, nil
	default:
		return nil, errors.New("admin public key is neither ECDSA nor ED25519 key")
	}
}

// SubmitShare records a share signed by a registered administrator. Each
// administrator holds one slot: a resubmission replaces their earlier share.
// Once the threshold is reached the master key is rebuilt and the issuer
// unlocks. A share that fails reconstruction is discarded.
func (s *ShamirIssuer) SubmitShare(share, signature, adminPubKeyPEM []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.issuer != nil {
		return errors.New("issuer is already unlocked")
	}

	adminID := Fingerprint(adminPubKeyPEM)
	registered, found := s.adminPubKeys[adminID]
	if !found {
		return errors.New("unregistered admin public key")
	}

	if !bytes.Equal(registered, adminPubKeyPEM) {
		return errors.New("invalid pubkey passed for a matching fingerprint")
	}

	pubKey, err := parseAdminPubkey(adminPubKeyPEM)
	if err != nil {
		return err
	}

	switch key := pubKey.(type) {
	case *ecdsa.PublicKey:
		digest := sha256.Sum256(share)
		if !ecdsa.VerifyASN1(key, digest[:], signature) {
			return errors.New("invalid signature")
		}
	case ed25519.PublicKey:
		if !ed25519.Verify(key, share, signature) {
			return errors.New("invalid signature")
		}
	}

	if len(share) < 2 {
		return errors.New("share is too short")
	}

	// The last byte of a share is its x coordinate.
	for otherID, other := range s.receivedShares {
		if otherID != adminID && other[len(other)-1] == share[len(share)-1] {
			return errors.New("share duplicates one already submitted by another admin")
		}
	}

	previous, replaced := s.receivedShares[adminID]
	s.receivedShares[adminID] = bytes.Clone(share)

	if err := s.tryReconstruct(); err != nil {
		wipeBytes(s.receivedShares[adminID])
		if replaced {
			s.receivedShares[adminID] = previous
		} else {
			delete(s.receivedShares, adminID)
		}
		return err
	}

	if replaced {
		wipeBytes(previous)
	}
	return nil
}

// IsUnlocked reports whether the master key has been rebuilt.
func (s *ShamirIssuer) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issuer != nil
}

// Progress returns the number of shares received and the threshold.
func (s *ShamirIssuer) Progress() (received, threshold int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.receivedShares), s.threshold
}

func (s *ShamirIssuer) Issue(entry interfaces.EncodedKeychainEntry) (interfaces.KeychainEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.issuer == nil {
		return interfaces.KeychainEntry{}, ErrLocked
	}
	return s.issuer.Issue(entry)
}

func (s *ShamirIssuer) Seal(fp interfaces.FeaturePoint, iv, key []byte) (interfaces.EncodedKeychainEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.issuer == nil {
		return interfaces.EncodedKeychainEntry{}, ErrLocked
	}
	return s.issuer.Seal(fp, iv, key)
}

func wipeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// SignShare signs the SHA-256 of a share with an administrator's ECDSA key
// for SubmitShare. Ed25519 administrators sign the share itself.
func SignShare(share []byte, privateKey *ecdsa.PrivateKey) ([]byte, error) {
	digest := sha256.Sum256(share)
	return ecdsa.SignASN1(rand.Reader, privateKey, digest[:])
}
