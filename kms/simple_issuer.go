package kms

import (
	"crypto/aes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ruteri/djilog-keychain/cryptoutils"
	"github.com/ruteri/djilog-keychain/interfaces"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the size of issued AES keys and of the per-feature-point
// sealing keys.
const KeySize = 32

const sealingKeyInfo = "djilog-keychain sealing key v1 "

var (
	ErrShortMasterKey  = errors.New("master key must be at least 32 bytes")
	ErrInvalidMaterial = errors.New("invalid key material")
	ErrUnknownFeature  = errors.New("unknown feature point")
)

// SimpleIssuer seals and issues keychain entries with keys derived
// deterministically from a master key. Each feature point gets its own
// sealing key, so ciphertext sealed for one point never opens as another.
type SimpleIssuer struct {
	masterKey []byte

	mu          sync.RWMutex
	sealingKeys map[interfaces.FeaturePoint][]byte
}

// NewSimpleIssuer creates an issuer from a master key of at least 32 bytes.
func NewSimpleIssuer(masterKey []byte) (*SimpleIssuer, error) {
	if len(masterKey) < KeySize {
		return nil, ErrShortMasterKey
	}

	return &SimpleIssuer{
		masterKey:   masterKey,
		sealingKeys: make(map[interfaces.FeaturePoint][]byte),
	}, nil
}

func (i *SimpleIssuer) sealingKey(fp interfaces.FeaturePoint) ([]byte, error) {
	if !fp.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFeature, int(fp))
	}

	i.mu.RLock()
	key, ok := i.sealingKeys[fp]
	i.mu.RUnlock()
	if ok {
		return key, nil
	}

	key = make([]byte, KeySize)
	kdf := hkdf.New(sha256.New, i.masterKey, nil, []byte(sealingKeyInfo+fp.String()))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("could not derive sealing key: %w", err)
	}

	i.mu.Lock()
	i.sealingKeys[fp] = key
	i.mu.Unlock()

	return key, nil
}

// Seal encrypts the IV and key of a feature point into the opaque
// ciphertext a flight log carries.
func (i *SimpleIssuer) Seal(fp interfaces.FeaturePoint, iv, key []byte) (interfaces.EncodedKeychainEntry, error) {
	if len(iv) != aes.BlockSize || len(key) == 0 {
		return interfaces.EncodedKeychainEntry{}, fmt.Errorf("%w: iv %d bytes, key %d bytes", ErrInvalidMaterial, len(iv), len(key))
	}

	sealingKey, err := i.sealingKey(fp)
	if err != nil {
		return interfaces.EncodedKeychainEntry{}, err
	}

	material := append(append(make([]byte, 0, len(iv)+len(key)), iv...), key...)
	sealed, err := cryptoutils.SealAESGCM(sealingKey, material, []byte(fp.String()))
	if err != nil {
		return interfaces.EncodedKeychainEntry{}, fmt.Errorf("could not seal key material: %w", err)
	}

	return interfaces.NewEncodedKeychainEntry(fp, sealed), nil
}

// Issue reverses Seal.
func (i *SimpleIssuer) Issue(entry interfaces.EncodedKeychainEntry) (interfaces.KeychainEntry, error) {
	sealingKey, err := i.sealingKey(entry.FeaturePoint)
	if err != nil {
		return interfaces.KeychainEntry{}, err
	}

	sealed, err := entry.Ciphertext()
	if err != nil {
		return interfaces.KeychainEntry{}, err
	}

	material, err := cryptoutils.OpenAESGCM(sealingKey, sealed, []byte(entry.FeaturePoint.String()))
	if err != nil {
		return interfaces.KeychainEntry{}, fmt.Errorf("could not open key material for %s: %w", entry.FeaturePoint, err)
	}

	if len(material) <= aes.BlockSize {
		return interfaces.KeychainEntry{}, fmt.Errorf("%w: %d bytes", ErrInvalidMaterial, len(material))
	}

	return interfaces.NewKeychainEntry(entry.FeaturePoint, material[:aes.BlockSize], material[aes.BlockSize:]), nil
}

// GenerateMaterial returns a random IV and AES-256 key.
func GenerateMaterial(rand io.Reader) (iv, key []byte, err error) {
	buf := make([]byte, aes.BlockSize+KeySize)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, nil, fmt.Errorf("could not generate key material: %w", err)
	}
	return buf[:aes.BlockSize], buf[aes.BlockSize:], nil
}
