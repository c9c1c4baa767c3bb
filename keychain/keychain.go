package keychain

import (
	"encoding/base64"
	"fmt"
	"slices"

	"github.com/ruteri/djilog-keychain/cryptoutils"
	"github.com/ruteri/djilog-keychain/interfaces"
)

// KeyMaterial is the raw AES initialization vector and key for one
// feature point.
type KeyMaterial struct {
	IV  []byte
	Key []byte
}

// Keychain associates each feature point with the AES material needed to
// decrypt its records.
//
// A Keychain is not synchronized. Build it, then only read from it; callers
// that insert while other goroutines read must add their own locking.
type Keychain struct {
	entries map[interfaces.FeaturePoint]KeyMaterial
}

// Empty returns a keychain with no entries.
func Empty() *Keychain {
	return &Keychain{entries: make(map[interfaces.FeaturePoint]KeyMaterial)}
}

// FromEntries builds a keychain from entries issued by the key service.
// An IV or key that is not valid base64 is stored as an empty slice rather
// than failing the whole batch; decryption with such an entry fails later.
// Later entries for the same feature point replace earlier ones.
func FromEntries(entries []interfaces.KeychainEntry) *Keychain {
	k := Empty()
	for _, entry := range entries {
		k.entries[entry.FeaturePoint] = KeyMaterial{
			IV:  decodeOrEmpty(entry.AesIv),
			Key: decodeOrEmpty(entry.AesKey),
		}
	}
	return k
}

// FromEntriesStrict is FromEntries without the lossy fallback: the first
// IV or key that fails to decode is returned as an encoding error.
func FromEntriesStrict(entries []interfaces.KeychainEntry) (*Keychain, error) {
	k := Empty()
	for _, entry := range entries {
		iv, err := entry.DecodeIV()
		if err != nil {
			return nil, err
		}
		key, err := entry.DecodeKey()
		if err != nil {
			return nil, err
		}
		k.entries[entry.FeaturePoint] = KeyMaterial{IV: iv, Key: key}
	}
	return k, nil
}

func decodeOrEmpty(s string) []byte {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return []byte{}
	}
	return decoded
}

// Get returns the material stored for fp. A nil keychain holds nothing.
func (k *Keychain) Get(fp interfaces.FeaturePoint) (KeyMaterial, bool) {
	if k == nil {
		return KeyMaterial{}, false
	}
	material, ok := k.entries[fp]
	return material, ok
}

// Insert stores material for fp and returns whatever was stored before.
func (k *Keychain) Insert(fp interfaces.FeaturePoint, material KeyMaterial) (KeyMaterial, bool) {
	if k.entries == nil {
		k.entries = make(map[interfaces.FeaturePoint]KeyMaterial)
	}
	previous, ok := k.entries[fp]
	k.entries[fp] = material
	return previous, ok
}

// Len returns the number of feature points with stored material.
func (k *Keychain) Len() int {
	if k == nil {
		return 0
	}
	return len(k.entries)
}

// FeaturePoints returns the stored feature points in ascending order.
func (k *Keychain) FeaturePoints() []interfaces.FeaturePoint {
	if k == nil {
		return nil
	}
	points := make([]interfaces.FeaturePoint, 0, len(k.entries))
	for fp := range k.entries {
		points = append(points, fp)
	}
	slices.Sort(points)
	return points
}

// Entries converts the keychain back into its wire shape, ordered by
// feature point.
func (k *Keychain) Entries() []interfaces.KeychainEntry {
	points := k.FeaturePoints()
	entries := make([]interfaces.KeychainEntry, 0, len(points))
	for _, fp := range points {
		material := k.entries[fp]
		entries = append(entries, interfaces.NewKeychainEntry(fp, material.IV, material.Key))
	}
	return entries
}

// Decrypt decrypts a record payload of feature point fp.
func (k *Keychain) Decrypt(fp interfaces.FeaturePoint, ciphertext []byte) ([]byte, error) {
	material, ok := k.Get(fp)
	if !ok {
		return nil, interfaces.NewMissingAuxiliaryDataError(fmt.Sprintf("keychain entry for %s", fp))
	}

	plaintext, err := cryptoutils.DecryptAESCBC(material.Key, material.IV, ciphertext)
	if err != nil {
		return nil, interfaces.NewParseError(fmt.Sprintf("decrypt %s", fp), err)
	}
	return plaintext, nil
}
