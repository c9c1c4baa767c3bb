package kms

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/ruteri/djilog-keychain/cryptoutils"
	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/ruteri/djilog-keychain/keychain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimpleIssuer(t *testing.T) {
	_, err := NewSimpleIssuer(make([]byte, 31))
	require.ErrorIs(t, err, ErrShortMasterKey)

	_, err = NewSimpleIssuer(make([]byte, 64))
	require.NoError(t, err)
}

func TestSimpleIssuerSealIssue(t *testing.T) {
	issuer, err := NewSimpleIssuer(bytes.Repeat([]byte{0x5a}, 32))
	require.NoError(t, err)

	iv, key, err := GenerateMaterial(rand.Reader)
	require.NoError(t, err)

	sealed, err := issuer.Seal(interfaces.GimbalFeature, iv, key)
	require.NoError(t, err)
	assert.Equal(t, interfaces.GimbalFeature, sealed.FeaturePoint)
	assert.NotContains(t, sealed.AesCiphertext, interfaces.NewKeychainEntry(interfaces.GimbalFeature, iv, key).AesKey)

	t.Run("Round trip", func(t *testing.T) {
		entry, err := issuer.Issue(sealed)
		require.NoError(t, err)
		assert.Equal(t, interfaces.NewKeychainEntry(interfaces.GimbalFeature, iv, key), entry)
	})

	t.Run("Same master key issues the same material", func(t *testing.T) {
		other, err := NewSimpleIssuer(bytes.Repeat([]byte{0x5a}, 32))
		require.NoError(t, err)
		entry, err := other.Issue(sealed)
		require.NoError(t, err)
		decodedKey, err := entry.DecodeKey()
		require.NoError(t, err)
		assert.Equal(t, key, decodedKey)
	})

	t.Run("Relabelled feature point", func(t *testing.T) {
		relabelled := sealed
		relabelled.FeaturePoint = interfaces.BatteryFeature
		_, err := issuer.Issue(relabelled)
		require.Error(t, err)
	})

	t.Run("Other master key", func(t *testing.T) {
		other, err := NewSimpleIssuer(bytes.Repeat([]byte{0xa5}, 32))
		require.NoError(t, err)
		_, err = other.Issue(sealed)
		require.Error(t, err)
	})

	t.Run("Malformed ciphertext", func(t *testing.T) {
		_, err := issuer.Issue(interfaces.EncodedKeychainEntry{FeaturePoint: interfaces.GimbalFeature, AesCiphertext: "***"})
		require.ErrorIs(t, err, interfaces.ErrEncoding)
	})

	t.Run("Unknown feature point", func(t *testing.T) {
		_, err := issuer.Seal(interfaces.FeaturePoint(99), iv, key)
		require.ErrorIs(t, err, ErrUnknownFeature)
	})

	t.Run("Bad material", func(t *testing.T) {
		_, err := issuer.Seal(interfaces.GimbalFeature, iv[:8], key)
		require.ErrorIs(t, err, ErrInvalidMaterial)
	})
}

func TestIssuedMaterialDecryptsRecords(t *testing.T) {
	issuer, err := NewSimpleIssuer(bytes.Repeat([]byte{0x01}, 32))
	require.NoError(t, err)

	iv, key, err := GenerateMaterial(rand.Reader)
	require.NoError(t, err)
	sealed, err := issuer.Seal(interfaces.DJIFlyCustomFeature, iv, key)
	require.NoError(t, err)

	payload := []byte("eighteen byte rec!")
	ciphertext, err := cryptoutils.EncryptAESCBC(key, iv, payload)
	require.NoError(t, err)

	entry, err := issuer.Issue(sealed)
	require.NoError(t, err)

	kc := keychain.FromEntries([]interfaces.KeychainEntry{entry})
	plaintext, err := kc.Decrypt(interfaces.DJIFlyCustomFeature, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, payload, plaintext)
}
