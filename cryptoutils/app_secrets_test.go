package cryptoutils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDecryptAESCBCKnownVector checks against NIST SP 800-38A F.2.5 (CBC-AES256),
// first block, with a full padding block appended.
func TestDecryptAESCBCKnownVector(t *testing.T) {
	key, _ := hex.DecodeString("603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4")
	iv, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	plaintext, _ := hex.DecodeString("6bc1bee22e409f96e93d7e117393172a")
	expectedFirstBlock, _ := hex.DecodeString("f58c4c04d6e5f1ba779eabfb5f7bfbd6")

	ciphertext, err := EncryptAESCBC(key, iv, plaintext)
	require.NoError(t, err)
	require.Len(t, ciphertext, 32)
	require.Equal(t, expectedFirstBlock, ciphertext[:16])

	decrypted, err := DecryptAESCBC(key, iv, ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestAESCBCRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	iv := bytes.Repeat([]byte{0x24}, 16)

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "Empty data", data: []byte{}},
		{name: "Custom record", data: make([]byte, 18)},
		{name: "Exact block", data: bytes.Repeat([]byte{1}, 16)},
		{name: "Long data", data: make([]byte, 1024)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, err := EncryptAESCBC(key, iv, tc.data)
			require.NoError(t, err)
			require.Zero(t, len(ciphertext)%aes.BlockSize)
			require.Greater(t, len(ciphertext), len(tc.data))

			decrypted, err := DecryptAESCBC(key, iv, ciphertext)
			require.NoError(t, err)
			require.Equal(t, tc.data, decrypted)
		})
	}
}

func TestDecryptAESCBCErrors(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	iv := bytes.Repeat([]byte{0x24}, 16)

	t.Run("Empty key", func(t *testing.T) {
		_, err := DecryptAESCBC(nil, iv, make([]byte, 16))
		require.Error(t, err)
	})

	t.Run("Short IV", func(t *testing.T) {
		_, err := DecryptAESCBC(key, iv[:8], make([]byte, 16))
		require.ErrorIs(t, err, ErrInvalidIV)
	})

	t.Run("Partial block", func(t *testing.T) {
		_, err := DecryptAESCBC(key, iv, make([]byte, 17))
		require.ErrorIs(t, err, ErrInvalidCiphertext)
	})

	t.Run("Empty ciphertext", func(t *testing.T) {
		_, err := DecryptAESCBC(key, iv, nil)
		require.ErrorIs(t, err, ErrInvalidCiphertext)
	})

	t.Run("Bad padding", func(t *testing.T) {
		block, err := aes.NewCipher(key)
		require.NoError(t, err)
		// Plaintext ending in 0x00 is never valid PKCS#7.
		ciphertext := make([]byte, 16)
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, make([]byte, 16))

		_, err = DecryptAESCBC(key, iv, ciphertext)
		require.ErrorIs(t, err, ErrInvalidPadding)
	})
}

func TestSealOpenAESGCM(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	data := []byte("iv and key material")

	sealed, err := SealAESGCM(key, data, []byte("aad"))
	require.NoError(t, err)

	opened, err := OpenAESGCM(key, sealed, []byte("aad"))
	require.NoError(t, err)
	require.Equal(t, data, opened)

	_, err = OpenAESGCM(key, sealed, []byte("other aad"))
	require.Error(t, err)

	_, err = OpenAESGCM(key, sealed[:10], []byte("aad"))
	require.Error(t, err)

	again, err := SealAESGCM(key, data, []byte("aad"))
	require.NoError(t, err)
	require.NotEqual(t, sealed, again)
}
