package cryptoutils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidIV         = errors.New("invalid IV length")
	ErrInvalidCiphertext = errors.New("ciphertext is not a whole number of blocks")
	ErrInvalidPadding    = errors.New("invalid PKCS#7 padding")
)

// DecryptAESCBC decrypts a feature point payload with AES in CBC mode and
// strips its PKCS#7 padding. The key must be 16, 24 or 32 bytes and the IV
// exactly one block.
func DecryptAESCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIV, len(iv), aes.BlockSize)
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCiphertext, len(ciphertext))
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return unpadPKCS7(plaintext)
}

// EncryptAESCBC is the inverse of DecryptAESCBC. It is used to build
// fixtures and by producers of encrypted payloads.
func EncryptAESCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidIV, len(iv), aes.BlockSize)
	}

	padded := padPKCS7(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return ciphertext, nil
}

// SealAESGCM encrypts data with AES-GCM under a fresh random nonce.
// Format: [nonce (12 bytes)][ciphertext with tag]
func SealAESGCM(key, data, additionalData []byte) ([]byte, error) {
	aesBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(aesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aesGCM.Seal(nonce, nonce, data, additionalData), nil
}

// OpenAESGCM decrypts data produced by SealAESGCM.
func OpenAESGCM(key, sealed, additionalData []byte) ([]byte, error) {
	aesBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(aesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(sealed) < aesGCM.NonceSize()+aesGCM.Overhead() {
		return nil, errors.New("sealed data too short")
	}

	nonce, ciphertext := sealed[:aesGCM.NonceSize()], sealed[aesGCM.NonceSize():]
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

func padPKCS7(data []byte) []byte {
	padLen := aes.BlockSize - len(data)%aes.BlockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func unpadPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPadding
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, ErrInvalidPadding
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrInvalidPadding
		}
	}

	return data[:len(data)-padLen], nil
}
