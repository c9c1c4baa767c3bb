// Package cryptoutils provides the symmetric cryptography used by the
// flight-log decoder and the key-issuing service.
//
// # Record Decryption
//
// Encrypted feature point payloads are AES in CBC mode with PKCS#7 padding.
// The key and IV come from the keychain entry for the feature point:
//
//	plaintext, err := cryptoutils.DecryptAESCBC(material.Key, material.IV, ciphertext)
//
// EncryptAESCBC is the inverse and is used to produce fixtures.
//
// # Key Material Sealing
//
// The key-issuing service hands out key material that it previously sealed
// with AES-GCM. The sealed format is:
//
//	[nonce (12 bytes)][ciphertext with GCM authentication tag]
//
// SealAESGCM draws a fresh random nonce for every call; OpenAESGCM rejects
// tampered data and mismatched additional data.
//
// # Error Handling
//
// Malformed inputs are reported with ErrInvalidIV, ErrInvalidCiphertext and
// ErrInvalidPadding so callers can tell wrong key material apart from a
// truncated payload.
package cryptoutils
