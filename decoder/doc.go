// Package decoder ties the keychain to the record decoders.
//
// A Session is created per flight log. Plaintext records are decoded
// directly; encrypted records are first decrypted with the key material the
// session's keychain holds for their feature point. A session without a
// keychain fails every decrypt with interfaces.ErrInvalidDecryptMethod.
package decoder
