package interfaces

// KeyIssuer turns encoded keychain entries back into usable key material.
// Implementations own the secret that the ciphertexts were sealed under.
type KeyIssuer interface {
	Issue(entry EncodedKeychainEntry) (KeychainEntry, error)
}
