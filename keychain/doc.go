// Package keychain stores the AES key material needed to decrypt the
// encrypted feature points of a flight log.
//
// A Keychain maps each interfaces.FeaturePoint to its IV and key. It is
// usually built once from the entries returned by the key-issuing service
// and then only read while decoding:
//
//	kc := keychain.FromEntries(entries)
//	plaintext, err := kc.Decrypt(interfaces.GimbalFeature, ciphertext)
//
// FromEntries is lossy on purpose: an entry whose base64 IV or key cannot
// be decoded is kept with an empty slice, and the failure only shows up when
// that entry is used. FromEntriesStrict reports the encoding error instead.
//
// Insert is the only mutator and returns the value it replaced. Keychains
// are not safe for concurrent mutation.
package keychain
