// Package interfaces defines the core types and contracts shared by the
// flight-log decoder, the keychain and the key-issuing service clients,
// separating type definitions from implementations.
//
// # Feature Points
//
// FeaturePoint is a closed enum naming each independently encrypted
// telemetry channel. It marshals to the wire identifiers used by the key
// service (for example "FR_Standardization_Feature_Base_1") and is a plain
// comparable value, so it can be used directly as a map key.
//
// # Keychain Wire Shapes
//
//   - KeychainEntry: key material for one feature point, base64 AES key and IV
//   - EncodedKeychainEntry: request payload carrying opaque base64 ciphertext
//
// Both use the standard padded base64 alphabet and lowerCamelCase JSON names.
//
// # Error Taxonomy
//
// Every failure surfaced to callers is an *Error tagged with an ErrorKind:
//
//   - KindInvalidApiKey: the key service rejected the api key
//   - KindInvalidDecryptMethod: neither an api key nor a keychain was supplied
//   - KindMissingAuxiliaryData: a named piece of contextual data was absent
//   - KindParse: bytes did not match the expected record layout
//   - KindSerialization: JSON (de)serialization of a wire object failed
//   - KindNetwork: the key retrieval exchange failed
//   - KindIO: the underlying byte source failed
//   - KindEncoding: a base64 field could not be decoded
//
// Each kind has a sentinel (ErrParse, ErrNetwork, ...) so callers can write
// errors.Is(err, interfaces.ErrParse).
//
// # Storage Interfaces
//
// StorageBackend caches keychain responses by KeychainID, the SHA-256 of the
// request that produced them, across file, S3 and Vault backends.
// StorageBackendFactory creates backends from URIs.
package interfaces
