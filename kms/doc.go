// Package kms issues flight-record key material.
//
// Flight logs carry the IV and AES key of each encrypted feature point in
// sealed form (interfaces.EncodedKeychainEntry). An issuer holds the secret
// those entries were sealed under and turns them back into
// interfaces.KeychainEntry values.
//
// # SimpleIssuer
//
// Derives one AES-256-GCM sealing key per feature point from a master key
// with HKDF-SHA256. The feature point name is also bound as additional
// authenticated data, so an entry relabelled with another feature point
// fails to open.
//
// # ShamirIssuer
//
// Wraps a SimpleIssuer whose master key is split with Shamir's Secret
// Sharing. It starts locked and unlocks once a threshold of shares, each
// signed by a registered administrator key (ECDSA or Ed25519), has been
// submitted. SplitMasterKey and CombineMasterKeyShares expose the split and
// combine steps for offline tooling.
package kms
