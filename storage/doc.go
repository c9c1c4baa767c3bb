// Package storage caches keychains fetched from the key service.
//
// A keychain request is expensive (a network round trip with an api key) and
// its answer never changes, so responses are stored under the request's
// interfaces.KeychainID and served from the cache on the next run.
//
// Backends:
//
//   - File system storage for local use
//   - S3-compatible object storage (objects written private)
//   - HashiCorp Vault KV v2 with token authentication
//   - MultiStorageBackend, which writes to every available backend and reads
//     from the first that has the entry
//
// # Storage URI Format
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Examples:
//
//	file:///var/lib/djilog/keychains
//	s3://ACCESS_KEY:SECRET_KEY@bucket/keychains?region=eu-west-1
//	s3://bucket/keychains?endpoint=http://localhost:9000&path_style=true
//	vault://TOKEN@vault.example.com:8200/secret/djilog/keychains
//
// Cached values are produced by EncodeKeychains and read back with
// DecodeKeychains.
package storage
