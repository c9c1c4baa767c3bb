// Package keychainapi implements both ends of the flight-record keychain
// exchange.
//
// Client posts an api.KeychainsRequest to the key service with the caller's
// api key in the Api-Key header and maps failures onto the interfaces error
// kinds. Provider puts a storage.MultiStorageBackend (or any
// interfaces.StorageBackend) in front of a client so each request is paid
// for once. Handler is the server side: it authorizes api keys and asks an
// interfaces.KeyIssuer (see package kms) to open each encoded entry.
//
// Routes:
//
//	POST /openapi/v1/flight-records/keychains
package keychainapi
