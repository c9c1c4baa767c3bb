/*
Package api defines the wire types exchanged with the flight-record key
service and the configuration of the HTTP server that can issue keys.

A client reads the encrypted keychains embedded in a flight log, wraps them
in a KeychainsRequest and posts it with its api key. The service answers with
a KeychainsResponse whose Data holds one []interfaces.KeychainEntry per
requested keychain. ResultInfo.Code is zero on success.

The HTTP client, the server handler and the caching provider live in the
keychainapi subpackage.
*/
package api
