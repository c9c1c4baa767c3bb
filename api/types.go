package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ruteri/djilog-keychain/interfaces"
)

// Department identifies the app platform that produced a flight log. The
// key service scopes issued key material by it.
type Department uint8

const (
	DepartmentSDK      Department = 1
	DepartmentDJIGO    Department = 2
	DepartmentDJIFly   Department = 3
	DepartmentAgri     Department = 4
	DepartmentTerra    Department = 5
	DepartmentDJIGlass Department = 6
	DepartmentDJIPilot Department = 7
	DepartmentGSPro    Department = 8
)

// KeychainsRequest asks the key service to decrypt the key material of one
// or more keychains. Each inner slice is the set of encoded entries found in
// one part of a flight log.
type KeychainsRequest struct {
	Version    uint16                              `json:"version"`
	Department Department                          `json:"department"`
	Keychains  [][]interfaces.EncodedKeychainEntry `json:"keychainsArray"`
}

// RequestID identifies a request by the SHA-256 of its JSON encoding. Equal
// requests always produce equal IDs, so the ID doubles as a cache key.
func (r *KeychainsRequest) RequestID() (interfaces.KeychainID, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return interfaces.KeychainID{}, interfaces.NewSerializationError("keychains request", err)
	}
	return interfaces.ComputeKeychainID(data), nil
}

// Validate rejects requests the key service could never answer.
func (r *KeychainsRequest) Validate() error {
	if len(r.Keychains) == 0 {
		return fmt.Errorf("request has no keychains")
	}
	for i, group := range r.Keychains {
		for _, entry := range group {
			if !entry.FeaturePoint.Valid() {
				return fmt.Errorf("keychain %d: invalid feature point %d", i, int(entry.FeaturePoint))
			}
		}
	}
	return nil
}

// ResultInfo is the status block of every key service response.
type ResultInfo struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// ResultCodeOK marks a successful response.
const ResultCodeOK = 0

// KeychainsResponse carries the decrypted key material, one inner slice per
// requested keychain, in request order.
type KeychainsResponse struct {
	Result ResultInfo                   `json:"result"`
	Data   [][]interfaces.KeychainEntry `json:"data"`
}

// KeychainProvider fetches decrypted keychains from a key service.
type KeychainProvider interface {
	FetchKeychains(ctx context.Context, apiKey string, req *KeychainsRequest) ([][]interfaces.KeychainEntry, error)
}
