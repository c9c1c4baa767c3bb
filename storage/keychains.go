package storage

import (
	"encoding/json"

	"github.com/ruteri/djilog-keychain/interfaces"
)

// EncodeKeychains serializes fetched keychains for caching.
func EncodeKeychains(keychains [][]interfaces.KeychainEntry) ([]byte, error) {
	data, err := json.Marshal(keychains)
	if err != nil {
		return nil, interfaces.NewSerializationError("encode cached keychains", err)
	}
	return data, nil
}

// DecodeKeychains parses data written by EncodeKeychains.
func DecodeKeychains(data []byte) ([][]interfaces.KeychainEntry, error) {
	var keychains [][]interfaces.KeychainEntry
	if err := json.Unmarshal(data, &keychains); err != nil {
		return nil, interfaces.NewSerializationError("decode cached keychains", err)
	}
	return keychains, nil
}
