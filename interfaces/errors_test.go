package interfaces

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		kind     ErrorKind
		sentinel error
		message  string
	}{
		{"invalid api key", NewInvalidApiKeyError(), KindInvalidApiKey, ErrInvalidApiKey, "invalid api key"},
		{"invalid decrypt method", NewInvalidDecryptMethodError(), KindInvalidDecryptMethod, ErrInvalidDecryptMethod, "api key or keychain is required"},
		{"missing auxiliary data", NewMissingAuxiliaryDataError("keychain"), KindMissingAuxiliaryData, ErrMissingAuxiliaryData, "missing auxiliary data: keychain"},
		{"parse", NewParseError("custom record", io.ErrUnexpectedEOF), KindParse, ErrParse, "parse error: custom record: unexpected EOF"},
		{"parsef", NewParseErrorf("need %d bytes", 18), KindParse, ErrParse, "parse error: need 18 bytes"},
		{"serialization", NewSerializationError("response", cause), KindSerialization, ErrSerialization, "serialization error: response: boom"},
		{"network", NewNetworkError("", cause), KindNetwork, ErrNetwork, "network error: boom"},
		{"io", NewIOError("read log", cause), KindIO, ErrIO, "io error: read log: boom"},
		{"encoding", NewEncodingError("aesIv", cause), KindEncoding, ErrEncoding, "base64 decode error: aesIv: boom"},
	}

	sentinels := []error{
		ErrInvalidApiKey, ErrInvalidDecryptMethod, ErrMissingAuxiliaryData, ErrParse,
		ErrSerialization, ErrNetwork, ErrIO, ErrEncoding,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())

			for _, s := range sentinels {
				assert.Equal(t, s == tt.sentinel, errors.Is(tt.err, s), "sentinel %v", s)
			}

			wrapped := fmt.Errorf("could not decode: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(wrapped))
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := NewIOError("read", io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, ErrIO)
	assert.Equal(t, KindUnknown, KindOf(io.EOF))
}
