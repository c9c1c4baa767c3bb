package interfaces

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure causes surfaced by the decoder,
// the keychain and the key service clients.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidApiKey
	KindInvalidDecryptMethod
	KindMissingAuxiliaryData
	KindParse
	KindSerialization
	KindNetwork
	KindIO
	KindEncoding
)

// Sentinel errors, one per kind. Match with errors.Is.
var (
	ErrInvalidApiKey        = errors.New("invalid api key")
	ErrInvalidDecryptMethod = errors.New("api key or keychain is required")
	ErrMissingAuxiliaryData = errors.New("missing auxiliary data")
	ErrParse                = errors.New("parse error")
	ErrSerialization        = errors.New("serialization error")
	ErrNetwork              = errors.New("network error")
	ErrIO                   = errors.New("io error")
	ErrEncoding             = errors.New("base64 decode error")
)

// Sentinel returns the sentinel error for the kind, or nil for KindUnknown.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindInvalidApiKey:
		return ErrInvalidApiKey
	case KindInvalidDecryptMethod:
		return ErrInvalidDecryptMethod
	case KindMissingAuxiliaryData:
		return ErrMissingAuxiliaryData
	case KindParse:
		return ErrParse
	case KindSerialization:
		return ErrSerialization
	case KindNetwork:
		return ErrNetwork
	case KindIO:
		return ErrIO
	case KindEncoding:
		return ErrEncoding
	default:
		return nil
	}
}

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidApiKey:
		return "invalid-api-key"
	case KindInvalidDecryptMethod:
		return "invalid-decrypt-method"
	case KindMissingAuxiliaryData:
		return "missing-auxiliary-data"
	case KindParse:
		return "parse"
	case KindSerialization:
		return "serialization"
	case KindNetwork:
		return "network"
	case KindIO:
		return "io"
	case KindEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

// Error is a failure tagged with its kind. Detail names the piece of data or
// the operation involved; Err is the underlying cause, if any.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "unknown error"
	if sentinel := e.Kind.Sentinel(); sentinel != nil {
		msg = sentinel.Error()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	sentinel := e.Kind.Sentinel()
	return sentinel != nil && target == sentinel
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func NewInvalidApiKeyError() error {
	return &Error{Kind: KindInvalidApiKey}
}

func NewInvalidDecryptMethodError() error {
	return &Error{Kind: KindInvalidDecryptMethod}
}

// NewMissingAuxiliaryDataError reports that the named piece of contextual
// data was required but absent.
func NewMissingAuxiliaryDataError(name string) error {
	return &Error{Kind: KindMissingAuxiliaryData, Detail: name}
}

func NewParseError(detail string, err error) error {
	return &Error{Kind: KindParse, Detail: detail, Err: err}
}

// NewParseErrorf builds a parse error without an underlying cause.
func NewParseErrorf(format string, args ...any) error {
	return &Error{Kind: KindParse, Detail: fmt.Sprintf(format, args...)}
}

func NewSerializationError(detail string, err error) error {
	return &Error{Kind: KindSerialization, Detail: detail, Err: err}
}

func NewNetworkError(detail string, err error) error {
	return &Error{Kind: KindNetwork, Detail: detail, Err: err}
}

func NewIOError(detail string, err error) error {
	return &Error{Kind: KindIO, Detail: detail, Err: err}
}

// NewEncodingError reports a base64 field that could not be decoded.
func NewEncodingError(field string, err error) error {
	return &Error{Kind: KindEncoding, Detail: field, Err: err}
}
