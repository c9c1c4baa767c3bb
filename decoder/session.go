package decoder

import (
	"errors"
	"log/slog"

	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/ruteri/djilog-keychain/keychain"
	"github.com/ruteri/djilog-keychain/record"
)

// Policy selects what DecodeCustoms does with a record that fails to decode.
type Policy int

const (
	// AbortOnError stops at the first failing record and returns its error.
	AbortOnError Policy = iota
	// SkipInvalid steps over a failing record by its width and keeps going.
	SkipInvalid
)

func (p Policy) String() string {
	switch p {
	case AbortOnError:
		return "abort"
	case SkipInvalid:
		return "skip"
	default:
		return "unknown"
	}
}

// Session decodes the records of one flight log. It owns its keychain,
// which may be nil when the log holds only plaintext records.
type Session struct {
	keychain *keychain.Keychain
	log      *slog.Logger
}

func NewSession(kc *keychain.Keychain, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{keychain: kc, log: log}
}

// Keychain returns the keychain the session decrypts with.
func (s *Session) Keychain() *keychain.Keychain {
	return s.keychain
}

// Decrypt returns the plaintext of a record payload encrypted under fp.
func (s *Session) Decrypt(fp interfaces.FeaturePoint, ciphertext []byte) ([]byte, error) {
	if s.keychain == nil {
		return nil, interfaces.NewInvalidDecryptMethodError()
	}
	return s.keychain.Decrypt(fp, ciphertext)
}

// DecodeCustom decodes a plaintext Custom record.
func (s *Session) DecodeCustom(data []byte) (record.Custom, error) {
	return record.ParseCustom(data)
}

// DecodeEncryptedCustom decrypts a Custom record payload and decodes it.
func (s *Session) DecodeEncryptedCustom(fp interfaces.FeaturePoint, ciphertext []byte) (record.Custom, error) {
	plaintext, err := s.Decrypt(fp, ciphertext)
	if err != nil {
		return record.Custom{}, err
	}
	return record.ParseCustom(plaintext)
}

// DecodeCustoms decodes consecutive Custom records from data. Under
// SkipInvalid the returned error is nil and failing records are logged;
// a trailing fragment shorter than one record counts as a failure.
func (s *Session) DecodeCustoms(data []byte, policy Policy) ([]record.Custom, error) {
	r := record.NewReader(data)
	records := make([]record.Custom, 0, len(data)/record.CustomWidth)

	for r.Remaining() > 0 {
		offset := r.Offset()
		c, err := record.DecodeCustom(r)
		if err == nil {
			records = append(records, c)
			continue
		}

		if policy == AbortOnError {
			return records, err
		}

		s.log.Warn("skipping invalid custom record", "offset", offset, "err", err)
		if errSkip := r.Skip(min(record.CustomWidth, r.Remaining())); errSkip != nil {
			return records, errors.Join(err, errSkip)
		}
	}

	return records, nil
}
