package record

import (
	"encoding/binary"
	"math"

	"github.com/ruteri/djilog-keychain/interfaces"
)

// Reader is a little-endian cursor over a record byte slice. A read that
// would run past the end fails with a parse error and leaves the cursor
// where it was.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Offset returns the position of the cursor.
func (r *Reader) Offset() int {
	return r.off
}

// Require fails unless at least n bytes remain.
func (r *Reader) Require(n int) error {
	if n < 0 || r.Remaining() < n {
		return interfaces.NewParseErrorf("need %d bytes at offset %d, have %d", n, r.off, r.Remaining())
	}
	return nil
}

// Skip consumes n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if err := r.Require(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

func (r *Reader) next(n int) ([]byte, error) {
	if err := r.Require(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) Uint8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Float32() (float32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) Int64() (int64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// seek moves the cursor back to a previously observed offset.
func (r *Reader) seek(off int) {
	r.off = off
}
