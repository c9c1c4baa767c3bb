package record

import (
	"encoding/binary"
	"math"
	"time"
)

// CustomWidth is the encoded size of a Custom record in bytes.
const CustomWidth = 18

// Custom is the app-level custom record: horizontal speed, distance
// travelled and the time the record was last updated.
//
// Layout (little-endian):
//
//	[camera_shoot u8][video_shoot u8][h_speed f32][distance f32][update_ms i64]
//
// The two shoot flags are consumed and dropped.
type Custom struct {
	HSpeed          float32   `json:"hSpeed"`
	Distance        float32   `json:"distance"`
	UpdateTimestamp time.Time `json:"updateTimeStamp"`
}

// DecodeCustom reads one Custom record from r. On failure the cursor is left
// where it started.
func DecodeCustom(r *Reader) (Custom, error) {
	start := r.Offset()
	if err := r.Require(CustomWidth); err != nil {
		return Custom{}, err
	}

	c, err := decodeCustom(r)
	if err != nil {
		r.seek(start)
		return Custom{}, err
	}
	return c, nil
}

func decodeCustom(r *Reader) (Custom, error) {
	// camera_shoot, video_shoot
	if err := r.Skip(2); err != nil {
		return Custom{}, err
	}

	hSpeed, err := r.Float32()
	if err != nil {
		return Custom{}, err
	}
	distance, err := r.Float32()
	if err != nil {
		return Custom{}, err
	}
	ms, err := r.Int64()
	if err != nil {
		return Custom{}, err
	}
	ts, err := TimestampFromMillis(ms)
	if err != nil {
		return Custom{}, err
	}

	return Custom{HSpeed: hSpeed, Distance: distance, UpdateTimestamp: ts}, nil
}

// ParseCustom decodes a Custom record from the start of data. Bytes past
// CustomWidth are ignored.
func ParseCustom(data []byte) (Custom, error) {
	return DecodeCustom(NewReader(data))
}

// AppendBinary appends the encoded record to b. The shoot flags are written
// as zero. On error b is returned unchanged.
func (c Custom) AppendBinary(b []byte) ([]byte, error) {
	ms, err := MillisFromTimestamp(c.UpdateTimestamp)
	if err != nil {
		return b, err
	}

	b = append(b, 0, 0)
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(c.HSpeed))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(c.Distance))
	b = binary.LittleEndian.AppendUint64(b, uint64(ms))
	return b, nil
}

// MarshalBinary returns the 18-byte encoding of c.
func (c Custom) MarshalBinary() ([]byte, error) {
	return c.AppendBinary(make([]byte, 0, CustomWidth))
}

// UnmarshalBinary decodes a Custom record from the start of data.
func (c *Custom) UnmarshalBinary(data []byte) error {
	decoded, err := ParseCustom(data)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}
