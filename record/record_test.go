package record

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customBytes(cameraShoot, videoShoot byte, hSpeed, distance float32, ms int64) []byte {
	b := []byte{cameraShoot, videoShoot}
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(hSpeed))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(distance))
	return binary.LittleEndian.AppendUint64(b, uint64(ms))
}

func TestParseCustom(t *testing.T) {
	data := customBytes(0, 0, 12.5, 3.0, 1700000000000)
	require.Len(t, data, CustomWidth)

	c, err := ParseCustom(data)
	require.NoError(t, err)
	assert.Equal(t, float32(12.5), c.HSpeed)
	assert.Equal(t, float32(3.0), c.Distance)
	assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), c.UpdateTimestamp)
	assert.Equal(t, int64(1700000000), c.UpdateTimestamp.Unix())
	assert.Equal(t, 0, c.UpdateTimestamp.Nanosecond())

	again, err := ParseCustom(data)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestParseCustomIgnoresShootFlags(t *testing.T) {
	plain, err := ParseCustom(customBytes(0, 0, 1.25, 2.5, 42))
	require.NoError(t, err)
	flagged, err := ParseCustom(customBytes(1, 0xff, 1.25, 2.5, 42))
	require.NoError(t, err)
	assert.Equal(t, plain, flagged)
}

func TestDecodeCustomErrors(t *testing.T) {
	valid := customBytes(0, 0, 12.5, 3.0, 1700000000000)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "Empty", data: nil},
		{name: "One byte short", data: valid[:CustomWidth-1]},
		{name: "Timestamp below range", data: customBytes(0, 0, 1, 1, math.MinInt64)},
		{name: "Timestamp above range", data: customBytes(0, 0, 1, 1, math.MaxInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			_, err := DecodeCustom(r)
			require.ErrorIs(t, err, interfaces.ErrParse)
			assert.Equal(t, interfaces.KindParse, interfaces.KindOf(err))
			assert.Equal(t, 0, r.Offset())
		})
	}
}

func TestDecodeCustomSequence(t *testing.T) {
	data := append(customBytes(0, 0, 1, 2, 1000), customBytes(0, 0, 3, 4, -1500)...)
	data = append(data, 0xaa)

	r := NewReader(data)
	first, err := DecodeCustom(r)
	require.NoError(t, err)
	assert.Equal(t, CustomWidth, r.Offset())
	assert.Equal(t, float32(1), first.HSpeed)

	second, err := DecodeCustom(r)
	require.NoError(t, err)
	assert.Equal(t, 2*CustomWidth, r.Offset())
	assert.Equal(t, time.Unix(-2, 500_000_000).UTC(), second.UpdateTimestamp)

	_, err = DecodeCustom(r)
	require.ErrorIs(t, err, interfaces.ErrParse)
	assert.Equal(t, 1, r.Remaining())
}

func TestCustomBinaryRoundTrip(t *testing.T) {
	c := Custom{
		HSpeed:          -7.75,
		Distance:        1024.5,
		UpdateTimestamp: time.UnixMilli(-86_400_001).UTC(),
	}

	data, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, CustomWidth)

	var decoded Custom
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, c, decoded)
}

func TestCustomMarshalRejectsUnrepresentableTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
	}{
		{name: "Past upper bound", ts: time.Unix(maxUnixSeconds+1, 0)},
		{name: "Before lower bound", ts: time.Unix(minUnixSeconds-1, 999_999_999)},
		{name: "Beyond int64 millis", ts: time.Unix(math.MaxInt64/1000+1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Custom{HSpeed: 1, Distance: 2, UpdateTimestamp: tt.ts}

			_, err := c.MarshalBinary()
			require.ErrorIs(t, err, interfaces.ErrParse)

			prefix := []byte{0xFF}
			out, err := c.AppendBinary(prefix)
			require.ErrorIs(t, err, interfaces.ErrParse)
			assert.Equal(t, prefix, out)
		})
	}

	edge := Custom{UpdateTimestamp: time.Unix(maxUnixSeconds, 999_000_000).UTC()}
	data, err := edge.MarshalBinary()
	require.NoError(t, err)
	var decoded Custom
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, edge, decoded)
}

func TestSplitMillis(t *testing.T) {
	tests := []struct {
		ms      int64
		seconds int64
		nanos   int64
	}{
		{ms: 0, seconds: 0, nanos: 0},
		{ms: 1700000000000, seconds: 1700000000, nanos: 0},
		{ms: 1700000000123, seconds: 1700000000, nanos: 123_000_000},
		{ms: -1, seconds: -1, nanos: 999_000_000},
		{ms: -1000, seconds: -1, nanos: 0},
		{ms: -1001, seconds: -2, nanos: 999_000_000},
		{ms: math.MaxInt64, seconds: math.MaxInt64 / 1000, nanos: 807_000_000},
		{ms: math.MinInt64, seconds: math.MinInt64/1000 - 1, nanos: 192_000_000},
	}

	for _, tt := range tests {
		seconds, nanos := SplitMillis(tt.ms)
		assert.Equal(t, tt.seconds, seconds, "seconds for %d", tt.ms)
		assert.Equal(t, tt.nanos, nanos, "nanos for %d", tt.ms)
		assert.GreaterOrEqual(t, nanos, int64(0))
		assert.Less(t, nanos, int64(time.Second))
	}
}

func TestSplitMillisReconstructs(t *testing.T) {
	values := []int64{0, 1, -1, 999, -999, 1000, -1000, 123456789, -123456789, 1 << 40, -(1 << 40)}
	for _, ms := range values {
		seconds, nanos := SplitMillis(ms)
		assert.Equal(t, ms, seconds*1000+nanos/1_000_000, "ms %d", ms)
	}
}

func TestTimestampFromMillisBounds(t *testing.T) {
	lowest := minUnixSeconds * 1000
	highest := maxUnixSeconds*1000 + 999

	ts, err := TimestampFromMillis(lowest)
	require.NoError(t, err)
	assert.Equal(t, -262143, ts.Year())
	assert.Equal(t, time.January, ts.Month())
	assert.Equal(t, 1, ts.Day())

	ts, err = TimestampFromMillis(highest)
	require.NoError(t, err)
	assert.Equal(t, 262142, ts.Year())
	assert.Equal(t, time.December, ts.Month())
	assert.Equal(t, 31, ts.Day())
	ms, err := MillisFromTimestamp(ts)
	require.NoError(t, err)
	assert.Equal(t, highest, ms)

	_, err = TimestampFromMillis(lowest - 1)
	require.ErrorIs(t, err, interfaces.ErrParse)
	_, err = TimestampFromMillis(highest + 1)
	require.ErrorIs(t, err, interfaces.ErrParse)
}

func TestReader(t *testing.T) {
	r := NewReader([]byte{0x07, 0x00, 0x00, 0x20, 0x41})

	v, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), v)

	_, err = r.Int64()
	require.ErrorIs(t, err, interfaces.ErrParse)
	assert.Equal(t, 1, r.Offset())

	f, err := r.Float32()
	require.NoError(t, err)
	assert.Equal(t, float32(10), f)
	assert.Equal(t, 0, r.Remaining())

	require.ErrorIs(t, r.Skip(1), interfaces.ErrParse)
	require.ErrorIs(t, r.Require(-1), interfaces.ErrParse)
	require.NoError(t, r.Skip(0))
}
