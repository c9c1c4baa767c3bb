package record

import (
	"time"

	"github.com/ruteri/djilog-keychain/interfaces"
)

// Representable instants, from -262143-01-01T00:00:00Z to
// 262142-12-31T23:59:59.999999999Z, in Unix seconds.
const (
	minUnixSeconds int64 = -8334601315200
	maxUnixSeconds int64 = 8210266876799
)

// SplitMillis splits milliseconds since the Unix epoch into whole seconds
// and a nanosecond remainder. Division floors, so nanos is always in
// [0, 1e9) and seconds*1000 + nanos/1e6 == ms for every ms.
func SplitMillis(ms int64) (seconds int64, nanos int64) {
	seconds = ms / 1000
	rem := ms % 1000
	if rem < 0 {
		seconds--
		rem += 1000
	}
	return seconds, rem * int64(time.Millisecond)
}

// TimestampFromMillis converts milliseconds since the Unix epoch to a UTC
// time. Values outside the representable calendar range fail with a parse
// error instead of being clamped.
func TimestampFromMillis(ms int64) (time.Time, error) {
	seconds, nanos := SplitMillis(ms)
	if seconds < minUnixSeconds || seconds > maxUnixSeconds {
		return time.Time{}, interfaces.NewParseErrorf("timestamp %d ms out of range", ms)
	}
	return time.Unix(seconds, nanos).UTC(), nil
}

// MillisFromTimestamp is the inverse of TimestampFromMillis, truncating
// below one millisecond. Instants TimestampFromMillis cannot produce fail
// with a parse error.
func MillisFromTimestamp(t time.Time) (int64, error) {
	seconds := t.Unix()
	if seconds < minUnixSeconds || seconds > maxUnixSeconds {
		return 0, interfaces.NewParseErrorf("timestamp %s out of range", t.UTC().Format(time.RFC3339))
	}
	return t.UnixMilli(), nil
}
