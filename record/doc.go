// Package record decodes fixed-width flight-log records from their
// little-endian byte layout.
//
// Every record type reads through a Reader, which refuses to run past the
// end of its input. A decoder consumes exactly its declared width on success
// and leaves the cursor untouched on failure, so the caller decides whether
// to abort the stream or skip forward.
//
// Timestamps are stored as signed milliseconds since the Unix epoch and are
// rebuilt with flooring division; see SplitMillis and TimestampFromMillis.
package record
