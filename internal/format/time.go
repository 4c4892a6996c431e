package format

import (
	"time"
)

const (
	filetimeEpochDelta  = 11644473600 // seconds between 1601-01-01 and 1970-01-01
	filetimeTicksPerSec = 10_000_000  // FILETIME units are 100ns

	// TimestampLayout is the single layout every recovered timestamp is
	// rendered in. It is zero-padded, so lexical order equals chronological order.
	TimestampLayout = "2006-01-02 15:04:05"

	minFiletimeYear = 1601
	maxFiletimeYear = 9999
)

// FiletimeToTime converts a Windows FILETIME value (100ns ticks since
// 1601-01-01 UTC) to time.Time. ok is false when the result falls outside the
// calendar range 1601..9999.
func FiletimeToTime(v uint64) (time.Time, bool) {
	sec := int64(v / filetimeTicksPerSec)
	nsec := int64(v%filetimeTicksPerSec) * 100
	t := time.Unix(sec-filetimeEpochDelta, nsec).UTC()
	if y := t.Year(); y < minFiletimeYear || y > maxFiletimeYear {
		return time.Time{}, false
	}
	return t, true
}

// TimeToFiletime converts a time.Time to a Windows FILETIME value.
// Times before 1601-01-01 clamp to zero.
func TimeToFiletime(t time.Time) uint64 {
	sec := t.Unix() + filetimeEpochDelta
	if sec < 0 {
		return 0
	}
	return uint64(sec)*filetimeTicksPerSec + uint64(t.Nanosecond()/100)
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a string produced by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
