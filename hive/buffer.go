package hive

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/forensicFODs/registry-analysis-tools/hive/searchcache"
	"github.com/forensicFODs/registry-analysis-tools/internal/buf"
	"github.com/forensicFODs/registry-analysis-tools/internal/format"
)

// Buffer is an immutable raw hive with an optional origin file name.
type Buffer struct {
	data  []byte
	name  string
	cache *searchcache.Cache
}

// New wraps data. name is the origin file name (or path) and may be empty.
// The caller must not modify data afterwards.
func New(data []byte, name string) *Buffer {
	return &Buffer{
		data:  data,
		name:  name,
		cache: searchcache.New(searchcache.DefaultCapacity),
	}
}

// Len returns the buffer size in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the underlying buffer. It must be treated as read-only.
func (b *Buffer) Bytes() []byte { return b.data }

// Name returns the origin file name given to New.
func (b *Buffer) Name() string { return b.name }

// IsRegf reports whether the buffer starts with the regf signature. The
// scanner never requires it.
func (b *Buffer) IsRegf() bool {
	return format.CheckSignature(b.data) == nil
}

// ReadU16LE returns the little-endian uint16 at off, or 0 when out of bounds.
func (b *Buffer) ReadU16LE(off int) uint16 {
	s, ok := buf.Slice(b.data, off, 2)
	if !ok {
		return 0
	}
	return buf.U16LE(s)
}

// ReadU32LE returns the little-endian uint32 at off, or 0 when out of bounds.
func (b *Buffer) ReadU32LE(off int) uint32 {
	return buf.U32At(b.data, off)
}

// ReadI32LE returns the little-endian int32 at off, or 0 when out of bounds.
func (b *Buffer) ReadI32LE(off int) int32 {
	s, ok := buf.Slice(b.data, off, 4)
	if !ok {
		return 0
	}
	return buf.I32LE(s)
}

// ReadU64LE returns the little-endian uint64 at off, or 0 when out of bounds.
func (b *Buffer) ReadU64LE(off int) uint64 {
	return buf.U64At(b.data, off)
}

// ReadFiletime decodes the FILETIME at off. ok is false when the read is out
// of bounds or the value is not representable.
func (b *Buffer) ReadFiletime(off int) (time.Time, bool) {
	if !buf.Has(b.data, off, 8) {
		return time.Time{}, false
	}
	return FiletimeToTime(b.ReadU64LE(off))
}

// FiletimeToTime converts a FILETIME to UTC calendar time.
func FiletimeToTime(v uint64) (time.Time, bool) {
	return format.FiletimeToTime(v)
}

// ReadASCII returns the printable ASCII characters found in the maxLen bytes
// at off, up to the first NUL. It returns "" when off+maxLen exceeds the buffer.
func (b *Buffer) ReadASCII(off, maxLen int) string {
	s, ok := buf.Slice(b.data, off, maxLen)
	if !ok {
		return ""
	}
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return printableASCII(s)
}

// ReadUTF16LE decodes byteLen bytes at off as UTF-16LE, truncates at the first
// NUL code unit, and drops control characters and every code point at or
// above U+0300. The result is trimmed. It returns "" when out of bounds.
func (b *Buffer) ReadUTF16LE(off, byteLen int) string {
	s, ok := buf.Slice(b.data, off, byteLen)
	if !ok || len(s) == 0 {
		return ""
	}
	return decodeUTF16(s)
}

func decodeUTF16(s []byte) string {
	// A trailing odd byte decodes to U+FFFD, which the filter below drops.
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(s)
	if err != nil {
		return ""
	}
	text := string(decoded)
	if i := strings.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r >= 0x300 || isControl(r) || !strconv.IsPrint(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

func isControl(r rune) bool {
	return r <= 0x1f || (r >= 0x7f && r <= 0x9f)
}

func isPrintableByte(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}

func printableASCII(s []byte) string {
	for _, c := range s {
		if !isPrintableByte(c) {
			out := make([]byte, 0, len(s))
			for _, c := range s {
				if isPrintableByte(c) {
					out = append(out, c)
				}
			}
			return string(out)
		}
	}
	return string(s)
}

// Search returns the offsets of every non-overlapping occurrence of pattern,
// in ascending order. An empty pattern matches nothing. The returned slice is
// shared with the search cache and must not be modified.
func (b *Buffer) Search(pattern []byte) []int {
	if len(pattern) == 0 {
		return nil
	}
	return b.cache.GetOrCompute(pattern, b.scan)
}

func (b *Buffer) scan(pattern []byte) []int {
	var offsets []int
	pos := 0
	for pos <= len(b.data)-len(pattern) {
		i := bytes.Index(b.data[pos:], pattern)
		if i < 0 {
			break
		}
		offsets = append(offsets, pos+i)
		pos += i + len(pattern)
	}
	return offsets
}

// SearchString searches for the ASCII bytes of s.
func (b *Buffer) SearchString(s string) []int {
	return b.Search([]byte(s))
}

// SearchUTF16 searches for s encoded as UTF-16LE.
func (b *Buffer) SearchUTF16(s string) []int {
	return b.Search(EncodeUTF16(s))
}

// Contains reports whether pattern occurs anywhere in the buffer.
func (b *Buffer) Contains(pattern []byte) bool {
	return len(b.Search(pattern)) > 0
}

// SearchStats reports search cache hits and misses.
func (b *Buffer) SearchStats() (hits, misses uint64) {
	return b.cache.Stats()
}

// EncodeUTF16 returns s encoded as UTF-16LE without a BOM.
func EncodeUTF16(s string) []byte {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return out
}

// StringsAround returns the printable ASCII runs of at least minLen bytes that
// are terminated inside [off-radius, off+radius). Runs are returned in buffer
// order and may repeat. A run still open at the end of the window is dropped.
func (b *Buffer) StringsAround(off, radius, minLen int) []string {
	window, _ := buf.Clamp(b.data, off-radius, 2*radius)
	var (
		out   []string
		start = -1
	)
	for i, c := range window {
		if isPrintableByte(c) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minLen {
			out = append(out, string(window[start:i]))
		}
		start = -1
	}
	return out
}
