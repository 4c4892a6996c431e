// Package testutil builds synthetic hive buffers for tests.
//
// Real hives are large and carry personal data, so tests lay out just the
// bytes an extractor looks for: a path here, a FILETIME a few bytes before
// it, a DWORD after. Everything else stays zero.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/forensicFODs/registry-analysis-tools/internal/format"
)

// DefaultSize is the buffer size NewHive uses when given zero.
const DefaultSize = 64 << 10

// HiveBuilder writes values at fixed offsets into a zeroed buffer.
type HiveBuilder struct {
	data []byte
}

// NewHive returns a builder over size zero bytes. When regf is true the
// buffer starts with the regf signature.
func NewHive(size int, regf bool) *HiveBuilder {
	if size <= 0 {
		size = DefaultSize
	}
	h := &HiveBuilder{data: make([]byte, size)}
	if regf {
		copy(h.data, format.REGFSignature)
	}
	return h
}

// Bytes returns the buffer.
func (h *HiveBuilder) Bytes() []byte { return h.data }

// ASCII writes s at off.
func (h *HiveBuilder) ASCII(off int, s string) *HiveBuilder {
	copy(h.data[off:], s)
	return h
}

// UTF16 writes s as UTF-16LE at off and returns the builder.
func (h *HiveBuilder) UTF16(off int, s string) *HiveBuilder {
	copy(h.data[off:], EncodeUTF16(s))
	return h
}

// U32 writes a little-endian DWORD at off.
func (h *HiveBuilder) U32(off int, v uint32) *HiveBuilder {
	binary.LittleEndian.PutUint32(h.data[off:], v)
	return h
}

// U64 writes a little-endian QWORD at off.
func (h *HiveBuilder) U64(off int, v uint64) *HiveBuilder {
	binary.LittleEndian.PutUint64(h.data[off:], v)
	return h
}

// Filetime writes t as a FILETIME at off.
func (h *HiveBuilder) Filetime(off int, t time.Time) *HiveBuilder {
	return h.U64(off, format.TimeToFiletime(t))
}

// Raw copies b to off.
func (h *HiveBuilder) Raw(off int, b []byte) *HiveBuilder {
	copy(h.data[off:], b)
	return h
}

// EncodeUTF16 returns s as UTF-16LE without a BOM.
func EncodeUTF16(s string) []byte {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return out
}

// MustTime parses a timestamp in the canonical layout, in UTC.
func MustTime(s string) time.Time {
	t, ok := format.ParseTimestamp(s)
	if !ok {
		panic("testutil: bad timestamp " + s)
	}
	return t
}

// WriteHiveFile writes data to name inside a per-test temp dir and returns
// the path.
func WriteHiveFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
