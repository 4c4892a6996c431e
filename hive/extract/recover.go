package extract

import (
	"bytes"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/forensicFODs/registry-analysis-tools/hive"
	"github.com/forensicFODs/registry-analysis-tools/internal/buf"
	"github.com/forensicFODs/registry-analysis-tools/internal/format"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// Window radii and read lengths, in bytes.
const (
	timestampRadius = 100
	sizeRadius      = 50
	pathLookback    = 500
	pathReadLen     = 500
	contextMinLen   = 4
	sha1Len         = 20
)

var (
	versionRe  = regexp.MustCompile(`\d+\.\d+(\.\d+)?(\.\d+)?`)
	userSIDRe  = regexp.MustCompile(`S-1-5-21-\d+-\d+-\d+-\d+`)
	sidRe      = regexp.MustCompile(`S-1-5(-\d+)+`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

	publisherLabels = []string{"Publisher", "Company", "Vendor", "Manufacturer"}
)

// timestampNear returns the first FILETIME in [off-radius, off+radius), on
// 8-byte aligned offsets, whose year lies inside w.
func (s *Scanner) timestampNear(off, radius int, w types.YearWindow) string {
	var out string
	buf.Window(s.buf.Len(), off, radius, 8, 8, func(at int) bool {
		t, ok := s.buf.ReadFiletime(at)
		if ok && w.Contains(t.Year()) {
			out = format.FormatTimestamp(t)
			return false
		}
		return true
	})
	return out
}

// nearbyTimestamp is timestampNear with the default radius and window.
func (s *Scanner) nearbyTimestamp(off int) string {
	return s.timestampNear(off, timestampRadius, types.DefaultYears)
}

// rawFiletimeNear accepts the first aligned QWORD whose raw value lies in
// [lo, hi], without a calendar-year check.
func (s *Scanner) rawFiletimeNear(off, radius int, lo, hi uint64) string {
	var out string
	buf.Window(s.buf.Len(), off, radius, 8, 8, func(at int) bool {
		v := s.buf.ReadU64LE(at)
		if v < lo || v > hi {
			return true
		}
		if t, ok := hive.FiletimeToTime(v); ok {
			out = format.FormatTimestamp(t)
			return false
		}
		return true
	})
	return out
}

// dwordNear returns the first 4-byte aligned DWORD in [off-radius, off+radius)
// that accept admits.
func (s *Scanner) dwordNear(off, radius int, accept func(uint32) bool) (uint32, bool) {
	var (
		out   uint32
		found bool
	)
	buf.Window(s.buf.Len(), off, radius, 4, 4, func(at int) bool {
		v := s.buf.ReadU32LE(at)
		if accept(v) {
			out, found = v, true
			return false
		}
		return true
	})
	return out, found
}

func inRange(lo, hi uint32) func(uint32) bool {
	return func(v uint32) bool { return v >= lo && v <= hi }
}

// contextStrings returns the printable runs around off.
func (s *Scanner) contextStrings(off, radius int) []string {
	return s.buf.StringsAround(off, radius, contextMinLen)
}

// stripCellMarkers cuts p at the first cell signature (vk, nk, lh, sk, any
// case) that is not followed by a letter. Such markers are what trails a
// string read past the end of its cell. The "nk" ending a .lnk extension is
// kept.
func stripCellMarkers(p string) string {
	lower := strings.ToLower(p)
	for i := 0; i+2 <= len(lower); i++ {
		pair := lower[i : i+2]
		match := false
		for _, m := range format.CellMarkers {
			if pair == m {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		// The tail of a .lnk extension.
		if pair == "nk" && i >= 2 && lower[i-2:i] == ".l" {
			continue
		}
		if i+2 < len(lower) && isASCIILetter(lower[i+2]) {
			continue
		}
		return p[:i]
	}
	return p
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func asciiOnly(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x20 && s[i] <= 0x7e {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// cleanDrivePath cuts raw at the character before the first `:\` and removes
// trailing cell noise. ok is false when raw has no drive marker after its
// first character.
func cleanDrivePath(raw string) (string, bool) {
	idx := strings.Index(raw, `:\`)
	if idx <= 0 {
		return "", false
	}
	p := asciiOnly(raw[idx-1:])
	p = stripCellMarkers(p)
	if i := strings.IndexByte(p, ';'); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSpace(p), true
}

// pathAt recovers a drive-letter path that ends at or after off by walking
// backwards: first over ASCII starts one byte at a time, then over UTF-16LE
// starts on even offsets.
func (s *Scanner) pathAt(off int) string {
	if p := s.asciiPathAt(off); p != "" {
		return p
	}
	for at := buf.AlignDown(off, 2); at > off-pathLookback; at -= 2 {
		if at < 0 {
			break
		}
		raw := s.buf.ReadUTF16LE(at, pathReadLen)
		if len(raw) <= 5 {
			continue
		}
		if p, ok := cleanDrivePath(raw); ok {
			return p
		}
	}
	return ""
}

func (s *Scanner) asciiPathAt(off int) string {
	if !s.hasDriveMarkerBytes(off) {
		return ""
	}
	for back := 0; back < pathLookback; back++ {
		at := off - back
		if at < 0 {
			break
		}
		raw := s.buf.ReadASCII(at, pathReadLen)
		if len(raw) <= 5 {
			continue
		}
		if p, ok := cleanDrivePath(raw); ok {
			return p
		}
	}
	return ""
}

// hasDriveMarkerBytes reports whether both ':' and '\' occur in the bytes an
// ASCII walk from off could read.
func (s *Scanner) hasDriveMarkerBytes(off int) bool {
	region, _ := buf.Clamp(s.buf.Bytes(), off-pathLookback+1, pathLookback-1+pathReadLen)
	return bytes.IndexByte(region, ':') >= 0 && bytes.IndexByte(region, '\\') >= 0
}

// shimPath prefers the shortest plausible UTF-16LE path behind off and falls
// back to the ASCII walk.
func (s *Scanner) shimPath(off int) string {
	best := ""
	for at := buf.AlignDown(off, 2); at > off-pathLookback; at -= 2 {
		if at < 0 {
			break
		}
		raw := s.buf.ReadUTF16LE(at, format.MaxPathBytes)
		if !strings.Contains(raw, `:\`) {
			continue
		}
		p, ok := cleanDrivePath(raw)
		if !ok || len(p) <= 5 || !strings.Contains(p, `\`) {
			continue
		}
		if best == "" || len(p) < len(best) {
			best = p
		}
	}
	if best != "" {
		return best
	}
	return s.asciiPathAt(off)
}

// sha1Near returns the first 20-byte run in [off-100, off+100) that is not
// all zero and whose hex form uses more than four distinct digits.
func (s *Scanner) sha1Near(off int) string {
	data := s.buf.Bytes()
	for at := max(off-timestampRadius, 0); at < off+timestampRadius; at++ {
		raw, ok := buf.Slice(data, at, sha1Len)
		if !ok {
			break
		}
		if allZero(raw) {
			continue
		}
		h := strings.ToUpper(hex.EncodeToString(raw))
		if distinctRunes(h) > 4 {
			return h
		}
	}
	return ""
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func distinctRunes(s string) int {
	var seen [256]bool
	n := 0
	for i := 0; i < len(s); i++ {
		if !seen[s[i]] {
			seen[s[i]] = true
			n++
		}
	}
	return n
}

// publisherNear returns the text following the first publisher-like label
// found in a UTF-16LE read within ±500 bytes of off.
func (s *Scanner) publisherNear(off int) string {
	const radius, readLen = 500, 200
	region, _ := buf.Clamp(s.buf.Bytes(), off-radius, 2*radius+readLen)
	for _, label := range publisherLabels {
		if !bytes.Contains(region, hive.EncodeUTF16(label)) {
			continue
		}
		for at := max(off-radius, 0); at < off+radius; at++ {
			text := s.buf.ReadUTF16LE(at, readLen)
			i := strings.Index(text, label)
			if i < 0 {
				continue
			}
			v := strings.TrimSpace(asciiOnly(text[i+len(label):]))
			if len(v) > 0 && len(v) < 100 {
				return v
			}
		}
	}
	return ""
}

// versionNear returns the first dotted version number in a UTF-16LE read
// within ±200 bytes of off.
func (s *Scanner) versionNear(off int) string {
	const radius, readLen = 200, 50
	for at := max(off-radius, 0); at < off+radius; at++ {
		if m := versionRe.FindString(s.buf.ReadUTF16LE(at, readLen)); m != "" {
			return m
		}
	}
	return ""
}

// usernameNear returns the first UTF-16LE account-like name within ±200
// bytes of off.
func (s *Scanner) usernameNear(off int) string {
	const radius, readLen = 200, 100
	found := ""
	buf.Window(s.buf.Len(), off, radius, 2, readLen, func(at int) bool {
		name := s.buf.ReadUTF16LE(at, readLen)
		if len(name) >= 3 && len(name) <= 20 && usernameRe.MatchString(name) {
			found = name
			return false
		}
		return true
	})
	return found
}

// userSIDNear returns the first domain user SID readable as ASCII within
// ±100 bytes of off.
func (s *Scanner) userSIDNear(off int) string {
	const radius, readLen = 100, 100
	region, _ := buf.Clamp(s.buf.Bytes(), off-radius, 2*radius+readLen)
	if !bytes.Contains(region, []byte("S-1-5-21-")) {
		return ""
	}
	for at := max(off-radius, 0); at < off+radius; at++ {
		if m := userSIDRe.FindString(s.buf.ReadASCII(at, readLen)); m != "" {
			return m
		}
	}
	return ""
}

// readForward reads a string starting exactly at off, ASCII or UTF-16LE,
// clamped to the end of the buffer.
func (s *Scanner) readForward(off, n int, utf16 bool) string {
	if rest := s.buf.Len() - off; rest < n {
		n = rest
	}
	if n <= 0 {
		return ""
	}
	if utf16 {
		return s.buf.ReadUTF16LE(off, n&^1)
	}
	return s.buf.ReadASCII(off, n)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `\/`); i >= 0 {
		return p[i+1:]
	}
	return p
}
