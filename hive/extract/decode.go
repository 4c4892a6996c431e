package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/forensicFODs/registry-analysis-tools/internal/format"
)

// Rot13 applies the UserAssist value-name obfuscation. It is its own inverse.
func Rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

var harddiskVolumeRe = regexp.MustCompile(`\\Device\\HarddiskVolume(\d+)`)

// DeviceToDrive rewrites \Device\HarddiskVolumeN as drive 'C'+(N-1). The
// mapping is an approximation; the real one lives in MountedDevices. Paths
// without a volume prefix, or whose volume number falls outside A..Z, are
// returned unchanged.
func DeviceToDrive(p string) string {
	m := harddiskVolumeRe.FindStringSubmatchIndex(p)
	if m == nil {
		return p
	}
	n, err := strconv.Atoi(p[m[2]:m[3]])
	if err != nil {
		return p
	}
	letter := 'C' + n - 1
	if letter < 'A' || letter > 'Z' {
		return p
	}
	return p[:m[0]] + string(rune(letter)) + ":" + p[m[1]:]
}

// NormalizeInstallDate converts an Uninstall-key YYYYMMDD date to the
// timestamp layout. ok is false for anything else.
func NormalizeInstallDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 8 {
		return "", false
	}
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return "", false
	}
	return format.FormatTimestamp(t), true
}

// SIDType classifies a SID by its well-known prefix.
func SIDType(sid string) string {
	switch {
	case strings.Contains(sid, "S-1-5-18"):
		return "SYSTEM (LocalSystem)"
	case strings.Contains(sid, "S-1-5-19"):
		return "LOCAL SERVICE"
	case strings.Contains(sid, "S-1-5-20"):
		return "NETWORK SERVICE"
	case strings.Contains(sid, "S-1-5-21"):
		return "Domain User/Group"
	case strings.Contains(sid, "S-1-5-32"):
		return "Built-in Group"
	}
	return "Unknown"
}

var startTypes = [...]string{"Boot", "System", "Auto", "Manual", "Disabled"}

// ServiceStartType names a service Start value (0..4).
func ServiceStartType(v uint32) (string, bool) {
	if int(v) >= len(startTypes) {
		return "", false
	}
	return startTypes[v], true
}

// ConnectionType names a WLAN profile connection type (1 or 2).
func ConnectionType(v uint32) (string, bool) {
	switch v {
	case 1:
		return "Infrastructure", true
	case 2:
		return "AdHoc", true
	}
	return "", false
}

// sidAt trims an ASCII read to the leading SID.
func sidAt(raw string) string {
	if loc := sidRe.FindStringIndex(raw); loc != nil && loc[0] == 0 {
		return raw[:loc[1]]
	}
	return ""
}
