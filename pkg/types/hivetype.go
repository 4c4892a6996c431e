package types

import "strings"

// HiveType tags which registry hive a buffer came from. It is resolved once per
// buffer and never changes afterwards.
type HiveType int

const (
	HiveUnknown HiveType = iota
	HiveSystem
	HiveSoftware
	HiveSAM
	HiveSecurity
	HiveNTUser
	HiveUsrClass
	HiveAmcache
)

// AllHiveTypes lists every concrete hive type, in detection scoring order.
var AllHiveTypes = []HiveType{
	HiveSAM,
	HiveSystem,
	HiveSoftware,
	HiveSecurity,
	HiveAmcache,
	HiveUsrClass,
	HiveNTUser,
}

// String returns the canonical upper-case tag.
func (t HiveType) String() string {
	switch t {
	case HiveSystem:
		return "SYSTEM"
	case HiveSoftware:
		return "SOFTWARE"
	case HiveSAM:
		return "SAM"
	case HiveSecurity:
		return "SECURITY"
	case HiveNTUser:
		return "NTUSER"
	case HiveUsrClass:
		return "USRCLASS"
	case HiveAmcache:
		return "AMCACHE"
	default:
		return "UNKNOWN"
	}
}

// FileName returns the conventional on-disk name of the hive.
func (t HiveType) FileName() string {
	switch t {
	case HiveNTUser:
		return "NTUSER.DAT"
	case HiveUsrClass:
		return "UsrClass.dat"
	case HiveAmcache:
		return "Amcache.hve"
	case HiveUnknown:
		return ""
	default:
		return t.String()
	}
}

// IsUserHive reports whether t is a per-user hive (NTUSER.DAT or UsrClass.dat).
func (t HiveType) IsUserHive() bool {
	return t == HiveNTUser || t == HiveUsrClass
}

// MarshalText implements encoding.TextMarshaler.
func (t HiveType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *HiveType) UnmarshalText(b []byte) error {
	*t = ParseHiveType(string(b))
	return nil
}

// ParseHiveType maps a tag or conventional file name to a HiveType.
// Unrecognised input yields HiveUnknown.
func ParseHiveType(s string) HiveType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SYSTEM":
		return HiveSystem
	case "SOFTWARE":
		return HiveSoftware
	case "SAM":
		return HiveSAM
	case "SECURITY":
		return HiveSecurity
	case "NTUSER", "NTUSER.DAT":
		return HiveNTUser
	case "USRCLASS", "USRCLASS.DAT":
		return HiveUsrClass
	case "AMCACHE", "AMCACHE.HVE":
		return HiveAmcache
	default:
		return HiveUnknown
	}
}

// Confidence grades a correlation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)
