// Package artifact defines the typed records recovered from a hive: one struct
// per artifact kind, the Record interface they share, and Findings, the
// per-hive collection of deduplicated and sorted lists.
package artifact

// Kind tags an artifact variant.
type Kind int

const (
	KindShimCache Kind = iota
	KindAmcache
	KindUserAssist
	KindBAMDAM
	KindUSBDevice
	KindRecentDocs
	KindRunKeys
	KindSAMUsers
	KindNetworkProfiles
	KindShellBags
	KindMuiCache
	KindPrefetch
	KindLNK
	KindInstalledSoftware
	KindSecurity
	KindTypedPaths
	KindRecentApps
	KindServices
	KindWLANProfiles
	KindTimeZone
)

// AllKinds lists every kind in extraction and serialisation order.
var AllKinds = []Kind{
	KindShimCache,
	KindAmcache,
	KindUserAssist,
	KindBAMDAM,
	KindUSBDevice,
	KindRecentDocs,
	KindRunKeys,
	KindSAMUsers,
	KindNetworkProfiles,
	KindShellBags,
	KindMuiCache,
	KindPrefetch,
	KindLNK,
	KindInstalledSoftware,
	KindSecurity,
	KindTypedPaths,
	KindRecentApps,
	KindServices,
	KindWLANProfiles,
	KindTimeZone,
}

var kindKeys = [...]string{
	KindShimCache:         "shimcache",
	KindAmcache:           "amcache",
	KindUserAssist:        "userassist",
	KindBAMDAM:            "bam_dam",
	KindUSBDevice:         "usb_devices",
	KindRecentDocs:        "recent_docs",
	KindRunKeys:           "run_keys",
	KindSAMUsers:          "sam_users",
	KindNetworkProfiles:   "network_profiles",
	KindShellBags:         "shellbags",
	KindMuiCache:          "muicache",
	KindPrefetch:          "prefetch",
	KindLNK:               "lnk_files",
	KindInstalledSoftware: "installed_software",
	KindSecurity:          "security",
	KindTypedPaths:        "typed_paths",
	KindRecentApps:        "recent_apps",
	KindServices:          "services",
	KindWLANProfiles:      "wlan_profiles",
	KindTimeZone:          "timezone",
}

var kindLabels = [...]string{
	KindShimCache:         "ShimCache",
	KindAmcache:           "Amcache",
	KindUserAssist:        "UserAssist",
	KindBAMDAM:            "BAM/DAM",
	KindUSBDevice:         "USB Device",
	KindRecentDocs:        "RecentDocs",
	KindRunKeys:           "Auto-Start",
	KindSAMUsers:          "User Account",
	KindNetworkProfiles:   "Network Profile",
	KindShellBags:         "ShellBag",
	KindMuiCache:          "MuiCache",
	KindPrefetch:          "Prefetch",
	KindLNK:               "LNK",
	KindInstalledSoftware: "InstalledSoftware",
	KindSecurity:          "SecurityPolicy/SID",
	KindTypedPaths:        "TypedPath",
	KindRecentApps:        "RecentApp",
	KindServices:          "Service",
	KindWLANProfiles:      "WLANProfile",
	KindTimeZone:          "TimeZone",
}

// String returns the findings key, e.g. "bam_dam".
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindKeys) {
		return "unknown"
	}
	return kindKeys[k]
}

// Label returns the display name, e.g. "BAM/DAM".
func (k Kind) Label() string {
	if k < 0 || int(k) >= len(kindLabels) {
		return "Unknown"
	}
	return kindLabels[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind resolves a findings key. ok is false for unknown keys.
func ParseKind(s string) (Kind, bool) {
	for i, key := range kindKeys {
		if key == s {
			return Kind(i), true
		}
	}
	return 0, false
}
