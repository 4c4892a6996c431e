package artifact

import "github.com/Velocidex/ordereddict"

// Findings holds one hive's deduplicated, sorted artifact lists.
type Findings struct {
	ShimCache         []ShimCacheEntry    `json:"shimcache"`
	Amcache           []AmcacheEntry      `json:"amcache"`
	UserAssist        []UserAssistEntry   `json:"userassist"`
	BAMDAM            []BAMEntry          `json:"bam_dam"`
	USBDevices        []USBDevice         `json:"usb_devices"`
	RecentDocs        []RecentDoc         `json:"recent_docs"`
	RunKeys           []RunKey            `json:"run_keys"`
	SAMUsers          []SAMUser           `json:"sam_users"`
	NetworkProfiles   []NetworkProfile    `json:"network_profiles"`
	ShellBags         []ShellBag          `json:"shellbags"`
	MuiCache          []MuiCacheEntry     `json:"muicache"`
	Prefetch          []PrefetchEntry     `json:"prefetch"`
	LNKFiles          []LNKEntry          `json:"lnk_files"`
	InstalledSoftware []InstalledSoftware `json:"installed_software"`
	Security          []SecurityEntry     `json:"security"`
	TypedPaths        []TypedPath         `json:"typed_paths"`
	RecentApps        []RecentApp         `json:"recent_apps"`
	Services          []Service           `json:"services"`
	WLANProfiles      []WLANProfile       `json:"wlan_profiles"`
	TimeZone          []TimeZone          `json:"timezone"`
}

func records[T Record](in []T) []Record {
	if len(in) == 0 {
		return nil
	}
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r
	}
	return out
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// Records returns kind k's list as Records, in stored order.
func (f *Findings) Records(k Kind) []Record {
	if f == nil {
		return nil
	}
	switch k {
	case KindShimCache:
		return records(f.ShimCache)
	case KindAmcache:
		return records(f.Amcache)
	case KindUserAssist:
		return records(f.UserAssist)
	case KindBAMDAM:
		return records(f.BAMDAM)
	case KindUSBDevice:
		return records(f.USBDevices)
	case KindRecentDocs:
		return records(f.RecentDocs)
	case KindRunKeys:
		return records(f.RunKeys)
	case KindSAMUsers:
		return records(f.SAMUsers)
	case KindNetworkProfiles:
		return records(f.NetworkProfiles)
	case KindShellBags:
		return records(f.ShellBags)
	case KindMuiCache:
		return records(f.MuiCache)
	case KindPrefetch:
		return records(f.Prefetch)
	case KindLNK:
		return records(f.LNKFiles)
	case KindInstalledSoftware:
		return records(f.InstalledSoftware)
	case KindSecurity:
		return records(f.Security)
	case KindTypedPaths:
		return records(f.TypedPaths)
	case KindRecentApps:
		return records(f.RecentApps)
	case KindServices:
		return records(f.Services)
	case KindWLANProfiles:
		return records(f.WLANProfiles)
	case KindTimeZone:
		return records(f.TimeZone)
	}
	return nil
}

// Len returns the number of records of kind k.
func (f *Findings) Len(k Kind) int {
	return len(f.Records(k))
}

// NonEmptyKinds lists the kinds with at least one record, in AllKinds order.
func (f *Findings) NonEmptyKinds() []Kind {
	var out []Kind
	for _, k := range AllKinds {
		if f.Len(k) > 0 {
			out = append(out, k)
		}
	}
	return out
}

// Total returns the number of records across all kinds.
func (f *Findings) Total() int {
	n := 0
	for _, k := range AllKinds {
		n += f.Len(k)
	}
	return n
}

// Ordered projects the findings into a key-ordered map, keys in AllKinds
// order. Empty kinds map to empty lists so the JSON shape is stable.
func (f *Findings) Ordered() *ordereddict.Dict {
	if f == nil {
		f = &Findings{}
	}
	return ordereddict.NewDict().
		Set(KindShimCache.String(), orEmpty(f.ShimCache)).
		Set(KindAmcache.String(), orEmpty(f.Amcache)).
		Set(KindUserAssist.String(), orEmpty(f.UserAssist)).
		Set(KindBAMDAM.String(), orEmpty(f.BAMDAM)).
		Set(KindUSBDevice.String(), orEmpty(f.USBDevices)).
		Set(KindRecentDocs.String(), orEmpty(f.RecentDocs)).
		Set(KindRunKeys.String(), orEmpty(f.RunKeys)).
		Set(KindSAMUsers.String(), orEmpty(f.SAMUsers)).
		Set(KindNetworkProfiles.String(), orEmpty(f.NetworkProfiles)).
		Set(KindShellBags.String(), orEmpty(f.ShellBags)).
		Set(KindMuiCache.String(), orEmpty(f.MuiCache)).
		Set(KindPrefetch.String(), orEmpty(f.Prefetch)).
		Set(KindLNK.String(), orEmpty(f.LNKFiles)).
		Set(KindInstalledSoftware.String(), orEmpty(f.InstalledSoftware)).
		Set(KindSecurity.String(), orEmpty(f.Security)).
		Set(KindTypedPaths.String(), orEmpty(f.TypedPaths)).
		Set(KindRecentApps.String(), orEmpty(f.RecentApps)).
		Set(KindServices.String(), orEmpty(f.Services)).
		Set(KindWLANProfiles.String(), orEmpty(f.WLANProfiles)).
		Set(KindTimeZone.String(), orEmpty(f.TimeZone))
}

// Summary maps each non-empty kind key to its record count, in AllKinds order.
func (f *Findings) Summary() *ordereddict.Dict {
	d := ordereddict.NewDict()
	for _, k := range f.NonEmptyKinds() {
		d.Set(k.String(), f.Len(k))
	}
	return d
}
