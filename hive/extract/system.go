package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/internal/buf"
	"github.com/forensicFODs/registry-analysis-tools/internal/format"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

var (
	usbSeeds      = []string{"VID_", "PID_", "USBSTOR", `\??\USB#`}
	vidRe         = regexp.MustCompile(`VID_([0-9A-F]{4})`)
	pidRe         = regexp.MustCompile(`PID_([0-9A-F]{4})`)
	usbSerialRe   = regexp.MustCompile(`\\([0-9A-F&]{8,})`)
	usbDiskNameRe = regexp.MustCompile(`Disk&[^\\]+\\([^\\]+)`)

	builtinAccounts = []string{"Administrator", "Guest", "DefaultAccount"}
	networkSeeds    = []string{"ProfileName", "Description", "SSID"}
	uninstallSeeds  = []string{
		`Microsoft\Windows\CurrentVersion\Uninstall`,
		`Wow6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
	}
	securityPolicyKeys = []string{
		`Policy\Accounts`,
		`Policy\Audit`,
		`Policy\PolAdtEv`,
		`Policy\Secrets`,
		`SAM\Domains`,
	}
	serviceSeeds  = []string{`Services\`, "ImagePath", "DisplayName"}
	serviceValues = map[string]bool{
		"ImagePath": true, "DisplayName": true, "Description": true, "ObjectName": true,
		"Start": true, "Type": true, "ErrorControl": true, "Group": true,
	}
	wlanSeeds     = []string{"ProfileName", `Profiles\`, "SSID"}
	timeZoneSeeds = []string{"TimeZoneInformation", "StandardName", "DaylightName"}
)

const (
	usbContextLen    = 200
	driveMarkerRange = 512
	dosDevicesPrefix = `\DosDevices\`
)

// USBDevices recovers USB vendor/product identifiers, serial numbers, disk
// names and, when a mount point is recorded nearby, the drive letter. Only
// SYSTEM hives are scanned.
func (s *Scanner) USBDevices() []artifact.USBDevice {
	if s.typ != types.HiveSystem {
		return nil
	}
	var out []artifact.USBDevice
	for _, pattern := range usbSeeds {
		for _, off := range s.seeds(pattern, 0) {
			ctx := s.buf.ReadASCII(off, usbContextLen)
			d := artifact.USBDevice{
				Base:       artifact.Base{Offset: off},
				Device:     ctx,
				VID:        submatch(vidRe, ctx),
				PID:        submatch(pidRe, ctx),
				Serial:     submatch(usbSerialRe, ctx),
				DeviceName: submatch(usbDiskNameRe, ctx),
			}
			if d.VID == "" && d.PID == "" && d.DeviceName == "" {
				continue
			}
			d.Timestamp = s.nearbyTimestamp(off)
			d.DriveLetter = s.driveLetterNear(off)
			out = append(out, d)
		}
	}
	return mergeUSB(out)
}

func submatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func mergeUSB(in []artifact.USBDevice) []artifact.USBDevice {
	m := newMerger(
		func(d artifact.USBDevice) string {
			if d.VID == "" && d.PID == "" && d.Serial == "" {
				return "name:" + strings.ToLower(d.DeviceName)
			}
			return strings.ToLower(d.VID + ":" + d.PID + ":" + d.Serial)
		},
		func(old, cand artifact.USBDevice) bool {
			switch {
			case (cand.Timestamp != "") != (old.Timestamp != ""):
				return cand.Timestamp != ""
			case (cand.DriveLetter != "") != (old.DriveLetter != ""):
				return cand.DriveLetter != ""
			}
			return false
		},
	)
	m.addAll(in)
	out := dropPartialUSB(m.result())
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.VID != b.VID {
			return a.VID < b.VID
		}
		if a.PID != b.PID {
			return a.PID < b.PID
		}
		if a.Serial != b.Serial {
			return a.Serial < b.Serial
		}
		return a.DeviceName < b.DeviceName
	})
	return out
}

// dropPartialUSB removes records read from a PID_ seed whose product and
// serial already appear on a record that also carries the vendor ID.
func dropPartialUSB(in []artifact.USBDevice) []artifact.USBDevice {
	full := make(map[string]bool)
	for _, d := range in {
		if d.VID != "" {
			full[strings.ToLower(d.PID+":"+d.Serial)] = true
		}
	}
	out := in[:0]
	for _, d := range in {
		if d.VID == "" && d.PID != "" && full[strings.ToLower(d.PID+":"+d.Serial)] {
			continue
		}
		out = append(out, d)
	}
	return out
}

// driveMarker is a `\DosDevices\X:` mount point name found in the hive.
type driveMarker struct {
	offset int
	letter string
}

func (s *Scanner) driveMarkers() []driveMarker {
	s.dosOnce.Do(func() {
		var marks []driveMarker
		for _, off := range s.buf.SearchString(dosDevicesPrefix) {
			at := off + len(dosDevicesPrefix)
			if l := s.buf.ReadASCII(at, 2); len(l) == 2 && isDriveLetter(l[0]) && l[1] == ':' {
				marks = append(marks, driveMarker{offset: off, letter: l[:1]})
			}
		}
		for _, off := range s.buf.SearchUTF16(dosDevicesPrefix) {
			at := off + 2*len(dosDevicesPrefix)
			if l := s.buf.ReadUTF16LE(at, 4); len(l) == 2 && isDriveLetter(l[0]) && l[1] == ':' {
				marks = append(marks, driveMarker{offset: off, letter: l[:1]})
			}
		}
		sort.Slice(marks, func(i, j int) bool { return marks[i].offset < marks[j].offset })
		s.dosDevices = marks
	})
	return s.dosDevices
}

func isDriveLetter(c byte) bool { return c >= 'A' && c <= 'Z' }

// driveLetterNear returns the letter of the mount point closest to off within
// driveMarkerRange bytes; the earlier one wins a tie.
func (s *Scanner) driveLetterNear(off int) string {
	marks := s.driveMarkers()
	i := sort.Search(len(marks), func(i int) bool { return marks[i].offset >= off })
	best, bestDist := "", driveMarkerRange+1
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(marks) {
			continue
		}
		d := marks[j].offset - off
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = marks[j].letter, d
		}
	}
	return best
}

// SAMUsers recovers local accounts from SID strings and well-known account
// names. Only SAM hives are scanned.
func (s *Scanner) SAMUsers() []artifact.SAMUser {
	if s.typ != types.HiveSAM {
		return nil
	}
	m := newMerger(func(u artifact.SAMUser) string { return strings.ToLower(u.Username) }, nil)
	for _, off := range s.seeds("S-1-5-21", 0) {
		name := s.usernameNear(off)
		if name == "" {
			continue
		}
		sid := sidAt(s.buf.ReadASCII(off, 100))
		if sid == "" {
			sid = "S-1-5-21"
		}
		m.add(artifact.SAMUser{
			Base:      artifact.Base{Offset: off},
			Username:  name,
			SID:       sid,
			LastLogin: s.nearbyTimestamp(off),
			Created:   s.createdBefore(off),
		})
	}
	for _, name := range builtinAccounts {
		offs := s.buf.SearchString(name)
		if len(offs) == 0 {
			continue
		}
		m.add(artifact.SAMUser{
			Base:      artifact.Base{Offset: offs[0]},
			Username:  name,
			SID:       "Unknown",
			LastLogin: s.nearbyTimestamp(offs[0]),
		})
	}
	return m.result()
}

// createdBefore looks 100 to 500 bytes before off, nearest first, for an
// account creation FILETIME.
func (s *Scanner) createdBefore(off int) string {
	for at := buf.AlignDown(off-100, 8); at > off-500; at -= 8 {
		if at < 0 {
			break
		}
		if t, ok := s.buf.ReadFiletime(at); ok && types.ExecutionYears.Contains(t.Year()) {
			return format.FormatTimestamp(t)
		}
	}
	return ""
}

// NetworkProfiles recovers network names stored after profile value names.
// Only SOFTWARE hives are scanned.
func (s *Scanner) NetworkProfiles() []artifact.NetworkProfile {
	if s.typ != types.HiveSoftware {
		return nil
	}
	m := newMerger(func(p artifact.NetworkProfile) string { return strings.ToLower(p.Network) }, nil)
	for _, pattern := range networkSeeds {
		for _, off := range s.seeds(pattern, 10) {
			name := s.buf.ReadUTF16LE(off+20, 100)
			if len(name) <= 2 {
				continue
			}
			m.add(artifact.NetworkProfile{
				Base:    artifact.Base{Offset: off},
				Network: name,
				Field:   pattern,
			})
		}
	}
	return m.result()
}

// InstalledSoftware recovers Uninstall key entries by pairing each value
// name with the string that follows it. Only SOFTWARE hives are scanned.
func (s *Scanner) InstalledSoftware() []artifact.InstalledSoftware {
	if s.typ != types.HiveSoftware {
		return nil
	}
	m := newMerger(func(e artifact.InstalledSoftware) string { return e.DisplayName }, nil)
	for _, pattern := range uninstallSeeds {
		for _, off := range s.seeds(pattern, 200) {
			e := uninstallEntry(s.contextStrings(off, 500))
			if len(e.DisplayName) <= 2 {
				continue
			}
			e.Offset = off
			if size, ok := s.dwordNear(off, sizeRadius, func(v uint32) bool { return v != 0 }); ok {
				e.EstimatedSize = size
			}
			m.add(e)
		}
	}
	return truncate(m.result(), 150)
}

func uninstallEntry(ctx []string) artifact.InstalledSoftware {
	var e artifact.InstalledSoftware
	for i := 0; i+1 < len(ctx); i++ {
		c, next := ctx[i], ctx[i+1]
		switch {
		case strings.Contains(c, "DisplayName"):
			e.DisplayName = next
		case strings.Contains(c, "Publisher"):
			e.Publisher = next
		case strings.Contains(c, "DisplayVersion"):
			e.Version = next
		case strings.Contains(c, "InstallDate"):
			if d, ok := NormalizeInstallDate(next); ok {
				e.InstallDate, e.InstallDateRaw = d, ""
			} else {
				e.InstallDate, e.InstallDateRaw = "", next
			}
		case strings.Contains(c, "InstallLocation"):
			e.InstallLocation = next
		case strings.Contains(c, "UninstallString"):
			e.UninstallString = next
		}
	}
	return e
}

// Security recovers policy values and SIDs. Only SECURITY hives are scanned.
func (s *Scanner) Security() []artifact.SecurityEntry {
	if s.typ != types.HiveSecurity {
		return nil
	}
	m := newMerger(func(e artifact.SecurityEntry) string {
		if e.Category == artifact.SecuritySID {
			return "sid:" + e.SID
		}
		return "policy:" + e.PolicyKey + ":" + e.PolicyName
	}, nil)
	for _, key := range securityPolicyKeys {
		for _, off := range s.seeds(key, 30) {
			var value *uint32
			if v, ok := s.dwordNear(off, 20, func(uint32) bool { return true }); ok {
				value = &v
			}
			for _, c := range s.contextStrings(off, 200) {
				if len(c) <= 5 {
					continue
				}
				m.add(artifact.SecurityEntry{
					Base:       artifact.Base{Offset: off},
					Category:   artifact.SecurityPolicy,
					PolicyKey:  key,
					PolicyName: c,
					Value:      value,
				})
			}
		}
	}
	for _, off := range s.seeds("S-1-5-", 50) {
		sid := sidAt(s.buf.ReadASCII(off, 100))
		if sid == "" {
			continue
		}
		m.add(artifact.SecurityEntry{
			Base:     artifact.Base{Offset: off},
			Category: artifact.SecuritySID,
			SID:      sid,
			SIDType:  SIDType(sid),
		})
	}
	return truncate(m.result(), 100)
}

// Services recovers service image paths, names and start types. Only SYSTEM
// hives are scanned.
func (s *Scanner) Services() []artifact.Service {
	if s.typ != types.HiveSystem {
		return nil
	}
	m := newMerger(func(e artifact.Service) string {
		if e.ImagePath == "" && e.DisplayName == "" {
			return ""
		}
		return e.ImagePath + "\x00" + e.DisplayName
	}, nil)
	for _, pattern := range serviceSeeds {
		for _, off := range s.seeds(pattern, 150) {
			e := serviceEntry(s.contextStrings(off, 400))
			if e.ImagePath == "" && e.DisplayName == "" {
				continue
			}
			e.Offset = off
			if v, ok := s.dwordNear(off, sizeRadius, startTypeOK); ok {
				e.StartType, _ = ServiceStartType(v)
			}
			m.add(e)
		}
	}
	return truncate(m.result(), 100)
}

func serviceEntry(ctx []string) artifact.Service {
	var e artifact.Service
	for _, c := range ctx {
		if serviceValues[c] {
			continue
		}
		lower := strings.ToLower(c)
		switch {
		case containsAny(lower, ".exe", ".dll", ".sys"):
			e.ImagePath = c
		case len(c) > 3 && isAlnum(strings.ReplaceAll(c, " ", "")):
			if e.DisplayName == "" {
				e.DisplayName = c
			} else if e.ServiceName == "" {
				e.ServiceName = c
			}
		}
	}
	return e
}

func startTypeOK(v uint32) bool {
	_, ok := ServiceStartType(v)
	return ok
}

func connectionTypeOK(v uint32) bool {
	_, ok := ConnectionType(v)
	return ok
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !isASCIILetter(c) {
			return false
		}
	}
	return true
}

// WLANProfiles recovers wireless profile names. Only SOFTWARE hives are
// scanned.
func (s *Scanner) WLANProfiles() []artifact.WLANProfile {
	if s.typ != types.HiveSoftware {
		return nil
	}
	m := newMerger(func(p artifact.WLANProfile) string { return p.ProfileName }, nil)
	for _, pattern := range wlanSeeds {
		for _, off := range s.seeds(pattern, 100) {
			for _, c := range s.contextStrings(off, 200) {
				if len(c) <= 2 || len(c) >= 64 || strings.Contains(c, `\`) {
					continue
				}
				p := artifact.WLANProfile{
					Base:              artifact.Base{Offset: off},
					ProfileName:       c,
					LastConnectedTime: s.nearbyTimestamp(off),
				}
				if v, ok := s.dwordNear(off, 30, connectionTypeOK); ok {
					p.ConnectionType, _ = ConnectionType(v)
				}
				m.add(p)
			}
		}
	}
	return truncate(m.result(), 50)
}

// TimeZone recovers the configured time zone names and bias. Only SYSTEM
// hives are scanned.
func (s *Scanner) TimeZone() []artifact.TimeZone {
	if s.typ != types.HiveSystem {
		return nil
	}
	m := newMerger(func(z artifact.TimeZone) string { return z.StandardName + "\x00" + z.DaylightName }, nil)
	for _, pattern := range timeZoneSeeds {
		for _, off := range s.seeds(pattern, 30) {
			z := artifact.TimeZone{Base: artifact.Base{Offset: off}}
			for _, c := range s.contextStrings(off, 200) {
				if len(c) <= 10 || c == "StandardName" || c == "DaylightName" {
					continue
				}
				switch {
				case strings.Contains(c, "Standard"):
					z.StandardName = c
				case strings.Contains(c, "Daylight"):
					z.DaylightName = c
				}
			}
			if z.StandardName == "" && z.DaylightName == "" {
				continue
			}
			if v, ok := s.dwordNear(off, 20, biasOK); ok {
				z.Bias = int32(v)
			}
			m.add(z)
		}
	}
	return truncate(m.result(), 10)
}

func biasOK(v uint32) bool {
	b := int32(v)
	return b != 0 && b >= types.MinTimeZoneBias && b <= types.MaxTimeZoneBias
}
