package forensics

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/internal/logger"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// Correlation rule names.
const (
	RuleExecution    = "ShimCache-Amcache Match"
	RuleUserActivity = "User Activity Pattern"
	RuleUSBUsage     = "USB Device Usage"
	RuleNetwork      = "Network Activity"
	RuleAutorun      = "Autorun Software Correlation"
	RuleServices     = "Services-Software Correlation"
	RuleTimeZone     = "Timezone Information"
)

// Caps on the evidence a single correlation carries.
const (
	maxActivityTimestamps = 5
	maxUSBFiles           = 20
	maxNetworkEntries     = 5
	maxSoftwareMatches    = 10
)

var correlationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("hivescan/correlation"))

// Correlation joins artifacts under a named rule. Exactly one of the
// payload fields is set, according to Rule.
type Correlation struct {
	ID           string           `json:"id"`
	Rule         string           `json:"type"`
	Confidence   types.Confidence `json:"confidence"`
	Significance string           `json:"significance"`

	Execution *ExecutionMatch  `json:"execution,omitempty"`
	Activity  *ActivityPattern `json:"activity,omitempty"`
	USB       *USBUsage        `json:"usb,omitempty"`
	Network   *NetworkActivity `json:"network,omitempty"`
	Software  *SoftwareLinks   `json:"software,omitempty"`
	TimeZone  *TimeZoneNote    `json:"timezone,omitempty"`
}

// ExecutionMatch is an Amcache program also present in the ShimCache.
type ExecutionMatch struct {
	Program            string `json:"program"`
	Path               string `json:"path"`
	ShimCacheTimestamp string `json:"shimcacheTimestamp,omitempty"`
	AmcacheTimestamp   string `json:"amcacheTimestamp,omitempty"`
	SHA1               string `json:"sha1,omitempty"`
	Publisher          string `json:"publisher,omitempty"`
	Version            string `json:"version,omitempty"`
}

// ActivityPattern is one program seen by several execution sources.
type ActivityPattern struct {
	Program       string   `json:"program"`
	Sources       []string `json:"sources"`
	SourceCount   int      `json:"sourceCount"`
	Timestamps    []string `json:"timestamps"`
	TotalRunCount uint64   `json:"totalRunCount"`
}

// USBUsage ties mounted USB drive letters to files and folders opened on them.
type USBUsage struct {
	Devices        []USBRef        `json:"devices"`
	AccessedFiles  []USBFileAccess `json:"accessedFiles"`
	TotalFileCount int             `json:"totalFileCount"`
}

// USBRef identifies a USB device.
type USBRef struct {
	VID    string `json:"vid,omitempty"`
	PID    string `json:"pid,omitempty"`
	Serial string `json:"serial,omitempty"`
	Drive  string `json:"drive,omitempty"`
}

// USBFileAccess is a document or folder path on a USB drive.
type USBFileAccess struct {
	Path      string        `json:"path"`
	Timestamp string        `json:"timestamp,omitempty"`
	Drive     string        `json:"drive"`
	Source    artifact.Kind `json:"source"`
}

// NetworkActivity summarises wired and wireless profiles.
type NetworkActivity struct {
	NetworkProfiles int          `json:"networkProfiles"`
	WLANProfiles    int          `json:"wlanProfiles"`
	Networks        []NetworkRef `json:"networks"`
	WiFiNetworks    []NetworkRef `json:"wifiNetworks"`
}

// NetworkRef is one network by name and connection type.
type NetworkRef struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// SoftwareLinks lists autoruns or services attributed to installed software.
type SoftwareLinks struct {
	MatchedCount int            `json:"matchedCount"`
	Autoruns     []AutorunMatch `json:"autoruns,omitempty"`
	Services     []ServiceMatch `json:"services,omitempty"`
}

// AutorunMatch is a Run key command that belongs to installed software.
type AutorunMatch struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Software    string `json:"software"`
	Publisher   string `json:"publisher,omitempty"`
	InstallDate string `json:"installDate,omitempty"`
}

// ServiceMatch is a service image that belongs to installed software.
type ServiceMatch struct {
	ServiceName string `json:"serviceName,omitempty"`
	StartType   string `json:"startType,omitempty"`
	ImagePath   string `json:"imagePath"`
	Software    string `json:"software"`
	Publisher   string `json:"publisher,omitempty"`
}

// TimeZoneNote records the system's configured time zone. Recovered
// timestamps stay in UTC.
type TimeZoneNote struct {
	TimeZone    string `json:"timezone"`
	UTCOffset   string `json:"utcOffset"`
	BiasMinutes int32  `json:"biasMinutes"`
}

func newCorrelation(rule string, conf types.Confidence, subject, significance string) Correlation {
	return Correlation{
		ID:           uuid.NewSHA1(correlationNamespace, []byte(rule+"\x00"+subject)).String(),
		Rule:         rule,
		Confidence:   conf,
		Significance: significance,
	}
}

// FindCorrelations recomputes every correlation rule over the loaded hives.
func (e *Engine) FindCorrelations() []Correlation {
	var out []Correlation
	for _, rule := range []func() []Correlation{
		e.correlateExecution,
		e.correlateUserActivity,
		e.correlateUSB,
		e.correlateNetwork,
		e.correlateAutoruns,
		e.correlateServices,
		e.correlateTimeZone,
	} {
		out = append(out, rule()...)
	}
	e.correlations = out
	if len(e.hives) > 0 {
		e.state = StateCorrelated
	}
	high := 0
	for _, c := range out {
		if c.Confidence == types.ConfidenceHigh {
			high++
		}
	}
	logger.Info("correlations built", "hives", len(e.hives), "count", len(out), "high", high)
	return out
}

// Correlations returns the result of the last FindCorrelations call.
func (e *Engine) Correlations() []Correlation { return e.correlations }

// correlateExecution matches Amcache program names against SYSTEM ShimCache
// paths.
func (e *Engine) correlateExecution() []Correlation {
	system := e.findings(types.HiveSystem)
	if system == nil || len(system.ShimCache) == 0 {
		return nil
	}
	var out []Correlation
	e.each(func(_ types.HiveType, f *artifact.Findings) {
		for _, am := range f.Amcache {
			name := strings.ToLower(am.ProgramName)
			if name == "" {
				continue
			}
			stem := strings.ReplaceAll(name, ".exe", "")
			for _, sc := range system.ShimCache {
				p := strings.ToLower(sc.Path)
				if !strings.Contains(p, name) && (stem == "" || !strings.Contains(p, stem)) {
					continue
				}
				c := newCorrelation(RuleExecution, types.ConfidenceHigh, name+"\x00"+p,
					"Program execution confirmed by multiple sources")
				c.Execution = &ExecutionMatch{
					Program:            am.ProgramName,
					Path:               sc.Path,
					ShimCacheTimestamp: sc.Timestamp,
					AmcacheTimestamp:   am.Timestamp,
					SHA1:               am.SHA1,
					Publisher:          am.Publisher,
					Version:            am.Version,
				}
				out = append(out, c)
			}
		}
	})
	return out
}

// Execution source labels.
const (
	sourceUserAssist = "UserAssist"
	sourcePrefetch   = "Prefetch"
	sourceBAM        = "BAM/DAM"
	sourceRecentApps = "RecentApps"
)

type activity struct {
	program    string
	sources    []string
	timestamps []string
	runs       uint64
}

func (a *activity) add(source, ts string, runs uint32) {
	if !slices.Contains(a.sources, source) {
		a.sources = append(a.sources, source)
	}
	if ts != "" && ts != artifact.NotAvailable {
		a.timestamps = append(a.timestamps, ts)
	}
	a.runs += uint64(runs)
}

// correlateUserActivity groups execution evidence by normalised program
// name across every loaded hive.
func (e *Engine) correlateUserActivity() []Correlation {
	groups := make(map[string]*activity)
	var order []string
	record := func(program, source, ts string, runs uint32) {
		key := normalizeProgram(program)
		if key == "" {
			return
		}
		g, ok := groups[key]
		if !ok {
			g = &activity{program: key}
			groups[key] = g
			order = append(order, key)
		}
		g.add(source, ts, runs)
	}

	e.each(func(_ types.HiveType, f *artifact.Findings) {
		for _, ua := range f.UserAssist {
			record(ua.Program, sourceUserAssist, ua.LastExecuted, ua.RunCount)
		}
		for _, pf := range f.Prefetch {
			record(pf.Program, sourcePrefetch, pf.Timestamp, pf.RunCount)
		}
		for _, b := range f.BAMDAM {
			record(b.Path, sourceBAM, b.Timestamp, 0)
		}
		for _, ra := range f.RecentApps {
			name := ra.AppName
			if name == "" {
				name = ra.AppPath
			}
			record(name, sourceRecentApps, ra.LastAccessTime, ra.LaunchCount)
		}
	})

	var out []Correlation
	for _, key := range order {
		g := groups[key]
		n := len(g.sources)
		if n < 2 {
			continue
		}
		conf := types.ConfidenceMedium
		if n >= 3 {
			conf = types.ConfidenceHigh
		}
		ts := append([]string(nil), g.timestamps...)
		sort.Sort(sort.Reverse(sort.StringSlice(ts)))
		if len(ts) > maxActivityTimestamps {
			ts = ts[:maxActivityTimestamps]
		}
		c := newCorrelation(RuleUserActivity, conf, key,
			fmt.Sprintf("Program activity confirmed by %d different sources", n))
		c.Activity = &ActivityPattern{
			Program:       g.program,
			Sources:       g.sources,
			SourceCount:   n,
			Timestamps:    ts,
			TotalRunCount: g.runs,
		}
		out = append(out, c)
	}
	return out
}

// normalizeProgram reduces a path, UserAssist name or prefetch file name to
// a bare lower-case program name: "C:\Windows\notepad.exe" and
// "NOTEPAD.EXE-D8414F97.pf" both become "notepad".
func normalizeProgram(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if i := strings.LastIndexAny(p, `\/`); i >= 0 {
		p = p[i+1:]
	}
	if strings.HasSuffix(p, ".pf") {
		p = strings.TrimSuffix(p, ".pf")
		if i := strings.LastIndexByte(p, '-'); i >= 0 && isHex(p[i+1:]) {
			p = p[:i]
		}
	}
	return strings.TrimSuffix(p, ".exe")
}

func isHex(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// correlateUSB matches USB drive letters against document and folder paths.
func (e *Engine) correlateUSB() []Correlation {
	system := e.findings(types.HiveSystem)
	if system == nil || len(system.USBDevices) == 0 {
		return nil
	}
	var drives []string
	for _, d := range system.USBDevices {
		if l := strings.ToUpper(d.DriveLetter); l != "" && !slices.Contains(drives, l) {
			drives = append(drives, l)
		}
	}
	if len(drives) == 0 {
		return nil
	}

	var files []USBFileAccess
	match := func(path, ts string, src artifact.Kind) {
		upper := strings.ToUpper(path)
		for _, d := range drives {
			if strings.HasPrefix(upper, d+`:\`) {
				files = append(files, USBFileAccess{Path: path, Timestamp: ts, Drive: d, Source: src})
			}
		}
	}
	e.each(func(_ types.HiveType, f *artifact.Findings) {
		for _, doc := range f.RecentDocs {
			match(doc.Document, doc.Timestamp, artifact.KindRecentDocs)
		}
		for _, bag := range f.ShellBags {
			match(bag.Path, bag.Timestamp, artifact.KindShellBags)
		}
	})
	if len(files) == 0 {
		return nil
	}

	devices := make([]USBRef, 0, len(system.USBDevices))
	for _, d := range system.USBDevices {
		devices = append(devices, USBRef{VID: d.VID, PID: d.PID, Serial: d.Serial, Drive: d.DriveLetter})
	}
	c := newCorrelation(RuleUSBUsage, types.ConfidenceHigh, strings.Join(drives, ","),
		fmt.Sprintf("Found %d files accessed from USB devices", len(files)))
	c.USB = &USBUsage{
		Devices:        devices,
		AccessedFiles:  truncate(files, maxUSBFiles),
		TotalFileCount: len(files),
	}
	return []Correlation{c}
}

// correlateNetwork summarises the SOFTWARE hive's network profiles.
func (e *Engine) correlateNetwork() []Correlation {
	sw := e.findings(types.HiveSoftware)
	if sw == nil || (len(sw.NetworkProfiles) == 0 && len(sw.WLANProfiles) == 0) {
		return nil
	}
	n := &NetworkActivity{
		NetworkProfiles: len(sw.NetworkProfiles),
		WLANProfiles:    len(sw.WLANProfiles),
		Networks:        []NetworkRef{},
		WiFiNetworks:    []NetworkRef{},
	}
	for _, p := range truncate(sw.NetworkProfiles, maxNetworkEntries) {
		n.Networks = append(n.Networks, NetworkRef{Name: p.Network, Type: "Wired"})
	}
	for _, w := range truncate(sw.WLANProfiles, maxNetworkEntries) {
		n.WiFiNetworks = append(n.WiFiNetworks, NetworkRef{Name: w.ProfileName, Type: w.ConnectionType})
	}
	c := newCorrelation(RuleNetwork, types.ConfidenceMedium, "network",
		fmt.Sprintf("User connected to %d networks", n.NetworkProfiles+n.WLANProfiles))
	c.Network = n
	return []Correlation{c}
}

// softwareOwns reports whether the installed software's display name or
// install location occurs in target. target must be lower case.
func softwareOwns(sw artifact.InstalledSoftware, target string) bool {
	if name := strings.ToLower(sw.DisplayName); name != "" && strings.Contains(target, name) {
		return true
	}
	loc := strings.ToLower(sw.InstallLocation)
	return loc != "" && strings.Contains(target, loc)
}

// correlateAutoruns attributes Run key commands to installed software.
func (e *Engine) correlateAutoruns() []Correlation {
	sw := e.findings(types.HiveSoftware)
	if sw == nil || len(sw.InstalledSoftware) == 0 {
		return nil
	}
	var matches []AutorunMatch
	e.each(func(_ types.HiveType, f *artifact.Findings) {
		for _, rk := range f.RunKeys {
			cmd := strings.ToLower(rk.Command)
			for _, s := range sw.InstalledSoftware {
				if !softwareOwns(s, cmd) {
					continue
				}
				matches = append(matches, AutorunMatch{
					Name:        rk.Name,
					Command:     rk.Command,
					Software:    s.DisplayName,
					Publisher:   s.Publisher,
					InstallDate: s.InstallDate,
				})
			}
		}
	})
	if len(matches) == 0 {
		return nil
	}
	c := newCorrelation(RuleAutorun, types.ConfidenceHigh, "autorun",
		fmt.Sprintf("Found %d autorun programs with matching installed software", len(matches)))
	c.Software = &SoftwareLinks{MatchedCount: len(matches), Autoruns: truncate(matches, maxSoftwareMatches)}
	return []Correlation{c}
}

// correlateServices attributes SYSTEM service images to installed software.
func (e *Engine) correlateServices() []Correlation {
	system, sw := e.findings(types.HiveSystem), e.findings(types.HiveSoftware)
	if system == nil || sw == nil || len(system.Services) == 0 || len(sw.InstalledSoftware) == 0 {
		return nil
	}
	var matches []ServiceMatch
	for _, svc := range system.Services {
		img := strings.ToLower(svc.ImagePath)
		if img == "" {
			continue
		}
		for _, s := range sw.InstalledSoftware {
			if !softwareOwns(s, img) {
				continue
			}
			matches = append(matches, ServiceMatch{
				ServiceName: svc.ServiceName,
				StartType:   svc.StartType,
				ImagePath:   svc.ImagePath,
				Software:    s.DisplayName,
				Publisher:   s.Publisher,
			})
		}
	}
	if len(matches) == 0 {
		return nil
	}
	c := newCorrelation(RuleServices, types.ConfidenceMedium, "services",
		fmt.Sprintf("Found %d services associated with installed software", len(matches)))
	c.Software = &SoftwareLinks{MatchedCount: len(matches), Services: truncate(matches, maxSoftwareMatches)}
	return []Correlation{c}
}

// correlateTimeZone reports the first time zone record with a known bias.
func (e *Engine) correlateTimeZone() []Correlation {
	system := e.findings(types.HiveSystem)
	if system == nil {
		return nil
	}
	for _, tz := range system.TimeZone {
		if tz.Bias == 0 {
			continue
		}
		name := tz.StandardName
		if name == "" {
			name = tz.DaylightName
		}
		offset := tz.UTCOffset()
		c := newCorrelation(RuleTimeZone, types.ConfidenceHigh, name+"\x00"+offset,
			fmt.Sprintf("Local time zone is %s (%s); recovered timestamps are UTC", name, offset))
		c.TimeZone = &TimeZoneNote{TimeZone: name, UTCOffset: offset, BiasMinutes: tz.Bias}
		return []Correlation{c}
	}
	return nil
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
