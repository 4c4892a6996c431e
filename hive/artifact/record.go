package artifact

import "fmt"

// Timestamp field names, in the order the timeline consults them.
const (
	FieldTimestamp         = "timestamp"
	FieldLastExecuted      = "lastExecuted"
	FieldLastWriteTime     = "lastWriteTime"
	FieldLastAccessTime    = "lastAccessTime"
	FieldInstallDate       = "installDate"
	FieldLastConnectedTime = "lastConnectedTime"
)

// NotAvailable is the sentinel some sources store in place of a timestamp.
const NotAvailable = "N/A"

// Record is implemented by every artifact variant.
type Record interface {
	Kind() Kind
	// SourceOffset is the byte offset of the seed the record was derived from.
	SourceOffset() int
	// Stamp returns the name and value of the record's timeline field, or
	// two empty strings when it carries no usable timestamp.
	Stamp() (field, value string)
	// Describe is a one-line human summary.
	Describe() string
}

// Base carries the seed offset shared by all records.
type Base struct {
	Offset int `json:"offset"`
}

// SourceOffset implements Record.
func (b Base) SourceOffset() int { return b.Offset }

func stamp(field, value string) (string, string) {
	if value == "" {
		return "", ""
	}
	return field, value
}

// ShimCacheEntry is an AppCompatCache executable path.
type ShimCacheEntry struct {
	Base
	Path      string `json:"path"`
	Timestamp string `json:"timestamp,omitempty"`
	FileSize  uint32 `json:"fileSize,omitempty"`
}

func (ShimCacheEntry) Kind() Kind                { return KindShimCache }
func (e ShimCacheEntry) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e ShimCacheEntry) Describe() string        { return "ShimCache: " + e.Path }

// AmcacheEntry is an application inventory record.
type AmcacheEntry struct {
	Base
	ProgramName string `json:"programName"`
	FilePath    string `json:"filePath,omitempty"`
	SHA1        string `json:"sha1,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	FileSize    uint32 `json:"fileSize,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Version     string `json:"version,omitempty"`
}

func (AmcacheEntry) Kind() Kind                { return KindAmcache }
func (e AmcacheEntry) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e AmcacheEntry) Describe() string        { return "Amcache: " + e.ProgramName }

// InfoScore counts the optional metadata fields that are present.
func (e AmcacheEntry) InfoScore() int {
	n := 0
	for _, present := range []bool{e.SHA1 != "", e.Publisher != "", e.Version != "", e.FileSize != 0} {
		if present {
			n++
		}
	}
	return n
}

// UserAssistEntry is a decoded UserAssist program launch record.
type UserAssistEntry struct {
	Base
	Program      string `json:"program"`
	RunCount     uint32 `json:"runCount,omitempty"`
	FocusTime    uint32 `json:"focusTime,omitempty"` // milliseconds
	LastExecuted string `json:"lastExecuted,omitempty"`
}

func (UserAssistEntry) Kind() Kind                { return KindUserAssist }
func (e UserAssistEntry) Stamp() (string, string) { return stamp(FieldLastExecuted, e.LastExecuted) }
func (e UserAssistEntry) Describe() string {
	if e.RunCount > 0 {
		return fmt.Sprintf("UserAssist: %s (run %d times)", e.Program, e.RunCount)
	}
	return "UserAssist: " + e.Program
}

// BAMEntry is a Background/Desktop Activity Moderator execution record.
type BAMEntry struct {
	Base
	Path      string `json:"path"`
	Timestamp string `json:"timestamp,omitempty"`
	UserSID   string `json:"userSID,omitempty"`
}

func (BAMEntry) Kind() Kind                { return KindBAMDAM }
func (e BAMEntry) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e BAMEntry) Describe() string        { return "BAM/DAM: " + e.Path }

// USBDevice is a USB storage or HID device trace.
type USBDevice struct {
	Base
	Device      string `json:"device"`
	VID         string `json:"vid,omitempty"`
	PID         string `json:"pid,omitempty"`
	Serial      string `json:"serial,omitempty"`
	DeviceName  string `json:"deviceName,omitempty"`
	DriveLetter string `json:"driveLetter,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

func (USBDevice) Kind() Kind                { return KindUSBDevice }
func (e USBDevice) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e USBDevice) Describe() string {
	name := e.DeviceName
	if name == "" {
		name = fmt.Sprintf("VID_%s PID_%s", e.VID, e.PID)
	}
	if e.DriveLetter != "" {
		return fmt.Sprintf("USB Device: %s (%s:)", name, e.DriveLetter)
	}
	return "USB Device: " + name
}

// Recent document recovery modes.
const (
	RecentDocsPrecise = "RecentDocs"
	RecentDocsPattern = "Document Path"
)

// RecentDoc is a recently opened document.
type RecentDoc struct {
	Base
	Document  string `json:"document"`
	Timestamp string `json:"timestamp,omitempty"`
	Source    string `json:"source"`
}

func (RecentDoc) Kind() Kind                { return KindRecentDocs }
func (e RecentDoc) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e RecentDoc) Describe() string        { return "Document: " + e.Document }

// RunKey is an auto-start command.
type RunKey struct {
	Base
	Name    string `json:"name"`
	Command string `json:"command"`
}

func (RunKey) Kind() Kind              { return KindRunKeys }
func (RunKey) Stamp() (string, string) { return "", "" }
func (e RunKey) Describe() string      { return fmt.Sprintf("Auto-Start (%s): %s", e.Name, e.Command) }

// SAMUser is a local account.
type SAMUser struct {
	Base
	Username  string `json:"username"`
	SID       string `json:"sid"`
	LastLogin string `json:"lastLogin,omitempty"`
	Created   string `json:"created,omitempty"`
}

func (SAMUser) Kind() Kind              { return KindSAMUsers }
func (SAMUser) Stamp() (string, string) { return "", "" }
func (e SAMUser) Describe() string      { return fmt.Sprintf("User Account: %s (%s)", e.Username, e.SID) }

// NetworkProfile is a network name seen next to a profile value.
type NetworkProfile struct {
	Base
	Network string `json:"network"`
	Field   string `json:"field"`
}

func (NetworkProfile) Kind() Kind              { return KindNetworkProfiles }
func (NetworkProfile) Stamp() (string, string) { return "", "" }
func (e NetworkProfile) Describe() string      { return "Network Profile: " + e.Network }

// ShellBag is a folder the user browsed.
type ShellBag struct {
	Base
	Path      string `json:"path"`
	Folder    string `json:"folder"`
	Timestamp string `json:"timestamp,omitempty"`
	Source    string `json:"source"`
}

func (ShellBag) Kind() Kind                { return KindShellBags }
func (e ShellBag) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e ShellBag) Describe() string        { return "Folder accessed: " + e.Path }

// MuiCacheEntry is an application display-name cache record.
type MuiCacheEntry struct {
	Base
	Path      string `json:"path"`
	AppName   string `json:"appName,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (MuiCacheEntry) Kind() Kind                { return KindMuiCache }
func (e MuiCacheEntry) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e MuiCacheEntry) Describe() string        { return "MuiCache: " + e.Path }

// PrefetchEntry is a prefetch trace reference.
type PrefetchEntry struct {
	Base
	Program   string `json:"program"`
	RunCount  uint32 `json:"runCount,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func (PrefetchEntry) Kind() Kind                { return KindPrefetch }
func (e PrefetchEntry) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e PrefetchEntry) Describe() string        { return "Prefetch: " + e.Program }

// LNKEntry is a shortcut file reference.
type LNKEntry struct {
	Base
	LNKPath    string `json:"lnkPath"`
	TargetPath string `json:"targetPath,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

func (LNKEntry) Kind() Kind                { return KindLNK }
func (e LNKEntry) Stamp() (string, string) { return stamp(FieldTimestamp, e.Timestamp) }
func (e LNKEntry) Describe() string        { return "LNK: " + e.LNKPath }

// InstalledSoftware is an Uninstall key entry.
type InstalledSoftware struct {
	Base
	DisplayName     string `json:"displayName"`
	Publisher       string `json:"publisher,omitempty"`
	Version         string `json:"version,omitempty"`
	InstallDate     string `json:"installDate,omitempty"`
	InstallDateRaw  string `json:"installDateRaw,omitempty"`
	InstallLocation string `json:"installLocation,omitempty"`
	UninstallString string `json:"uninstallString,omitempty"`
	EstimatedSize   uint32 `json:"estimatedSize,omitempty"`
}

func (InstalledSoftware) Kind() Kind                { return KindInstalledSoftware }
func (e InstalledSoftware) Stamp() (string, string) { return stamp(FieldInstallDate, e.InstallDate) }
func (e InstalledSoftware) Describe() string        { return "Installed: " + e.DisplayName }

// Security record categories.
const (
	SecurityPolicy = "SecurityPolicy"
	SecuritySID    = "SID"
)

// SecurityEntry is either a policy value or a SID found in the SECURITY hive.
type SecurityEntry struct {
	Base
	Category   string  `json:"type"`
	PolicyKey  string  `json:"policyKey,omitempty"`
	PolicyName string  `json:"policyName,omitempty"`
	Value      *uint32 `json:"value,omitempty"`
	SID        string  `json:"sid,omitempty"`
	SIDType    string  `json:"sidType,omitempty"`
}

func (SecurityEntry) Kind() Kind              { return KindSecurity }
func (SecurityEntry) Stamp() (string, string) { return "", "" }
func (e SecurityEntry) Describe() string {
	if e.Category == SecuritySID {
		return fmt.Sprintf("SID: %s (%s)", e.SID, e.SIDType)
	}
	return fmt.Sprintf("Policy %s: %s", e.PolicyKey, e.PolicyName)
}

// TypedPath is an Explorer address bar entry.
type TypedPath struct {
	Base
	Path     string `json:"path"`
	MRUOrder uint32 `json:"mruOrder,omitempty"`
}

func (TypedPath) Kind() Kind              { return KindTypedPaths }
func (TypedPath) Stamp() (string, string) { return "", "" }
func (e TypedPath) Describe() string      { return "Typed path: " + e.Path }

// RecentApp is a Windows 10 RecentApps record.
type RecentApp struct {
	Base
	AppPath        string `json:"appPath"`
	AppName        string `json:"appName"`
	LaunchCount    uint32 `json:"launchCount,omitempty"`
	LastAccessTime string `json:"lastAccessTime,omitempty"`
}

func (RecentApp) Kind() Kind                { return KindRecentApps }
func (e RecentApp) Stamp() (string, string) { return stamp(FieldLastAccessTime, e.LastAccessTime) }
func (e RecentApp) Describe() string        { return "Recent app: " + e.AppPath }

// Service is a service configuration record.
type Service struct {
	Base
	ServiceName string `json:"serviceName,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	ImagePath   string `json:"imagePath,omitempty"`
	StartType   string `json:"startType,omitempty"`
}

func (Service) Kind() Kind              { return KindServices }
func (Service) Stamp() (string, string) { return "", "" }
func (e Service) Describe() string {
	name := e.DisplayName
	if name == "" {
		name = e.ImagePath
	}
	return "Service: " + name
}

// WLANProfile is a wireless network profile.
type WLANProfile struct {
	Base
	ProfileName       string `json:"profileName"`
	ConnectionType    string `json:"connectionType,omitempty"`
	LastConnectedTime string `json:"lastConnectedTime,omitempty"`
}

func (WLANProfile) Kind() Kind { return KindWLANProfiles }
func (e WLANProfile) Stamp() (string, string) {
	return stamp(FieldLastConnectedTime, e.LastConnectedTime)
}
func (e WLANProfile) Describe() string { return "WLAN: " + e.ProfileName }

// TimeZone is the configured time zone. Bias is in minutes, UTC = local + bias.
type TimeZone struct {
	Base
	StandardName string `json:"standardName,omitempty"`
	DaylightName string `json:"daylightName,omitempty"`
	Bias         int32  `json:"bias,omitempty"`
}

func (TimeZone) Kind() Kind              { return KindTimeZone }
func (TimeZone) Stamp() (string, string) { return "", "" }
func (e TimeZone) Describe() string {
	name := e.StandardName
	if name == "" {
		name = e.DaylightName
	}
	if e.Bias != 0 {
		return fmt.Sprintf("Time zone: %s (%s)", name, e.UTCOffset())
	}
	return "Time zone: " + name
}

// UTCOffset renders the local offset from UTC implied by Bias, e.g. a bias
// of -540 yields "UTC+09:00".
func (e TimeZone) UTCOffset() string {
	minutes := -int(e.Bias)
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, minutes/60, minutes%60)
}
