package forensics

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicFODs/registry-analysis-tools/hive"
	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/internal/testutil"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// fixtureEngine returns an engine whose scanner hands back canned findings
// per hive type instead of reading the bytes.
func fixtureEngine(t *testing.T, fixtures map[types.HiveType]*artifact.Findings) *Engine {
	t.Helper()
	e := NewEngine(Options{})
	e.scanFn = func(_ *hive.Buffer, typ types.HiveType) *artifact.Findings {
		if f, ok := fixtures[typ]; ok {
			return f
		}
		return &artifact.Findings{}
	}
	for _, typ := range types.AllHiveTypes {
		if _, ok := fixtures[typ]; !ok {
			continue
		}
		_, err := e.AddHive([]byte("regf"), "", typ)
		require.NoError(t, err)
	}
	return e
}

// systemShimCacheHive holds a ShimCache entry for C:\Tools\nc.exe.
func systemShimCacheHive() []byte {
	return testutil.NewHive(64<<10, true).
		Filetime(0x1000-40, testutil.MustTime("2023-05-01 12:00:00")).
		U32(0x1000-8, 12345).
		ASCII(0x1000, `C:\Tools\nc.exe`).
		Bytes()
}

// amcacheNCHive holds an Amcache record for nc.exe with a SHA-1.
func amcacheNCHive() []byte {
	sha := make([]byte, 20)
	for i := range sha {
		sha[i] = byte(0x80 + 3*i)
	}
	return testutil.NewHive(64<<10, true).
		Raw(8103, sha).
		Filetime(8128, testutil.MustTime("2022-03-04 05:06:07")).
		U32(8184, 45272).
		ASCII(8192, `C:\Tools\nc.exe`).
		Bytes()
}

func TestShimCacheAmcacheMatch(t *testing.T) {
	e := NewEngine(Options{})
	defer e.Close()

	typ, err := e.AddHive(systemShimCacheHive(), "SYSTEM", types.HiveUnknown)
	require.NoError(t, err)
	require.Equal(t, types.HiveSystem, typ)
	typ, err = e.AddHive(amcacheNCHive(), "Amcache.hve", types.HiveUnknown)
	require.NoError(t, err)
	require.Equal(t, types.HiveAmcache, typ)

	corrs := e.FindCorrelations()
	require.Len(t, corrs, 1)
	c := corrs[0]
	assert.Equal(t, RuleExecution, c.Rule)
	assert.Equal(t, types.ConfidenceHigh, c.Confidence)
	require.NotNil(t, c.Execution)
	assert.Equal(t, "nc.exe", c.Execution.Program)
	assert.Equal(t, `C:\Tools\nc.exe`, c.Execution.Path)
	assert.Equal(t, "2023-05-01 12:00:00", c.Execution.ShimCacheTimestamp)
	assert.Equal(t, "2022-03-04 05:06:07", c.Execution.AmcacheTimestamp)
	assert.Equal(t, "808386898C8F9295989B9EA1A4A7AAADB0B3B6B9", c.Execution.SHA1)
	assert.NotEmpty(t, c.ID)
}

func TestUserActivityAcrossHives(t *testing.T) {
	ntuser := testutil.NewHive(64<<10, true).
		Filetime(4080, testutil.MustTime("2023-06-01 10:00:00")).
		ASCII(0x1000, "HRZR_PGYFRFFVBA").
		ASCII(0x1020, `P:\Jvaqbjf\flfgrz32\abgrcnq.rkr`)
	system := testutil.NewHive(64<<10, true).ASCII(0x3000, "NOTEPAD.EXE-ABCD1234.pf")

	e := NewEngine(Options{})
	defer e.Close()
	_, err := e.AddHive(ntuser.Bytes(), "NTUSER.DAT", types.HiveUnknown)
	require.NoError(t, err)
	_, err = e.AddHive(system.Bytes(), "SYSTEM", types.HiveUnknown)
	require.NoError(t, err)

	corrs := e.FindCorrelations()
	require.Len(t, corrs, 1)
	c := corrs[0]
	assert.Equal(t, RuleUserActivity, c.Rule)
	assert.Equal(t, types.ConfidenceMedium, c.Confidence)
	require.NotNil(t, c.Activity)
	assert.Equal(t, "notepad", c.Activity.Program)
	assert.Equal(t, []string{"UserAssist", "Prefetch"}, c.Activity.Sources)
	assert.Equal(t, 2, c.Activity.SourceCount)
	assert.Equal(t, []string{"2023-06-01 10:00:00"}, c.Activity.Timestamps)
}

func TestUserActivityHighWithThreeSources(t *testing.T) {
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveNTUser: {
			UserAssist: []artifact.UserAssistEntry{{Program: `C:\Tools\putty.exe`, RunCount: 4, LastExecuted: "2023-01-01 00:00:00"}},
			RecentApps: []artifact.RecentApp{{AppPath: `C:\Tools\putty.exe`, AppName: "PUTTY.EXE", LaunchCount: 2}},
		},
		types.HiveSystem: {
			BAMDAM: []artifact.BAMEntry{{Path: `C:\Tools\putty.exe`, Timestamp: "2023-03-01 00:00:00"}},
		},
	})

	corrs := e.FindCorrelations()
	require.Len(t, corrs, 1)
	a := corrs[0].Activity
	require.NotNil(t, a)
	assert.Equal(t, types.ConfidenceHigh, corrs[0].Confidence)
	assert.Equal(t, 3, a.SourceCount)
	assert.Equal(t, uint64(6), a.TotalRunCount)
	assert.Equal(t, []string{"2023-03-01 00:00:00", "2023-01-01 00:00:00"}, a.Timestamps)
}

func TestNormalizeProgram(t *testing.T) {
	cases := map[string]string{
		`C:\Windows\System32\notepad.exe`: "notepad",
		"NOTEPAD.EXE-D8414F97.pf":         "notepad",
		"setup-v2.pf":                     "setup-v2",
		"Code.exe":                        "code",
		"  ":                              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeProgram(in), in)
	}
}

func TestUSBUsage(t *testing.T) {
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveSystem: {
			USBDevices: []artifact.USBDevice{{VID: "0781", PID: "5567", Serial: "AA11", DriveLetter: "f"}},
		},
		types.HiveNTUser: {
			RecentDocs: []artifact.RecentDoc{{Document: `F:\secret.docx`, Timestamp: "2023-01-01 00:00:00"}, {Document: "plan.pdf"}},
			ShellBags:  []artifact.ShellBag{{Path: `f:\projects`}, {Path: `C:\Users`}},
		},
	})

	corrs := e.FindCorrelations()
	require.Len(t, corrs, 1)
	c := corrs[0]
	assert.Equal(t, RuleUSBUsage, c.Rule)
	assert.Equal(t, types.ConfidenceHigh, c.Confidence)
	require.NotNil(t, c.USB)
	assert.Equal(t, 2, c.USB.TotalFileCount)
	assert.Equal(t, `F:\secret.docx`, c.USB.AccessedFiles[0].Path)
	assert.Equal(t, artifact.KindShellBags, c.USB.AccessedFiles[1].Source)
	assert.Equal(t, "F", c.USB.AccessedFiles[1].Drive)
}

func TestUSBUsageNeedsDriveLetter(t *testing.T) {
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveSystem: {USBDevices: []artifact.USBDevice{{VID: "0781"}}},
		types.HiveNTUser: {RecentDocs: []artifact.RecentDoc{{Document: `F:\secret.docx`}}},
	})
	assert.Empty(t, e.FindCorrelations())
}

func TestNetworkActivity(t *testing.T) {
	wlan := make([]artifact.WLANProfile, 7)
	for i := range wlan {
		wlan[i] = artifact.WLANProfile{ProfileName: string(rune('A' + i)), ConnectionType: "Infrastructure"}
	}
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveSoftware: {
			NetworkProfiles: []artifact.NetworkProfile{{Network: "Office LAN"}},
			WLANProfiles:    wlan,
		},
	})

	corrs := e.FindCorrelations()
	require.Len(t, corrs, 1)
	n := corrs[0].Network
	require.NotNil(t, n)
	assert.Equal(t, types.ConfidenceMedium, corrs[0].Confidence)
	assert.Equal(t, 1, n.NetworkProfiles)
	assert.Equal(t, 7, n.WLANProfiles)
	assert.Len(t, n.WiFiNetworks, 5)
	assert.Equal(t, NetworkRef{Name: "Office LAN", Type: "Wired"}, n.Networks[0])
	assert.Equal(t, "User connected to 8 networks", corrs[0].Significance)
}

func TestSoftwareCorrelations(t *testing.T) {
	dropbox := artifact.InstalledSoftware{DisplayName: "Dropbox", Publisher: "Dropbox, Inc.", InstallLocation: `C:\Program Files\Dropbox`}
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveSoftware: {InstalledSoftware: []artifact.InstalledSoftware{dropbox, {DisplayName: "Zoom"}}},
		types.HiveNTUser: {RunKeys: []artifact.RunKey{
			{Name: "Run", Command: `"C:\Program Files\Dropbox\Client\Dropbox.exe" /systemstartup`},
			{Name: "Run", Command: `C:\Users\bob\AppData\evil.exe`},
		}},
		types.HiveSystem: {Services: []artifact.Service{
			{ServiceName: "DbxSvc", ImagePath: `C:\Program Files\Dropbox\Update\DropboxUpdate.exe`, StartType: "Auto"},
			{ServiceName: "Spooler", ImagePath: `C:\Windows\System32\spoolsv.exe`},
		}},
	})

	corrs := e.FindCorrelations()
	require.Len(t, corrs, 2)

	auto := corrs[0]
	assert.Equal(t, RuleAutorun, auto.Rule)
	assert.Equal(t, types.ConfidenceHigh, auto.Confidence)
	require.NotNil(t, auto.Software)
	assert.Equal(t, 1, auto.Software.MatchedCount)
	assert.Equal(t, "Dropbox", auto.Software.Autoruns[0].Software)

	svc := corrs[1]
	assert.Equal(t, RuleServices, svc.Rule)
	assert.Equal(t, types.ConfidenceMedium, svc.Confidence)
	require.NotNil(t, svc.Software)
	require.Len(t, svc.Software.Services, 1)
	assert.Equal(t, "DbxSvc", svc.Software.Services[0].ServiceName)
	assert.Equal(t, "Dropbox, Inc.", svc.Software.Services[0].Publisher)
}

func TestTimeZoneNote(t *testing.T) {
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveSystem: {TimeZone: []artifact.TimeZone{
			{StandardName: "Ignored Standard Time"},
			{StandardName: "Korea Standard Time", Bias: -540},
		}},
	})

	corrs := e.FindCorrelations()
	require.Len(t, corrs, 1)
	tz := corrs[0].TimeZone
	require.NotNil(t, tz)
	assert.Equal(t, "Korea Standard Time", tz.TimeZone)
	assert.Equal(t, "UTC+09:00", tz.UTCOffset)
	assert.Equal(t, int32(-540), tz.BiasMinutes)
}

func TestCorrelationIDsAreStable(t *testing.T) {
	fixtures := map[types.HiveType]*artifact.Findings{
		types.HiveSystem: {TimeZone: []artifact.TimeZone{{StandardName: "UTC+1 Standard Time", Bias: -60}}},
	}
	a := fixtureEngine(t, fixtures).FindCorrelations()
	b := fixtureEngine(t, fixtures).FindCorrelations()
	require.Len(t, a, 1)
	assert.Equal(t, a[0].ID, b[0].ID)
}

func TestRulesEmitNothingWithoutHives(t *testing.T) {
	e := NewEngine(Options{})
	assert.Empty(t, e.FindCorrelations())
	assert.Empty(t, e.BuildTimeline())
	assert.Equal(t, StateEmpty, e.State())
}

func TestBuildTimelineOrdersLexically(t *testing.T) {
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveSystem: {
			ShimCache: []artifact.ShimCacheEntry{
				{Path: `C:\b.exe`, Timestamp: "2021-06-01 00:00:00"},
				{Path: `C:\a.exe`, Timestamp: "2020-01-01 00:00:00"},
				{Path: `C:\c.exe`},
			},
		},
		types.HiveNTUser: {
			RecentDocs: []artifact.RecentDoc{{Document: "x.pdf", Timestamp: artifact.NotAvailable}},
		},
	})

	events := e.BuildTimeline()
	require.Len(t, events, 2)
	assert.Equal(t, "2020-01-01 00:00:00", events[0].Timestamp)
	assert.Equal(t, "2021-06-01 00:00:00", events[1].Timestamp)
	assert.Equal(t, artifact.FieldTimestamp, events[0].Field)
	assert.Equal(t, types.HiveSystem, events[0].Hive)
	assert.Equal(t, artifact.KindShimCache, events[0].Kind)
	assert.Equal(t, `ShimCache: C:\a.exe`, events[0].Description)
	assert.Equal(t, StateTimelined, e.State())
}

func TestTimelineUsesKindSpecificFields(t *testing.T) {
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveNTUser: {
			UserAssist: []artifact.UserAssistEntry{{Program: `C:\x.exe`, LastExecuted: "2022-01-01 00:00:00"}},
			RecentApps: []artifact.RecentApp{{AppPath: `C:\y.exe`, LastAccessTime: "2021-01-01 00:00:00"}},
		},
		types.HiveSoftware: {
			InstalledSoftware: []artifact.InstalledSoftware{{DisplayName: "Zoom", InstallDate: "2020-05-05 00:00:00"}},
			WLANProfiles:      []artifact.WLANProfile{{ProfileName: "cafe", LastConnectedTime: "2019-01-01 00:00:00"}},
		},
	})

	var fields []string
	for _, ev := range e.BuildTimeline() {
		fields = append(fields, ev.Field)
	}
	assert.Equal(t, []string{
		artifact.FieldLastConnectedTime,
		artifact.FieldInstallDate,
		artifact.FieldLastAccessTime,
		artifact.FieldLastExecuted,
	}, fields)
}

func TestStateMachine(t *testing.T) {
	e := NewEngine(Options{})
	assert.Equal(t, StateEmpty, e.State())

	_, err := e.AddHive(systemShimCacheHive(), "SYSTEM", types.HiveUnknown)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, e.State())

	e.FindCorrelations()
	assert.Equal(t, StateCorrelated, e.State())
	e.BuildTimeline()
	assert.Equal(t, StateTimelined, e.State())
	assert.NotEmpty(t, e.Timeline())

	_, err = e.AddHive(amcacheNCHive(), "Amcache.hve", types.HiveUnknown)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, e.State())
	assert.Empty(t, e.Timeline())

	require.NoError(t, e.RemoveHive(types.HiveAmcache))
	assert.Equal(t, StateLoaded, e.State())
	require.NoError(t, e.RemoveHive(types.HiveSystem))
	assert.Equal(t, StateEmpty, e.State())

	err = e.RemoveHive(types.HiveSystem)
	assert.ErrorIs(t, err, types.ErrHiveNotLoaded)
}

func TestAddHiveFailureLeavesStateUntouched(t *testing.T) {
	e := NewEngine(Options{})
	_, err := e.AddHive(systemShimCacheHive(), "SYSTEM", types.HiveUnknown)
	require.NoError(t, err)
	e.FindCorrelations()
	before := e.Summary()

	_, err = e.AddHive(nil, "SOFTWARE", types.HiveUnknown)
	require.ErrorIs(t, err, types.ErrEmptyHive)

	e.scanFn = func(*hive.Buffer, types.HiveType) *artifact.Findings { panic("corrupt cell") }
	_, err = e.AddHive([]byte("regf"), "SYSTEM", types.HiveUnknown)
	require.Error(t, err)
	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, types.ErrKindLoad, typed.Kind)
	assert.Contains(t, err.Error(), "corrupt cell")

	assert.Equal(t, StateCorrelated, e.State())
	assert.Equal(t, before, e.Summary())
	f, err := e.Findings(types.HiveSystem)
	require.NoError(t, err)
	assert.NotEmpty(t, f.ShimCache)
}

func TestAddHiveReplacesSameType(t *testing.T) {
	e := NewEngine(Options{})
	_, err := e.AddHive(systemShimCacheHive(), "SYSTEM", types.HiveUnknown)
	require.NoError(t, err)
	_, err = e.AddHive(make([]byte, 1024), "other", types.HiveSystem)
	require.NoError(t, err)

	assert.Equal(t, []types.HiveType{types.HiveSystem}, e.Hives())
	f, err := e.Findings(types.HiveSystem)
	require.NoError(t, err)
	assert.Empty(t, f.ShimCache)
}

func TestAddHiveFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/evidence/SYSTEM", systemShimCacheHive(), 0o644))

	e := NewEngine(Options{})
	typ, err := e.AddHiveFS(fs, "/evidence/SYSTEM", types.HiveUnknown)
	require.NoError(t, err)
	assert.Equal(t, types.HiveSystem, typ)

	_, err = e.AddHiveFS(fs, "/evidence/SAM", types.HiveUnknown)
	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, types.ErrKindLoad, typed.Kind)
	assert.Equal(t, []types.HiveType{types.HiveSystem}, e.Hives())
}

func TestAddHiveFile(t *testing.T) {
	path := testutil.WriteHiveFile(t, "SYSTEM", systemShimCacheHive())

	e := NewEngine(Options{})
	typ, err := e.AddHiveFile(path, types.HiveUnknown)
	require.NoError(t, err)
	assert.Equal(t, types.HiveSystem, typ)

	f, err := e.Findings(types.HiveSystem)
	require.NoError(t, err)
	require.Len(t, f.ShimCache, 1)
	assert.Equal(t, `C:\Tools\nc.exe`, f.ShimCache[0].Path)

	require.NoError(t, e.Close())
	assert.Empty(t, e.Hives())
	assert.Equal(t, StateEmpty, e.State())
}

func TestStringsAndMissingHive(t *testing.T) {
	e := NewEngine(Options{})
	_, err := e.AddHive(systemShimCacheHive(), "SYSTEM", types.HiveUnknown)
	require.NoError(t, err)

	strs, err := e.Strings(types.HiveSystem, 4, 10)
	require.NoError(t, err)
	assert.Contains(t, strs, `C:\Tools\nc.exe`)

	_, err = e.Strings(types.HiveSAM, 4, 10)
	assert.ErrorIs(t, err, types.ErrHiveNotLoaded)
	_, err = e.Findings(types.HiveSAM)
	assert.ErrorIs(t, err, types.ErrHiveNotLoaded)
}

func TestSummary(t *testing.T) {
	e := fixtureEngine(t, map[types.HiveType]*artifact.Findings{
		types.HiveSystem: {
			ShimCache: []artifact.ShimCacheEntry{{Path: `C:\a.exe`, Timestamp: "2020-01-01 00:00:00"}},
			TimeZone:  []artifact.TimeZone{{StandardName: "Korea Standard Time", Bias: -540}},
		},
		types.HiveSoftware: {
			NetworkProfiles: []artifact.NetworkProfile{{Network: "lan"}},
		},
	})
	e.FindCorrelations()
	e.BuildTimeline()

	s := e.Summary()
	assert.Equal(t, []types.HiveType{types.HiveSystem, types.HiveSoftware}, s.LoadedHives)
	assert.Equal(t, 2, s.HiveCount)
	assert.Equal(t, 3, s.ArtifactKinds)
	assert.Equal(t, 2, s.Correlations)
	assert.Equal(t, 1, s.HighConfidence)
	assert.Equal(t, 1, s.TimelineEvents)
}
