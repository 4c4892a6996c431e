package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forensicFODs/registry-analysis-tools/internal/testutil"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

func shellBagsHive() *testutil.HiveBuilder {
	return testutil.NewHive(64<<10, true).
		ASCII(0x2000, "BagMRU").
		ASCII(0x2010, `C:\Users\bob\Projects`).
		ASCII(0x2030, `C:\Users\bob\evil.exe`).
		ASCII(0x2048, `c:\users\bob\projects`).
		Filetime(0x2060, testutil.MustTime("2022-08-09 10:11:12")).
		ASCII(0x4000, `C:\Users\bob\Downloads`)
}

func TestShellBags(t *testing.T) {
	// The lower-case copy of the BagMRU folder merges into the first; the
	// executable is not a folder.
	got := newScanner(shellBagsHive().Bytes(), types.HiveNTUser).ShellBags()
	require.Len(t, got, 2)

	assert.Equal(t, `C:\Users\bob\Projects`, got[0].Path)
	assert.Equal(t, "folder", got[0].Folder)
	assert.Equal(t, "BagMRU", got[0].Source)
	assert.Equal(t, "2022-08-09 10:11:12", got[0].Timestamp)

	assert.Equal(t, `C:\Users\bob\Downloads`, got[1].Path)
	assert.Equal(t, "Downloads", got[1].Folder)
	assert.Equal(t, "Pattern", got[1].Source)
	assert.Empty(t, got[1].Timestamp)
}

func TestShellBagsOnlyScansUserHives(t *testing.T) {
	assert.Nil(t, newScanner(shellBagsHive().Bytes(), types.HiveSystem).ShellBags())
}

func muiCacheHive() *testutil.HiveBuilder {
	return testutil.NewHive(64<<10, true).
		ASCII(0x1FC0, "PuTTY SSH Client").
		ASCII(0x1FE0, `C:\Tools\putty.exe`).
		ASCII(0x2000, "MuiCache").
		ASCII(0x2020, "ApplicationCompany").
		Filetime(0x2040, testutil.MustTime("2021-11-12 13:14:15"))
}

func TestMuiCache(t *testing.T) {
	// MuiCache and ApplicationCompany both see the same path.
	got := newScanner(muiCacheHive().Bytes(), types.HiveUsrClass).MuiCache()
	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, `C:\Tools\putty.exe`, e.Path)
	assert.Equal(t, "PuTTY SSH Client", e.AppName)
	assert.Equal(t, "2021-11-12 13:14:15", e.Timestamp)
	assert.Equal(t, 0x2000, e.Offset)

	assert.Nil(t, newScanner(muiCacheHive().Bytes(), types.HiveSoftware).MuiCache())
}

const recentLNK = `C:\Users\bob\AppData\Roaming\Microsoft\Windows\Recent\report.lnk`

func lnkHive() *testutil.HiveBuilder {
	return testutil.NewHive(64<<10, true).
		ASCII(0x2000, recentLNK).
		ASCII(0x2050, `D:\Finance\report.xlsx`).
		Filetime(0x2070, testutil.MustTime("2019-03-04 05:06:07"))
}

func TestLNKFiles(t *testing.T) {
	got := newScanner(lnkHive().Bytes(), types.HiveNTUser).LNKFiles()
	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, recentLNK, e.LNKPath)
	assert.Equal(t, `D:\Finance\report.xlsx`, e.TargetPath)
	assert.Equal(t, "2019-03-04 05:06:07", e.Timestamp)
	assert.Equal(t, 0x2000+len(recentLNK)-len(".lnk"), e.Offset)

	assert.Nil(t, newScanner(lnkHive().Bytes(), types.HiveSAM).LNKFiles())
}

func TestLNKFilesMergesCaseInsensitively(t *testing.T) {
	h := lnkHive().ASCII(0x3000, strings.ToLower(recentLNK))

	got := newScanner(h.Bytes(), types.HiveNTUser).LNKFiles()
	require.Len(t, got, 1)
	assert.Equal(t, recentLNK, got[0].LNKPath)
}

func typedPathsHive() *testutil.HiveBuilder {
	return testutil.NewHive(64<<10, true).
		U32(0x1FF8, 3).
		ASCII(0x2000, "TypedPaths").
		ASCII(0x2010, `\\fileserver\share`).
		ASCII(0x2030, `C:\Temp\loot`).
		ASCII(0x2040, "notes")
}

func TestTypedPaths(t *testing.T) {
	got := newScanner(typedPathsHive().Bytes(), types.HiveNTUser).TypedPaths()
	require.Len(t, got, 2)
	assert.Equal(t, `\\fileserver\share`, got[0].Path)
	assert.Equal(t, `C:\Temp\loot`, got[1].Path)
	for _, e := range got {
		assert.Equal(t, uint32(3), e.MRUOrder)
	}

	assert.Nil(t, newScanner(typedPathsHive().Bytes(), types.HiveSAM).TypedPaths())
}

func TestTypedPathsMergesCaseInsensitively(t *testing.T) {
	h := typedPathsHive().
		ASCII(0x3000, "TypedPaths").
		ASCII(0x3010, `C:\TEMP\LOOT`)

	got := newScanner(h.Bytes(), types.HiveNTUser).TypedPaths()
	require.Len(t, got, 2)
	assert.Equal(t, `C:\Temp\loot`, got[1].Path)
}

// recentApp lays out a RecentApps subkey: a launch count 16 bytes before it,
// the AppPath value and a FILETIME 72 bytes in.
func recentApp(h *testutil.HiveBuilder, at int) *testutil.HiveBuilder {
	return h.U32(at-0x10, 42).
		ASCII(at, "RecentApps").
		ASCII(at+0x10, "AppPath").
		ASCII(at+0x20, `C:\Windows\System32\mstsc.exe`).
		Filetime(at+0x48, testutil.MustTime("2023-09-10 11:12:13"))
}

func TestRecentApps(t *testing.T) {
	h := recentApp(testutil.NewHive(64<<10, true), 0x2000)

	got := newScanner(h.Bytes(), types.HiveNTUser).RecentApps()
	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, `C:\Windows\System32\mstsc.exe`, e.AppPath)
	assert.Equal(t, "mstsc.exe", e.AppName)
	assert.Equal(t, uint32(42), e.LaunchCount)
	assert.Equal(t, "2023-09-10 11:12:13", e.LastAccessTime)

	assert.Nil(t, newScanner(h.Bytes(), types.HiveSoftware).RecentApps())
}

func TestRecentAppsMergesRepeatedPaths(t *testing.T) {
	h := recentApp(testutil.NewHive(64<<10, true), 0x2000)
	recentApp(h, 0x3000)

	got := newScanner(h.Bytes(), types.HiveNTUser).RecentApps()
	require.Len(t, got, 1)
	assert.Equal(t, 0x2000, got[0].Offset)
}
