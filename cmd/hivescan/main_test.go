package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/forensicFODs/registry-analysis-tools/internal/testutil"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

func TestParseHiveArg(t *testing.T) {
	tests := []struct {
		arg      string
		wantPath string
		wantType types.HiveType
	}{
		{"SYSTEM", "SYSTEM", types.HiveUnknown},
		{"NTUSER=case/jdoe.dat", "case/jdoe.dat", types.HiveNTUser},
		{"amcache=/tmp/a.hve", "/tmp/a.hve", types.HiveAmcache},
		{"odd=name.bin", "odd=name.bin", types.HiveUnknown},
		{"=x", "=x", types.HiveUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			path, typ := parseHiveArg(tt.arg)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantType, typ)
		})
	}
}

func TestDetectCommand(t *testing.T) {
	fsys := memHives(t, map[string][]byte{
		"/case/SYSTEM":     systemHive(),
		"/case/NTUSER.DAT": testutil.NewHive(testutil.DefaultSize, false).Bytes(),
	})

	output, err := runCLI(t, fsys, "detect", "/case/SYSTEM", "/case/NTUSER.DAT", "--json")
	require.NoError(t, err)
	require.True(t, gjson.Valid(output), output)

	res := gjson.Parse(output)
	assert.Equal(t, "SYSTEM", res.Get("0.hiveType").String())
	assert.True(t, res.Get("0.regf").Bool())
	assert.Equal(t, "NTUSER", res.Get("1.hiveType").String())
	assert.False(t, res.Get("1.regf").Bool())

	output, err = runCLI(t, fsys, "detect", "SAM=/case/NTUSER.DAT")
	require.NoError(t, err)
	assert.Contains(t, output, "SAM")
	assert.Contains(t, output, "(no regf header)")
}

func TestDetectMissingFile(t *testing.T) {
	_, err := runCLI(t, memHives(t, nil), "detect", "/nope")
	require.Error(t, err)
}

func TestScanCommand(t *testing.T) {
	fsys := memHives(t, map[string][]byte{"/case/SYSTEM": systemHive()})

	output, err := runCLI(t, fsys, "scan", "/case/SYSTEM", "--kind", "prefetch")
	require.NoError(t, err)
	assert.Contains(t, output, "Prefetch (1)")
	assert.Contains(t, output, "NOTEPAD.EXE-ABCD1234.pf")
	assert.NotContains(t, output, "evil.exe")

	output, err = runCLI(t, fsys, "scan", "/case/SYSTEM", "--json")
	require.NoError(t, err)
	res := gjson.Parse(output)
	assert.Equal(t, "SYSTEM", res.Get("hiveType").String())
	assert.Equal(t, `C:\Windows\System32\evil.exe`, res.Get("findings.shimcache.0.path").String())
	assert.Equal(t, "2023-05-01 12:00:00", res.Get("findings.shimcache.0.timestamp").String())
	assert.True(t, res.Get("findings.amcache").IsArray(), "empty kinds stay in the output")
}

func TestScanRejectsUnknownKindAndType(t *testing.T) {
	fsys := memHives(t, map[string][]byte{"/case/SYSTEM": systemHive()})

	_, err := runCLI(t, fsys, "scan", "/case/SYSTEM", "--kind", "registry")
	assert.ErrorContains(t, err, `unknown artifact kind "registry"`)

	_, err = runCLI(t, fsys, "scan", "/case/SYSTEM", "--type", "HKCU")
	assert.ErrorContains(t, err, `unknown hive type "HKCU"`)
}

func TestStringsCommand(t *testing.T) {
	fsys := memHives(t, map[string][]byte{"/case/SYSTEM": systemHive()})

	output, err := runCLI(t, fsys, "strings", "/case/SYSTEM", "--min", "8", "--json")
	require.NoError(t, err)
	var found []string
	for _, s := range gjson.Parse(output).Array() {
		found = append(found, s.String())
	}
	assert.Contains(t, found, "NOTEPAD.EXE-ABCD1234.pf")
}

func TestAnalyzeCommand(t *testing.T) {
	fsys := memHives(t, map[string][]byte{
		"/case/SYSTEM":   systemHive(),
		"/case/user.dat": testutil.NewHive(testutil.DefaultSize, true).Bytes(),
	})

	output, err := runCLI(t, fsys, "analyze", "/case/SYSTEM", "NTUSER=/case/user.dat", "--json")
	require.NoError(t, err)
	res := gjson.Parse(output)
	assert.Equal(t, int64(2), res.Get("summary.hiveCount").Int())
	assert.Equal(t, "SYSTEM", res.Get("summary.loadedHives.0").String())
	assert.Equal(t, "NTUSER", res.Get("summary.loadedHives.1").String())
	assert.True(t, res.Get("summary.timelineEvents").Int() >= 1)
}

func TestAnalyzeFailsOnEmptyHive(t *testing.T) {
	fsys := memHives(t, map[string][]byte{"/case/SYSTEM": {}})
	_, err := runCLI(t, fsys, "analyze", "/case/SYSTEM")
	assert.ErrorIs(t, err, types.ErrEmptyHive)
}

func TestTimelineCommand(t *testing.T) {
	fsys := memHives(t, map[string][]byte{"/case/SYSTEM": systemHive()})

	output, err := runCLI(t, fsys, "timeline", "/case/SYSTEM")
	require.NoError(t, err)
	assert.Contains(t, output, "2023-05-01 12:00:00")
	assert.Contains(t, output, `ShimCache: C:\Windows\System32\evil.exe`)
}

func TestTimelineCommandMmap(t *testing.T) {
	path := testutil.WriteHiveFile(t, "SYSTEM", systemHive())

	output, err := runCLI(t, memHives(t, nil), "timeline", "--mmap", "--json", path)
	require.NoError(t, err)
	assert.Equal(t, "2023-05-01 12:00:00", gjson.Get(output, "0.timestamp").String())
}

func TestNarratePromptOnly(t *testing.T) {
	fsys := memHives(t, map[string][]byte{"/case/SYSTEM": systemHive()})
	t.Setenv("HIVESCAN_AI_LANGUAGE", "Korean")

	output, err := runCLI(t, fsys, "narrate", "/case/SYSTEM", "--prompt-only")
	require.NoError(t, err)
	assert.Contains(t, output, "Windows registry SYSTEM hive")
	assert.Contains(t, output, "evil.exe")
	assert.Contains(t, output, "Write every value in Korean.")
}

func TestNarrateWithoutProvider(t *testing.T) {
	fsys := memHives(t, map[string][]byte{"/case/SYSTEM": systemHive()})

	_, err := runCLI(t, fsys, "narrate", "/case/SYSTEM")
	assert.ErrorContains(t, err, types.ErrNoProvider.Msg)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hivescan.yaml")

	output, err := runCLI(t, memHives(t, nil), "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote "+path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = runCLI(t, memHives(t, nil), "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, memHives(t, nil), "--config", path, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShowMasksKey(t *testing.T) {
	t.Setenv("HIVESCAN_AI_API_KEY", "sk-secret")

	output, err := runCLI(t, memHives(t, nil), "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "********")
	assert.NotContains(t, output, "sk-secret")
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := runCLI(t, memHives(t, nil), "--config", "/nope/hivescan.yaml", "version")
	require.Error(t, err)
}
