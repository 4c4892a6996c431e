package extract

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forensicFODs/registry-analysis-tools/hive"
	"github.com/forensicFODs/registry-analysis-tools/internal/testutil"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

func TestTimestampNearReadsAlignedSlotsOnly(t *testing.T) {
	ts := testutil.MustTime("2022-08-09 10:11:12")

	aligned := newScanner(testutil.NewHive(64<<10, false).Filetime(0x2008, ts).Bytes(), types.HiveSystem)
	assert.Equal(t, "2022-08-09 10:11:12", aligned.nearbyTimestamp(0x2000))
	// Slots are absolute multiples of eight, not relative to the seed.
	assert.Equal(t, "2022-08-09 10:11:12", aligned.nearbyTimestamp(0x2003))

	// Four bytes off the grid the value straddles two slots and is missed.
	unaligned := newScanner(testutil.NewHive(64<<10, false).Filetime(0x2004, ts).Bytes(), types.HiveSystem)
	assert.Empty(t, unaligned.nearbyTimestamp(0x2000))
	assert.Empty(t, unaligned.nearbyTimestamp(0x2004))
}

func TestStripCellMarkers(t *testing.T) {
	assert.Equal(t, `C:\x\a.exe`, stripCellMarkers(`C:\x\a.exevk`))
	assert.Equal(t, `C:\Users\bob\Desktop`, stripCellMarkers(`C:\Users\bob\Desktop`))
	assert.Equal(t, `C:\r\report.lnk`, stripCellMarkers(`C:\r\report.lnk`))
	assert.Equal(t, `C:\r\report.lnk`, stripCellMarkers(`C:\r\report.lnknk`))
}

// seedMarkers are strings every extractor searches for, so random buffers
// reach the decoding paths and not just the empty-search fast path.
var seedMarkers = []string{
	"S-1-5-21-", "S-1-5-18", "Administrator", "ProfileName", "SSID",
	`Microsoft\Windows\CurrentVersion\Uninstall`, "DisplayName", "InstallDate",
	`Policy\Accounts`, `Services\`, "ImagePath", `Profiles\`,
	"TimeZoneInformation", "StandardName", "VID_", "PID_", `\DosDevices\`,
	"BagMRU", `\Desktop`, "MuiCache", ".lnk", "TypedPaths", "url",
	"RecentApps", "AppPath", "RecentDocs", "Run", "HRZR_", `C:\`, `\Device\HarddiskVolume`,
	".exe", ".pf", "FileId",
}

func TestAllToleratesArbitraryBytes(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, size := range []int{0, 1, 3, 7, 64, 4096, 64 << 10} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(rng.IntN(256))
		}
		if size > 0 {
			for range size/64 + 1 {
				m := seedMarkers[rng.IntN(len(seedMarkers))]
				at := rng.IntN(size)
				if rng.IntN(2) == 0 {
					copy(data[at:], m)
				} else {
					copy(data[at:], hive.EncodeUTF16(m))
				}
			}
		}
		for _, typ := range append(types.AllHiveTypes, types.HiveUnknown) {
			s := New(hive.New(data, typ.FileName()), typ, Options{Workers: 4})
			assert.NotPanics(t, func() { s.All() }, "%s with %d bytes", typ, size)
		}
	}
}
